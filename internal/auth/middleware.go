package auth

import (
	"strings"

	"slurmrestd/internal/httpdriver"
	"slurmrestd/shared/logger"
)

// BearerMiddleware implements the authentication step spec.md §1 says
// happens before the core ever sees a request: extract a bearer token
// (the Authorization header, or the auth_token cookie the operator UI
// login flow sets) and, on success, attach the caller's identity to the
// request the way lib/auth.go's TokenMiddleware attaches
// user/permissions to the gin context. restapi.Dispatch reads these
// back via client_id/client_uid/client_gid.
func (a *Auth) BearerMiddleware() func(httpdriver.RequestContext, func()) {
	return func(hc httpdriver.RequestContext, next func()) {
		token := bearerToken(hc)
		if token == "" {
			logger.Debug("auth: no bearer token on request", logger.String("path", hc.Path()))
			hc.Status(401)
			return
		}

		claims, err := a.ValidateToken(hc.Context(), token)
		if err != nil {
			logger.Debug("auth: token validation failed", logger.Err(err))
			hc.Status(401)
			return
		}

		hc.Set("client_id", claims.Username)
		hc.Set("client_uid", claims.UID)
		hc.Set("client_gid", claims.GID)
		next()
	}
}

func bearerToken(hc httpdriver.RequestContext) string {
	if h := hc.Header("Authorization"); h != "" {
		if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
			return rest
		}
	}
	return cookieValue(hc.Header("Cookie"), "auth_token")
}

// cookieValue extracts one cookie's value from a raw Cookie header,
// since httpdriver.RequestContext exposes headers but not a parsed
// cookie jar.
func cookieValue(cookieHeader, name string) string {
	for _, part := range strings.Split(cookieHeader, ";") {
		part = strings.TrimSpace(part)
		k, v, ok := strings.Cut(part, "=")
		if ok && k == name {
			return v
		}
	}
	return ""
}
