package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"slurmrestd/shared/logger"
)

// Options configures an Auth boundary instance. cmd/slurmrestd builds
// one from internal/config.
type Options struct {
	// Issuer is the OIDC issuer URL used both for JWKS discovery (the
	// bearer-token validation path) and for the operator UI's OAuth2
	// login flow.
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string

	// JWKSURL overrides the discovered jwks_uri, for deployments whose
	// JWT issuer doesn't serve OIDC discovery (e.g. a local Slurm JWT
	// auth plugin signing with a static keypair).
	JWKSURL string
}

// Auth is the concrete Auth boundary: JWKS-backed bearer validation
// plus an OAuth2 login/callback/logout flow for the façade's own
// operator UI, mirroring lib/auth.go's zAuth split into "API token
// validation" and "browser login" halves.
type Auth struct {
	validator *jwksValidator
	cache     Cache
	oauth     oauth2.Config
	verifier  *oidc.IDTokenVerifier
}

// NewAuth discovers the issuer's OIDC metadata (for the login flow and,
// absent an override, the JWKS endpoint), then builds the JWKS
// validator eagerly the way lib/auth.go's NewAuth loads JWKS on
// startup rather than on first request.
func NewAuth(ctx context.Context, opts Options, cache Cache) (*Auth, error) {
	provider, err := oidc.NewProvider(ctx, opts.Issuer)
	if err != nil {
		return nil, fmt.Errorf("auth: discover issuer %s: %w", opts.Issuer, err)
	}

	jwksURL := opts.JWKSURL
	if jwksURL == "" {
		var claims struct {
			JWKSURL string `json:"jwks_uri"`
		}
		if cerr := provider.Claims(&claims); cerr == nil && claims.JWKSURL != "" {
			jwksURL = claims.JWKSURL
		}
	}
	if jwksURL == "" {
		return nil, fmt.Errorf("auth: no jwks_uri discovered for issuer %s and none configured", opts.Issuer)
	}

	validator := newJWKSValidator(jwksURL)
	if err := validator.refresh(ctx); err != nil {
		return nil, err
	}

	a := &Auth{
		validator: validator,
		cache:     cache,
		oauth: oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       opts.Scopes,
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: opts.ClientID}),
	}
	logger.Info("auth: initialized", logger.String("issuer", opts.Issuer), logger.String("jwks_url", jwksURL))
	return a, nil
}

// ValidateToken checks a bearer token's signature and expiry, serving
// from the claims cache when the same token string was already
// verified (lib/auth.go's getUserFromCache/cacheUserData pattern,
// generalized over the Cache interface and keyed by token rather than
// by subject so a repeat call skips the cryptographic check entirely).
func (a *Auth) ValidateToken(ctx context.Context, tokenString string) (*cachedClaims, error) {
	key := cacheKey(tokenString)

	if a.cache != nil {
		if data, err := a.cache.Get(ctx, key); err == nil {
			if cached, uerr := unmarshalCachedClaims(data); uerr == nil {
				return cached, nil
			}
		}
	}

	claims, err := a.validator.validate(ctx, tokenString)
	if err != nil {
		return nil, err
	}

	cached := claims.toCached()
	if a.cache != nil {
		if data, merr := marshalCachedClaims(claims); merr == nil {
			ttl := time.Until(claims.ExpiresAt.Time)
			if ttl > 0 {
				if cerr := a.cache.Set(ctx, key, data, ttl); cerr != nil {
					logger.Warn("auth: failed to cache claims", logger.Err(cerr))
				}
			}
		}
	}
	return &cached, nil
}

func cacheKey(tokenString string) string {
	sum := sha256.Sum256([]byte(tokenString))
	return "auth:token:" + hex.EncodeToString(sum[:])
}
