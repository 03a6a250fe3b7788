package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"slurmrestd/shared/logger"
)

// jwksValidator checks bearer-token signatures against a JWKS
// endpoint, refreshing the key set on a key-ID miss or once the cached
// set goes stale. Grounded directly on lib/auth.go's zAuth JWKS fields
// and lib/auth/auth0.go's refreshJWKS/getJWKS/ValidateToken trio,
// adapted to populate Claims.UID/GID instead of Auth0's
// email/name/permissions.
type jwksValidator struct {
	jwksURL string

	mu          sync.RWMutex
	cache       jwk.Set
	lastRefresh time.Time
	maxAge      time.Duration
}

func newJWKSValidator(jwksURL string) *jwksValidator {
	return &jwksValidator{jwksURL: jwksURL, maxAge: 24 * time.Hour}
}

func (v *jwksValidator) refresh(ctx context.Context) error {
	fetchCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	set, err := jwk.Fetch(fetchCtx, v.jwksURL)
	if err != nil {
		return fmt.Errorf("auth: fetch jwks: %w", err)
	}

	v.mu.Lock()
	v.cache = set
	v.lastRefresh = time.Now()
	v.mu.Unlock()

	logger.Debug("auth: jwks refreshed", logger.String("url", v.jwksURL))
	return nil
}

func (v *jwksValidator) keySet(ctx context.Context) (jwk.Set, error) {
	v.mu.RLock()
	if v.cache != nil && time.Since(v.lastRefresh) < v.maxAge {
		defer v.mu.RUnlock()
		return v.cache, nil
	}
	v.mu.RUnlock()

	if err := v.refresh(ctx); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cache, nil
}

// validate parses and verifies tokenString, refreshing the JWKS once
// on a key-ID miss to tolerate key rotation.
func (v *jwksValidator) validate(ctx context.Context, tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok {
			return nil, errors.New("auth: token missing kid header")
		}

		set, err := v.keySet(ctx)
		if err != nil {
			return nil, err
		}

		key, found := set.LookupKeyID(kid)
		if !found {
			if refreshErr := v.refresh(ctx); refreshErr == nil {
				if set, err = v.keySet(ctx); err == nil {
					key, found = set.LookupKeyID(kid)
				}
			}
			if !found {
				return nil, fmt.Errorf("auth: key %s not found in jwks", kid)
			}
		}

		var rawKey interface{}
		if err := key.Raw(&rawKey); err != nil {
			return nil, fmt.Errorf("auth: raw key: %w", err)
		}
		return rawKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("auth: invalid token claims")
	}
	return claims, nil
}
