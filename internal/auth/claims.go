package auth

import (
	"encoding/json"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the set of identity fields this façade needs out of a
// validated bearer token: who is calling (for ctxt.ClientID and the
// envelope's meta.client block) and the numeric uid/gid the backend
// RPCs authorize against, mirroring how lib/auth.go's AuthClaims
// carries Sub/Email/Name/Permissions for its own domain.
type Claims struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
	UID      int    `json:"uid"`
	GID      int    `json:"gid"`
	jwt.RegisteredClaims
}

// cachedClaims is the JSON shape stored in Cache, keyed by cacheKey (a
// SHA-256 hash of the raw token string), so a repeat request carrying
// the same token skips the JWKS lookup and signature check for the
// remainder of the token's TTL.
type cachedClaims struct {
	Sub      string `json:"sub"`
	Username string `json:"username"`
	UID      int    `json:"uid"`
	GID      int    `json:"gid"`
}

func (c *Claims) toCached() cachedClaims {
	return cachedClaims{Sub: c.Sub, Username: c.Username, UID: c.UID, GID: c.GID}
}

func marshalCachedClaims(c *Claims) ([]byte, error) {
	return json.Marshal(c.toCached())
}

func unmarshalCachedClaims(data []byte) (*cachedClaims, error) {
	var c cachedClaims
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
