package auth

import "testing"

func TestCacheKeyDeterministic(t *testing.T) {
	a := cacheKey("token-one")
	b := cacheKey("token-one")
	if a != b {
		t.Fatalf("cacheKey not deterministic: %q != %q", a, b)
	}
}

func TestCacheKeyDistinguishesTokens(t *testing.T) {
	if cacheKey("token-one") == cacheKey("token-two") {
		t.Fatalf("cacheKey collided for distinct tokens")
	}
}

func TestCachedClaimsRoundTrip(t *testing.T) {
	claims := &Claims{Sub: "sub-1", Username: "alice", UID: 1000, GID: 1000}
	data, err := marshalCachedClaims(claims)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	cached, err := unmarshalCachedClaims(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if cached.Sub != claims.Sub || cached.Username != claims.Username || cached.UID != claims.UID || cached.GID != claims.GID {
		t.Fatalf("round trip mismatch: got %+v, want fields from %+v", cached, claims)
	}
}
