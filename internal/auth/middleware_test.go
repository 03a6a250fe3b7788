package auth

import (
	"context"
	"testing"
)

// fakeRequestContext implements httpdriver.RequestContext with only
// the headers needed to exercise bearerToken.
type fakeRequestContext struct {
	headers map[string]string
	status  int
	values  map[string]any
}

func newFakeRequestContext(headers map[string]string) *fakeRequestContext {
	return &fakeRequestContext{headers: headers, values: make(map[string]any)}
}

func (f *fakeRequestContext) Method() string               { return "GET" }
func (f *fakeRequestContext) Path() string                 { return "/slurm/v0.0.39/ping" }
func (f *fakeRequestContext) PathParam(string) string       { return "" }
func (f *fakeRequestContext) QueryParam(string) string      { return "" }
func (f *fakeRequestContext) RawQuery() string              { return "" }
func (f *fakeRequestContext) Header(name string) string     { return f.headers[name] }
func (f *fakeRequestContext) BodyBytes() ([]byte, error)    { return nil, nil }
func (f *fakeRequestContext) Status(code int)                { f.status = code }
func (f *fakeRequestContext) SetHeader(string, string)       {}
func (f *fakeRequestContext) Data(string, []byte) error      { return nil }
func (f *fakeRequestContext) Set(key string, value any)      { f.values[key] = value }
func (f *fakeRequestContext) Get(key string) (any, bool)      { v, ok := f.values[key]; return v, ok }
func (f *fakeRequestContext) Context() context.Context        { return context.Background() }

func TestBearerTokenFromAuthorizationHeader(t *testing.T) {
	hc := newFakeRequestContext(map[string]string{"Authorization": "Bearer abc123"})
	if got := bearerToken(hc); got != "abc123" {
		t.Fatalf("bearerToken = %q, want %q", got, "abc123")
	}
}

func TestBearerTokenMalformedHeaderFallsBackToCookie(t *testing.T) {
	hc := newFakeRequestContext(map[string]string{
		"Authorization": "Basic abc123",
		"Cookie":        "auth_token=xyz789; other=1",
	})
	if got := bearerToken(hc); got != "xyz789" {
		t.Fatalf("bearerToken = %q, want %q", got, "xyz789")
	}
}

func TestBearerTokenAbsent(t *testing.T) {
	hc := newFakeRequestContext(map[string]string{})
	if got := bearerToken(hc); got != "" {
		t.Fatalf("bearerToken = %q, want empty", got)
	}
}

func TestCookieValueParsesMultipleCookies(t *testing.T) {
	if got := cookieValue("a=1; auth_token=tok; b=2", "auth_token"); got != "tok" {
		t.Fatalf("cookieValue = %q, want %q", got, "tok")
	}
}

func TestCookieValueMissing(t *testing.T) {
	if got := cookieValue("a=1; b=2", "auth_token"); got != "" {
		t.Fatalf("cookieValue = %q, want empty", got)
	}
}
