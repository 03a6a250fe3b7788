package auth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"slurmrestd/shared/logger"
)

// LoginHandler initiates the OAuth2 flow for the operator UI, grounded
// on lib/auth.go's LoginHandler. The CSRF state and intended redirect
// are kept in the gin-contrib/sessions-backed session rather than
// encoded into the state parameter itself, since a server-side session
// store is already wired for this boundary.
func (a *Auth) LoginHandler(c *gin.Context) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Error("auth: failed to generate state", logger.Err(err))
		c.Status(http.StatusInternalServerError)
		return
	}
	state := base64.URLEncoding.EncodeToString(b)

	redirectURL := c.Query("redirect")
	if redirectURL == "" {
		redirectURL = "/"
	}

	session := sessions.Default(c)
	session.Set("auth_csrf", state)
	session.Set("auth_redirect", redirectURL)
	if err := session.Save(); err != nil {
		logger.Error("auth: failed to save session", logger.Err(err))
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, a.oauth.AuthCodeURL(state))
}

// CallbackHandler completes the flow, grounded on lib/auth.go's
// CallbackHandler: verify CSRF state, exchange the code, verify the ID
// token, then set the cookie BearerMiddleware reads on subsequent API
// calls.
func (a *Auth) CallbackHandler(c *gin.Context) {
	session := sessions.Default(c)
	wantState, _ := session.Get("auth_csrf").(string)
	redirectURL, _ := session.Get("auth_redirect").(string)
	session.Delete("auth_csrf")
	session.Delete("auth_redirect")
	_ = session.Save()

	if wantState == "" || c.Query("state") != wantState {
		c.Status(http.StatusBadRequest)
		return
	}

	token, err := a.oauth.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		logger.Error("auth: code exchange failed", logger.Err(err))
		c.Status(http.StatusUnauthorized)
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		c.Status(http.StatusUnauthorized)
		return
	}

	idToken, err := a.verifier.Verify(c.Request.Context(), rawIDToken)
	if err != nil {
		logger.Error("auth: id token verification failed", logger.Err(err))
		c.Status(http.StatusUnauthorized)
		return
	}

	maxAge := int(time.Until(idToken.Expiry).Seconds())
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("auth_token", rawIDToken, maxAge, "/", "", true, true)

	if redirectURL == "" {
		redirectURL = "/"
	}
	c.Redirect(http.StatusTemporaryRedirect, redirectURL)
}

// LogoutHandler clears the session cookie, grounded on lib/auth.go's
// LogoutHandler (its Auth0-specific /v2/logout redirect is dropped
// since this boundary is issuer-agnostic). The redirect query parameter
// is honored only for relative targets; an absolute URL, such as a
// provider-side logout endpoint, is replaced with "/".
func (a *Auth) LogoutHandler(c *gin.Context) {
	c.SetCookie("auth_token", "", -1, "/", "", true, true)

	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()

	returnTo := c.Query("redirect")
	if returnTo == "" {
		returnTo = "/"
	}
	if u, err := url.Parse(returnTo); err != nil || u.IsAbs() {
		returnTo = "/"
	}
	c.Redirect(http.StatusTemporaryRedirect, returnTo)
}
