package auth

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie and header names shared with the frontend.
const (
	AccessCookie      = "access_token_cookie"
	RefreshCookie     = "refresh_token_cookie"
	AccessCSRFCookie  = "csrf_access_token"
	RefreshCSRFCookie = "csrf_refresh_token"
	CSRFHeader        = "X-CSRF-TOKEN"
)

// Cookies writes token cookies. The token cookies are HttpOnly; the csrf
// cookies are readable by scripts so the client can echo them in CSRFHeader.
type Cookies struct {
	Secure   bool
	SameSite http.SameSite
	Domain   string
}

// NewCookies returns cookie settings; dev mode drops the Secure flag.
func NewCookies(devMode bool) Cookies {
	return Cookies{Secure: !devMode, SameSite: http.SameSiteLaxMode}
}

// SetPair sets all four cookies for a freshly minted pair.
func (ck Cookies) SetPair(c *gin.Context, p Pair) {
	ck.set(c, AccessCookie, p.Access.Raw, p.Access.ExpiresAt(), true)
	ck.set(c, AccessCSRFCookie, p.Access.Claims.CSRF, p.Access.ExpiresAt(), false)
	ck.set(c, RefreshCookie, p.Refresh.Raw, p.Refresh.ExpiresAt(), true)
	ck.set(c, RefreshCSRFCookie, p.Refresh.Claims.CSRF, p.Refresh.ExpiresAt(), false)
}

// Clear expires every auth cookie.
func (ck Cookies) Clear(c *gin.Context) {
	for _, name := range []string{AccessCookie, AccessCSRFCookie, RefreshCookie, RefreshCSRFCookie} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   ck.Domain,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			Secure:   ck.Secure,
			HttpOnly: name == AccessCookie || name == RefreshCookie,
			SameSite: ck.SameSite,
		})
	}
}

func (ck Cookies) set(c *gin.Context, name, value string, expires time.Time, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   ck.Domain,
		Expires:  expires,
		Secure:   ck.Secure,
		HttpOnly: httpOnly,
		SameSite: ck.SameSite,
	})
}

// cookieName maps a token kind to the cookie carrying it.
func cookieName(kind Kind) string {
	if kind == KindRefresh {
		return RefreshCookie
	}
	return AccessCookie
}
