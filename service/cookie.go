// file: service/cookie.go

package service

import (
	"net/http"
	"strings"
	"time"
)

// CookieBuilder produces the refresh token cookie with fixed security
// attributes. Browser clients only ever receive the refresh secret through
// this cookie, never in a JSON body.
type CookieBuilder struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
	Domain   string
	Path     string
}

func NewCookieBuilder(name string, secure bool, sameSite, domain, path string) *CookieBuilder {
	return &CookieBuilder{
		Name:     name,
		Secure:   secure,
		SameSite: parseSameSite(sameSite),
		Domain:   domain,
		Path:     path,
	}
}

func parseSameSite(value string) http.SameSite {
	switch strings.ToLower(value) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

// BuildRefreshCookie returns the http-only cookie carrying the raw refresh
// token, expiring together with the token itself.
func (b *CookieBuilder) BuildRefreshCookie(rawToken string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     b.Name,
		Value:    rawToken,
		HttpOnly: true,
		Secure:   b.Secure,
		SameSite: b.SameSite,
		Domain:   b.Domain,
		Path:     b.Path,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	}
}

// BuildClearCookie returns a cookie that removes the refresh cookie.
func (b *CookieBuilder) BuildClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     b.Name,
		Value:    "",
		HttpOnly: true,
		Secure:   b.Secure,
		SameSite: b.SameSite,
		Domain:   b.Domain,
		Path:     b.Path,
		MaxAge:   -1,
	}
}

// IsBrowserClient decides the refresh token transport. Every mainstream
// browser sends a Mozilla/ prefixed User-Agent; API clients and mobile SDKs
// do not, and get the token in the JSON body instead.
func IsBrowserClient(userAgent string) bool {
	return strings.HasPrefix(userAgent, "Mozilla/")
}
