// Package helpers agrupa utilidades chicas de la capa HTTP.
package helpers

import (
	"net/http"
	"time"
)

// Nombres de las cookies de sesión.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// BuildCookie arma una cookie de sesión httpOnly con expiry atado al TTL
// del token que transporta.
func BuildCookie(name, value string, ttl time.Duration, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// BuildDeletionCookie arma una cookie que borra la existente en el browser.
func BuildDeletionCookie(name string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
