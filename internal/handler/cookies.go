package handler

import (
	"net/http"
	"time"
)

const (
	cartIDCookie  = "cartId"
	guestIDCookie = "guestId"
	sessionCookie = "session-token"

	guestIDHeader = "X-Guest-ID"

	cartCookieMaxAge  = 30 * 24 * time.Hour
	guestCookieMaxAge = 365 * 24 * time.Hour
)

type CookieConfig struct {
	Secure bool
	Domain string
}

// setCookie is the only place cookies are written, so every cookie the
// routes issue is HttpOnly and SameSite=Lax.
func (cfg CookieConfig) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   int(maxAge.Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cfg CookieConfig) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
