package middleware

import (
	"net/http"
	"strings"

	goGate "github.com/MrEthical07/goGate"
)

// SetSessionCookie writes the session cookie for s. It expires at the
// session's absolute lifetime; idle expiry is enforced server-side.
func SetSessionCookie(w http.ResponseWriter, engine *goGate.Engine, s goGate.Session) {
	cfg := engine.Config()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    s.ID,
		Path:     "/",
		Expires:  s.CreatedAt.Add(cfg.Session.MaxAge),
		HttpOnly: true,
		Secure:   !strings.EqualFold(cfg.Origin.Scheme, "http"),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie in the browser.
func ClearSessionCookie(w http.ResponseWriter, engine *goGate.Engine) {
	cfg := engine.Config()
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !strings.EqualFold(cfg.Origin.Scheme, "http"),
		SameSite: http.SameSiteLaxMode,
	})
}
