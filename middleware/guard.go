package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/jwt"
)

// Source selects where a guard looks for the session reference.
type Source uint8

const (
	// FromCookie reads the configured session cookie.
	FromCookie Source = 1 << iota
	// FromBearer reads an "Authorization: Bearer" identity token.
	FromBearer
	// FromAny tries the bearer token first, then the cookie.
	FromAny = FromCookie | FromBearer
)

// Auth is what a guard attaches to the request context.
type Auth struct {
	Session goGate.Session
	Grant   goGate.Grant
	// Claims is set when the session was named by a bearer token.
	Claims *jwt.Claims
}

type authContextKey struct{}

// AuthFromContext returns the Auth attached by a guard.
func AuthFromContext(ctx context.Context) (*Auth, bool) {
	a, ok := ctx.Value(authContextKey{}).(*Auth)
	return a, ok
}

// WithAuth attaches a to ctx. Tests and custom guards use it.
func WithAuth(ctx context.Context, a *Auth) context.Context {
	return context.WithValue(ctx, authContextKey{}, a)
}

// Guard validates the session named by the request and computes its grant.
// Any session failure, and an account that no longer exists, answers 401.
// A cookie-only guard also answers 401 to requests carrying a bearer token.
// When the account store is unavailable the request continues with the
// guest grant so capability checks fail closed.
func Guard(engine *goGate.Engine, source Source) func(http.Handler) http.Handler {
	cookieName := ""
	if engine != nil {
		cookieName = engine.Config().Session.CookieName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := r.Context()

			// Admission skips the origin check for bearer requests, so a
			// guard that will not verify the token must not accept one.
			if source&FromBearer == 0 {
				if _, carried := bearerToken(r.Header.Get("Authorization")); carried {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
			}

			var (
				auth Auth
				err  error
				ok   bool
			)
			if source&FromBearer != 0 {
				var token string
				if token, ok = bearerToken(r.Header.Get("Authorization")); ok {
					auth.Session, auth.Claims, err = engine.ValidateBearer(ctx, token)
				}
			}
			if !ok && source&FromCookie != 0 {
				var c *http.Cookie
				if c, err = r.Cookie(cookieName); err == nil && c.Value != "" {
					ok = true
					auth.Session, err = engine.ValidateSession(ctx, c.Value)
				}
			}
			if !ok || err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			auth.Grant, err = engine.Authorize(ctx, auth.Session.AccountID)
			if errors.Is(err, goGate.ErrAccountNotFound) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if auth.Claims == nil && auth.Session.NeedsPersist() {
				SetSessionCookie(w, engine, auth.Session)
			}
			next.ServeHTTP(w, r.WithContext(WithAuth(ctx, &auth)))
		})
	}
}

// RequireSession accepts a session cookie or a bearer token.
func RequireSession(engine *goGate.Engine) func(http.Handler) http.Handler {
	return Guard(engine, FromAny)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
