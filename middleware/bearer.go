package middleware

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// RequireBearer accepts bearer identity tokens only. Cookies are ignored,
// which keeps cross-site form posts away from API routes.
func RequireBearer(engine *goGate.Engine) func(http.Handler) http.Handler {
	return Guard(engine, FromBearer)
}
