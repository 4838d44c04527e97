package middleware

import (
	"net/http"

	"github.com/MrEthical07/goGate/permission"
)

// RequireCapability answers 403 unless the grant attached by a guard holds
// every capability in caps. Without a guard in front it answers 401.
func RequireCapability(caps ...permission.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth, ok := AuthFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			for _, c := range caps {
				if !auth.Grant.Has(c) {
					http.Error(w, "forbidden", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
