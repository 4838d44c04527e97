package middleware

import (
	"net/http"

	goGate "github.com/MrEthical07/goGate"
)

// Admission runs [goGate.Engine.Admit] before next. The hardening headers are
// written on every response, rejected ones included. The client id and user
// agent are attached to the request context for later session registration
// and audit events.
func Admission(engine *goGate.Engine) func(http.Handler) http.Handler {
	var static http.Header
	if engine != nil {
		static = engine.SecurityHeaders()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for k, v := range static {
				h[k] = append([]string(nil), v...)
			}
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			req := engine.AdmissionRequest(r)
			ctx := goGate.WithUserAgent(goGate.WithClientID(r.Context(), req.ClientID), r.UserAgent())
			d := engine.Admit(ctx, req)
			for k, v := range goGate.RateLimitHeaders(d) {
				h[k] = v
			}

			if !d.Allowed() {
				status := d.Outcome.StatusCode()
				http.Error(w, http.StatusText(status), status)
				return
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

