package admission

import (
	"net"
	"net/http"
	"strings"
)

const unknownClient = "unknown"

// ClientID returns the network identifier used as the rate-limit key.
//
// Forwarding headers are only read when trustProxy is set; a client can
// forge them otherwise. The first X-Forwarded-For hop wins over X-Real-IP.
func ClientID(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}

	if r.RemoteAddr == "" {
		return unknownClient
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
