package admission

import (
	"net"
	"net/url"
	"strings"
)

// OriginPolicy is the cross-origin forgery check on its own, usable without
// a Gate.
type OriginPolicy struct {
	// Scheme is compared against the Origin header, e.g. "https".
	Scheme string
	// AllowLoopbackHTTP accepts http:// loopback origins for loopback
	// hosts. Development only.
	AllowLoopbackHTTP bool
}

// Validate reports whether the request may proceed.
//
// Safe methods always pass. For POST, PUT, PATCH and DELETE a Bearer
// authorization exempts the request; otherwise, when both origin and host
// are non-empty, origin must equal scheme://host exactly.
func (p OriginPolicy) Validate(method, origin, host, authorization string) bool {
	if !stateChanging(method) {
		return true
	}
	if isBearer(authorization) {
		return true
	}
	if origin == "" || host == "" {
		return true
	}

	scheme := strings.ToLower(p.Scheme)
	if scheme == "" {
		scheme = "https"
	}
	if origin == scheme+"://"+host {
		return true
	}
	return p.AllowLoopbackHTTP && loopbackPair(origin, host)
}

func stateChanging(method string) bool {
	switch strings.ToUpper(method) {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

func isBearer(authorization string) bool {
	const prefix = "bearer "
	if len(authorization) <= len(prefix) {
		return false
	}
	return strings.EqualFold(authorization[:len(prefix)], prefix) &&
		strings.TrimSpace(authorization[len(prefix):]) != ""
}

// loopbackPair reports whether origin is an http:// loopback origin and host
// names a loopback host. Ports may differ.
func loopbackPair(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "http" || u.Host == "" || u.Path != "" {
		return false
	}
	return isLoopback(u.Hostname()) && isLoopback(hostOnly(host))
}

func isLoopback(h string) bool {
	switch strings.ToLower(h) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func hostOnly(hostport string) string {
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		return h
	}
	return strings.TrimSuffix(strings.TrimPrefix(hostport, "["), "]")
}
