package admission

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOriginPolicy(t *testing.T) {
	prod := OriginPolicy{Scheme: "https"}
	dev := OriginPolicy{Scheme: "https", AllowLoopbackHTTP: true}

	tests := []struct {
		name   string
		policy OriginPolicy
		method string
		origin string
		host   string
		auth   string
		want   bool
	}{
		{"get ignores mismatch", prod, "GET", "https://evil.example", "legit.example", "", true},
		{"head ignores mismatch", prod, "HEAD", "https://evil.example", "legit.example", "", true},
		{"options ignores mismatch", prod, "OPTIONS", "https://evil.example", "legit.example", "", true},
		{"post mismatch", prod, "POST", "https://evil.example", "legit.example", "", false},
		{"post match", prod, "POST", "https://legit.example", "legit.example", "", true},
		{"put mismatch", prod, "PUT", "https://evil.example", "legit.example", "", false},
		{"patch mismatch", prod, "PATCH", "https://evil.example", "legit.example", "", false},
		{"delete mismatch", prod, "DELETE", "https://evil.example", "legit.example", "", false},
		{"lowercase method", prod, "post", "https://evil.example", "legit.example", "", false},
		{"scheme mismatch", prod, "POST", "http://legit.example", "legit.example", "", false},
		{"port must match", prod, "POST", "https://legit.example", "legit.example:8443", "", false},
		{"port match", prod, "POST", "https://legit.example:8443", "legit.example:8443", "", true},
		{"trailing slash is a mismatch", prod, "POST", "https://legit.example/", "legit.example", "", false},
		{"null origin", prod, "POST", "null", "legit.example", "", false},
		{"missing origin passes", prod, "POST", "", "legit.example", "", true},
		{"missing host passes", prod, "POST", "https://evil.example", "", "", true},
		{"bearer exempt", prod, "POST", "https://evil.example", "legit.example", "Bearer eyJhbGciOi", true},
		{"bearer case insensitive", prod, "DELETE", "https://evil.example", "legit.example", "bearer token", true},
		{"empty bearer not exempt", prod, "POST", "https://evil.example", "legit.example", "Bearer ", false},
		{"basic auth not exempt", prod, "POST", "https://evil.example", "legit.example", "Basic dXNlcg==", false},
		{"localhost rejected in production", prod, "POST", "http://localhost:3000", "localhost:8080", "", false},
		{"dev localhost any port", dev, "POST", "http://localhost:3000", "localhost:8080", "", true},
		{"dev ipv4 loopback", dev, "POST", "http://127.0.0.1:5173", "127.0.0.1:8080", "", true},
		{"dev ipv6 loopback", dev, "POST", "http://[::1]:5173", "[::1]:8080", "", true},
		{"dev mixed loopback names", dev, "PUT", "http://localhost:5173", "127.0.0.1", "", true},
		{"dev remote host still checked", dev, "POST", "http://localhost:3000", "legit.example", "", false},
		{"dev remote origin still checked", dev, "POST", "http://evil.example", "localhost:8080", "", false},
		{"dev https loopback needs exact match", dev, "POST", "https://localhost:3000", "localhost:8080", "", false},
		{"dev exact match", dev, "POST", "https://legit.example", "legit.example", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.policy.Validate(tc.method, tc.origin, tc.host, tc.auth); got != tc.want {
				t.Fatalf("Validate(%q, %q, %q, %q) = %v, want %v",
					tc.method, tc.origin, tc.host, tc.auth, got, tc.want)
			}
		})
	}
}

func TestOriginPolicyDefaultsToHTTPS(t *testing.T) {
	var p OriginPolicy
	if !p.Validate("POST", "https://legit.example", "legit.example", "") {
		t.Fatal("zero policy should compare against https")
	}
	if p.Validate("POST", "http://legit.example", "legit.example", "") {
		t.Fatal("zero policy must not accept http")
	}
}

func TestGateDevelopmentModeFollowsConfig(t *testing.T) {
	prod, _ := newTestGate(t, nil)
	dev, _ := newTestGate(t, func(c *Config) { c.DevelopmentMode = true })

	if prod.ValidateOrigin("POST", "http://localhost:3000", "localhost:8080", "") {
		t.Fatal("production gate accepted loopback http origin")
	}
	if !dev.ValidateOrigin("POST", "http://localhost:3000", "localhost:8080", "") {
		t.Fatal("development gate rejected loopback http origin")
	}
}

func TestClientID(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{"remote addr host", "203.0.113.5:41000", nil, false, "203.0.113.5"},
		{"ipv6 remote", "[2001:db8::1]:41000", nil, false, "2001:db8::1"},
		{"remote without port", "203.0.113.5", nil, false, "203.0.113.5"},
		{"empty remote", "", nil, false, "unknown"},
		{"forwarded ignored without trust", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.9"}, false, "10.0.0.1"},
		{"forwarded first hop", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.9, 10.0.0.2"}, true, "198.51.100.9"},
		{"real ip fallback", "10.0.0.1:1", map[string]string{"X-Real-IP": "198.51.100.10"}, true, "198.51.100.10"},
		{"forwarded wins over real ip", "10.0.0.1:1", map[string]string{"X-Forwarded-For": "198.51.100.9", "X-Real-IP": "198.51.100.10"}, true, "198.51.100.9"},
		{"trust without headers", "10.0.0.1:1", nil, true, "10.0.0.1"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			if got := ClientID(r, tc.trustProxy); got != tc.want {
				t.Fatalf("ClientID() = %q, want %q", got, tc.want)
			}
		})
	}
}
