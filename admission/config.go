package admission

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

// Config controls the gate.
type Config struct {
	// Limit is the number of requests a client may make per Window.
	Limit  int
	Window time.Duration

	// Scheme is the expected origin scheme, "https" unless the site is
	// served over plain http.
	Scheme string

	DevelopmentMode bool

	// TrustProxy makes ClientID honour X-Forwarded-For and X-Real-IP.
	TrustProxy bool

	Headers HeaderConfig
}

// HeaderConfig holds the static hardening headers sent on every response.
// Empty fields fall back to the defaults.
type HeaderConfig struct {
	FrameOptions            string
	ContentTypeOptions      string
	StrictTransportSecurity string
	ContentSecurityPolicy   string
	ReferrerPolicy          string
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Limit:   100,
		Window:  time.Minute,
		Scheme:  "https",
		Headers: DefaultHeaders(),
	}
}

// DefaultHeaders returns the default hardening header values.
func DefaultHeaders() HeaderConfig {
	return HeaderConfig{
		FrameOptions:            "DENY",
		ContentTypeOptions:      "nosniff",
		StrictTransportSecurity: "max-age=63072000; includeSubDomains; preload",
		ContentSecurityPolicy:   "default-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
		ReferrerPolicy:          "strict-origin-when-cross-origin",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return errors.New("admission Limit must be > 0")
	}
	if c.Window <= 0 {
		return errors.New("admission Window must be > 0")
	}
	switch strings.ToLower(c.Scheme) {
	case "http", "https":
	default:
		return errors.New("admission Scheme must be http or https")
	}
	return nil
}

func (h HeaderConfig) withDefaults() HeaderConfig {
	def := DefaultHeaders()
	if h.FrameOptions == "" {
		h.FrameOptions = def.FrameOptions
	}
	if h.ContentTypeOptions == "" {
		h.ContentTypeOptions = def.ContentTypeOptions
	}
	if h.StrictTransportSecurity == "" {
		h.StrictTransportSecurity = def.StrictTransportSecurity
	}
	if h.ContentSecurityPolicy == "" {
		h.ContentSecurityPolicy = def.ContentSecurityPolicy
	}
	if h.ReferrerPolicy == "" {
		h.ReferrerPolicy = def.ReferrerPolicy
	}
	return h
}

func (h HeaderConfig) header() http.Header {
	out := make(http.Header, 5)
	out.Set("X-Frame-Options", h.FrameOptions)
	out.Set("X-Content-Type-Options", h.ContentTypeOptions)
	out.Set("Strict-Transport-Security", h.StrictTransportSecurity)
	out.Set("Content-Security-Policy", h.ContentSecurityPolicy)
	out.Set("Referrer-Policy", h.ReferrerPolicy)
	return out
}
