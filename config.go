package goGate

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goGate/admission"
	"github.com/MrEthical07/goGate/session"
)

// Config holds every tunable of the gate. Build it from [DefaultConfig] or
// [DevelopmentConfig], adjust fields, and hand it to [Builder.WithConfig].
// The engine keeps its own deep copy.
type Config struct {
	RateLimit RateLimitConfig
	Origin    OriginConfig
	Headers   HeaderConfig
	Session   SessionConfig
	Token     TokenConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
ADMISSION CONFIG
====================================
*/

// RateLimitConfig sets the sliding window applied per client identifier.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
	// RedisPrefix namespaces window keys when a Redis client is configured.
	RedisPrefix string
	// SweepInterval is how often idle in-memory windows are dropped.
	SweepInterval time.Duration
}

// OriginConfig controls the cross-origin forgery check.
type OriginConfig struct {
	// Scheme of the public site, "https" or "http".
	Scheme string
	// DevelopmentMode accepts http:// loopback origins on loopback hosts.
	// Never enable it in production.
	DevelopmentMode bool
	// TrustProxy reads the client address from X-Forwarded-For / X-Real-IP.
	TrustProxy bool
}

// HeaderConfig is the static hardening header set.
type HeaderConfig = admission.HeaderConfig

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig holds session timeouts and the concurrency cap.
type SessionConfig struct {
	MaxAge                time.Duration
	InactivityTimeout     time.Duration
	UpdateAge             time.Duration
	MaxConcurrentSessions int
	SweepInterval         time.Duration
	// CookieName is read by the HTTP middleware.
	CookieName string
}

// TokenConfig enables bearer identity tokens as a second way to name a
// session. Disabled by default.
type TokenConfig struct {
	Enabled       bool
	SigningMethod string // "ed25519" (default), "hs256" or "jwks"
	PrivateKey    []byte
	PublicKey     []byte
	// JWKSURL is the identity provider's key set endpoint, used by "jwks".
	JWKSURL             string
	JWKSRefreshInterval time.Duration
	Issuer              string
	Audience            string
	Leeway              time.Duration
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
PRESETS
====================================
*/

// DefaultConfig returns production defaults: 100 requests per minute,
// https origins, 24h/1h/15m session timeouts, three concurrent sessions.
func DefaultConfig() Config {
	sc := session.DefaultConfig()
	return Config{
		RateLimit: RateLimitConfig{
			Limit:         100,
			Window:        time.Minute,
			RedisPrefix:   "grl",
			SweepInterval: time.Minute,
		},
		Origin: OriginConfig{
			Scheme: "https",
		},
		Headers: admission.DefaultHeaders(),
		Session: SessionConfig{
			MaxAge:                sc.MaxAge,
			InactivityTimeout:     sc.InactivityTimeout,
			UpdateAge:             sc.UpdateAge,
			MaxConcurrentSessions: sc.MaxConcurrentSessions,
			SweepInterval:         sc.SweepInterval,
			CookieName:            "gogate_session",
		},
		Token: TokenConfig{
			SigningMethod: "ed25519",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// DevelopmentConfig is DefaultConfig with development mode on and latency
// histograms enabled.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Origin.DevelopmentMode = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (c *Config) admissionConfig() admission.Config {
	return admission.Config{
		Limit:           c.RateLimit.Limit,
		Window:          c.RateLimit.Window,
		Scheme:          c.Origin.Scheme,
		DevelopmentMode: c.Origin.DevelopmentMode,
		TrustProxy:      c.Origin.TrustProxy,
		Headers:         c.Headers,
	}
}

func (c *Config) sessionConfig() session.Config {
	return session.Config{
		MaxAge:                c.Session.MaxAge,
		InactivityTimeout:     c.Session.InactivityTimeout,
		UpdateAge:             c.Session.UpdateAge,
		MaxConcurrentSessions: c.Session.MaxConcurrentSessions,
		SweepInterval:         c.Session.SweepInterval,
	}
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks every section and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.admissionConfig().Validate(); err != nil {
		return err
	}
	if c.RateLimit.SweepInterval <= 0 {
		return errors.New("RateLimit SweepInterval must be > 0")
	}
	if err := c.sessionConfig().Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Session.CookieName) == "" {
		return errors.New("Session CookieName must not be empty")
	}

	if c.Token.Enabled {
		switch c.Token.SigningMethod {
		case "ed25519":
			if len(c.Token.PublicKey) == 0 {
				return errors.New("Token ed25519 requires PublicKey")
			}
		case "hs256":
			if len(c.Token.PrivateKey) < 32 {
				return errors.New("Token hs256 requires a key of at least 256 bits")
			}
		case "jwks":
			if strings.TrimSpace(c.Token.JWKSURL) == "" {
				return errors.New("Token jwks requires JWKSURL")
			}
			if c.Token.JWKSRefreshInterval < 0 {
				return errors.New("Token JWKSRefreshInterval must be >= 0")
			}
		default:
			return errors.New("Token SigningMethod must be ed25519, hs256 or jwks")
		}
		if c.Token.Leeway < 0 || c.Token.Leeway > 2*time.Minute {
			return errors.New("Token Leeway must be between 0 and 2m")
		}
		if c.Token.Audience != "" && strings.TrimSpace(c.Token.Audience) == "" {
			return errors.New("Token Audience must not be blank")
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}

/*
====================================
ENVIRONMENT
====================================
*/

// ConfigFromEnv overlays GOGATE_* environment variables onto base. Unset
// variables keep the base value. Durations use Go syntax (30s, 15m).
//
//	GOGATE_RATE_LIMIT, GOGATE_RATE_WINDOW, GOGATE_RATE_REDIS_PREFIX
//	GOGATE_ORIGIN_SCHEME, GOGATE_DEVELOPMENT_MODE, GOGATE_TRUST_PROXY
//	GOGATE_SESSION_MAX_AGE, GOGATE_SESSION_INACTIVITY_TIMEOUT,
//	GOGATE_SESSION_UPDATE_AGE, GOGATE_SESSION_MAX_CONCURRENT,
//	GOGATE_SESSION_SWEEP_INTERVAL, GOGATE_SESSION_COOKIE
//	GOGATE_TOKEN_ENABLED, GOGATE_TOKEN_SIGNING_METHOD, GOGATE_TOKEN_SECRET,
//	GOGATE_TOKEN_PUBLIC_KEY, GOGATE_TOKEN_ISSUER, GOGATE_TOKEN_AUDIENCE
//	GOGATE_AUDIT_ENABLED, GOGATE_METRICS_ENABLED
func ConfigFromEnv(base Config) (Config, error) {
	cfg := cloneConfig(base)
	var err error

	if cfg.RateLimit.Limit, err = envInt("GOGATE_RATE_LIMIT", cfg.RateLimit.Limit); err != nil {
		return Config{}, err
	}
	if cfg.RateLimit.Window, err = envDuration("GOGATE_RATE_WINDOW", cfg.RateLimit.Window); err != nil {
		return Config{}, err
	}
	cfg.RateLimit.RedisPrefix = envString("GOGATE_RATE_REDIS_PREFIX", cfg.RateLimit.RedisPrefix)

	cfg.Origin.Scheme = envString("GOGATE_ORIGIN_SCHEME", cfg.Origin.Scheme)
	if cfg.Origin.DevelopmentMode, err = envBool("GOGATE_DEVELOPMENT_MODE", cfg.Origin.DevelopmentMode); err != nil {
		return Config{}, err
	}
	if cfg.Origin.TrustProxy, err = envBool("GOGATE_TRUST_PROXY", cfg.Origin.TrustProxy); err != nil {
		return Config{}, err
	}

	if cfg.Session.MaxAge, err = envDuration("GOGATE_SESSION_MAX_AGE", cfg.Session.MaxAge); err != nil {
		return Config{}, err
	}
	if cfg.Session.InactivityTimeout, err = envDuration("GOGATE_SESSION_INACTIVITY_TIMEOUT", cfg.Session.InactivityTimeout); err != nil {
		return Config{}, err
	}
	if cfg.Session.UpdateAge, err = envDuration("GOGATE_SESSION_UPDATE_AGE", cfg.Session.UpdateAge); err != nil {
		return Config{}, err
	}
	if cfg.Session.MaxConcurrentSessions, err = envInt("GOGATE_SESSION_MAX_CONCURRENT", cfg.Session.MaxConcurrentSessions); err != nil {
		return Config{}, err
	}
	if cfg.Session.SweepInterval, err = envDuration("GOGATE_SESSION_SWEEP_INTERVAL", cfg.Session.SweepInterval); err != nil {
		return Config{}, err
	}
	cfg.Session.CookieName = envString("GOGATE_SESSION_COOKIE", cfg.Session.CookieName)

	if cfg.Token.Enabled, err = envBool("GOGATE_TOKEN_ENABLED", cfg.Token.Enabled); err != nil {
		return Config{}, err
	}
	cfg.Token.SigningMethod = strings.ToLower(envString("GOGATE_TOKEN_SIGNING_METHOD", cfg.Token.SigningMethod))
	if v, ok := os.LookupEnv("GOGATE_TOKEN_SECRET"); ok {
		cfg.Token.PrivateKey = []byte(v)
	}
	if v, ok := os.LookupEnv("GOGATE_TOKEN_PUBLIC_KEY"); ok {
		cfg.Token.PublicKey = []byte(v)
	}
	cfg.Token.JWKSURL = envString("GOGATE_TOKEN_JWKS_URL", cfg.Token.JWKSURL)
	if cfg.Token.JWKSRefreshInterval, err = envDuration("GOGATE_TOKEN_JWKS_REFRESH", cfg.Token.JWKSRefreshInterval); err != nil {
		return Config{}, err
	}
	cfg.Token.Issuer = envString("GOGATE_TOKEN_ISSUER", cfg.Token.Issuer)
	cfg.Token.Audience = envString("GOGATE_TOKEN_AUDIENCE", cfg.Token.Audience)

	if cfg.Audit.Enabled, err = envBool("GOGATE_AUDIT_ENABLED", cfg.Audit.Enabled); err != nil {
		return Config{}, err
	}
	if cfg.Metrics.Enabled, err = envBool("GOGATE_METRICS_ENABLED", cfg.Metrics.Enabled); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}
