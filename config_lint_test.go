package goGate

import (
	"strings"
	"testing"
	"time"
)

func TestLintDefaultConfigClean(t *testing.T) {
	cfg := DefaultConfig()
	if res := cfg.Lint(); len(res) != 0 {
		t.Fatalf("default config should lint clean, got %v", res.Codes())
	}
}

func TestLintCodes(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Config)
		code     string
		severity LintSeverity
	}{
		{"development mode", func(c *Config) { c.Origin.DevelopmentMode = true }, "development_mode", LintHigh},
		{"plain http", func(c *Config) { c.Origin.Scheme = "http" }, "plain_http_origin", LintWarn},
		{"trust proxy", func(c *Config) { c.Origin.TrustProxy = true }, "trust_proxy", LintInfo},
		{"loose rate limit", func(c *Config) {
			c.RateLimit.Limit = 5000
			c.RateLimit.Window = time.Minute
		}, "rate_limit_loose", LintWarn},
		{"session cap disabled", func(c *Config) { c.Session.MaxConcurrentSessions = 0 }, "session_cap_disabled", LintWarn},
		{"long inactivity", func(c *Config) { c.Session.InactivityTimeout = 8 * time.Hour }, "inactivity_long", LintWarn},
		{"long max age", func(c *Config) { c.Session.MaxAge = 30 * 24 * time.Hour }, "max_age_long", LintWarn},
		{"hs256", func(c *Config) {
			c.Token.Enabled = true
			c.Token.SigningMethod = "hs256"
			c.Token.Issuer, c.Token.Audience = "idp", "gate"
		}, "token_hs256", LintInfo},
		{"unchecked claims", func(c *Config) { c.Token.Enabled = true }, "token_claims_unchecked", LintWarn},
		{"large leeway", func(c *Config) {
			c.Token.Enabled = true
			c.Token.Leeway = 90 * time.Second
		}, "leeway_large", LintWarn},
		{"audit disabled", func(c *Config) { c.Audit.Enabled = false }, "audit_disabled", LintInfo},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			res := cfg.Lint()
			var found *LintWarning
			for i := range res {
				if res[i].Code == tc.code {
					found = &res[i]
				}
			}
			if found == nil {
				t.Fatalf("expected %q in %v", tc.code, res.Codes())
			}
			if found.Severity != tc.severity {
				t.Fatalf("%s severity = %s, want %s", tc.code, found.Severity, tc.severity)
			}
		})
	}
}

func TestLintDevelopmentModeSuppressesPlainHTTP(t *testing.T) {
	cfg := DevelopmentConfig()
	cfg.Origin.Scheme = "http"
	if containsCode(cfg.Lint().Codes(), "plain_http_origin") {
		t.Fatal("plain_http_origin duplicated under development mode")
	}
}

func TestLintAsError(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Origin.DevelopmentMode = true
	cfg.Audit.Enabled = false

	res := cfg.Lint()
	if err := res.AsError(LintHigh); err == nil || !strings.Contains(err.Error(), "development_mode") {
		t.Fatalf("AsError(HIGH) = %v", err)
	}
	if err := res.AsError(LintHigh); strings.Contains(err.Error(), "audit_disabled") {
		t.Fatal("AsError(HIGH) included an INFO warning")
	}
	if got := len(res.BySeverity(LintInfo)); got != 2 {
		t.Fatalf("BySeverity(INFO) = %d, want 2", got)
	}

	clean := DefaultConfig()
	if err := clean.Lint().AsError(LintInfo); err != nil {
		t.Fatalf("clean config AsError = %v", err)
	}
}

func containsCode(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
