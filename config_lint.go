package goGate

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// LintSeverity ranks a configuration warning.
type LintSeverity uint8

const (
	LintInfo LintSeverity = iota
	LintWarn
	LintHigh
)

func (s LintSeverity) String() string {
	switch s {
	case LintInfo:
		return "INFO"
	case LintWarn:
		return "WARN"
	case LintHigh:
		return "HIGH"
	default:
		return "UNKNOWN"
	}
}

// LintWarning is one finding of [Config.Lint].
type LintWarning struct {
	Code     string
	Severity LintSeverity
	Message  string
}

// LintResult is the list of findings, in check order.
type LintResult []LintWarning

// Codes returns the warning codes.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// BySeverity returns the warnings at or above min.
func (r LintResult) BySeverity(min LintSeverity) LintResult {
	var out LintResult
	for _, w := range r {
		if w.Severity >= min {
			out = append(out, w)
		}
	}
	return out
}

// AsError joins every warning at or above min into one error, nil if none.
func (r LintResult) AsError(min LintSeverity) error {
	hits := r.BySeverity(min)
	if len(hits) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(hits))
	for _, w := range hits {
		msgs = append(msgs, fmt.Sprintf("[%s] %s: %s", w.Severity, w.Code, w.Message))
	}
	return errors.New("config lint: " + strings.Join(msgs, "; "))
}

// Lint reports settings that are valid but risky. It complements Validate,
// which rejects settings that cannot work.
func (c *Config) Lint() LintResult {
	var r LintResult
	add := func(code string, sev LintSeverity, msg string) {
		r = append(r, LintWarning{Code: code, Severity: sev, Message: msg})
	}

	if c.Origin.DevelopmentMode {
		add("development_mode", LintHigh, "loopback http origins are accepted; disable outside local development")
	}
	if strings.EqualFold(c.Origin.Scheme, "http") && !c.Origin.DevelopmentMode {
		add("plain_http_origin", LintWarn, "origin scheme is http; cookies travel unencrypted")
	}
	if c.Origin.TrustProxy {
		add("trust_proxy", LintInfo, "client addresses come from forwarding headers; only enable behind a proxy that overwrites them")
	}

	if c.RateLimit.Window > 0 {
		perSecond := float64(c.RateLimit.Limit) / c.RateLimit.Window.Seconds()
		if perSecond > 20 {
			add("rate_limit_loose", LintWarn, fmt.Sprintf("rate limit allows %.0f requests/s per client", perSecond))
		}
	}

	if c.Session.MaxConcurrentSessions == 0 {
		add("session_cap_disabled", LintWarn, "no per-account concurrent session cap")
	}
	if c.Session.InactivityTimeout > 4*time.Hour {
		add("inactivity_long", LintWarn, "sessions survive more than 4h of inactivity")
	}
	if c.Session.MaxAge > 7*24*time.Hour {
		add("max_age_long", LintWarn, "sessions live longer than 7 days")
	}

	if c.Token.Enabled {
		if c.Token.SigningMethod == "hs256" {
			add("token_hs256", LintInfo, "hs256 shares the verification secret with the identity provider")
		}
		if c.Token.Leeway > time.Minute {
			add("leeway_large", LintWarn, "token leeway above 1m")
		}
		if c.Token.Issuer == "" || c.Token.Audience == "" {
			add("token_claims_unchecked", LintWarn, "issuer or audience is not verified")
		}
	}

	if !c.Audit.Enabled {
		add("audit_disabled", LintInfo, "session evictions and admission rejections are not audited")
	}
	return r
}
