package security

import (
	"testing"
	"time"
)

func TestBuildReport(t *testing.T) {
	tests := []struct {
		name  string
		in    ReportInput
		check func(t *testing.T, r Report)
	}{
		{
			name: "production defaults",
			in: ReportInput{
				OriginScheme:            "https",
				RateLimit:               100,
				RateWindow:              time.Minute,
				MaxConcurrentSessions:   3,
				StrictTransportSecurity: "max-age=63072000",
				ContentSecurityPolicy:   "default-src 'self'",
				AuditEnabled:            true,
			},
			check: func(t *testing.T, r Report) {
				if !r.SessionCapsActive || !r.HSTSActive || !r.CSPActive {
					t.Fatalf("expected caps, hsts and csp active: %+v", r)
				}
				if r.BearerTokensEnabled || r.SigningAlgorithm != "" {
					t.Fatalf("tokens should be off: %+v", r)
				}
			},
		},
		{
			name: "tokens without pinned claims",
			in:   ReportInput{TokenEnabled: true, SigningMethod: "ed25519", Issuer: "idp"},
			check: func(t *testing.T, r Report) {
				if r.SigningAlgorithm != "ed25519" || r.TokenClaimsPinned {
					t.Fatalf("unexpected token posture: %+v", r)
				}
			},
		},
		{
			name: "signing method hidden when tokens disabled",
			in:   ReportInput{SigningMethod: "hs256", Issuer: "idp", Audience: "gate"},
			check: func(t *testing.T, r Report) {
				if r.SigningAlgorithm != "" || r.TokenClaimsPinned {
					t.Fatalf("disabled tokens leaked posture: %+v", r)
				}
			},
		},
		{
			name: "shared store and cap disabled",
			in:   ReportInput{RedisConfigured: true, MaxConcurrentSessions: 0},
			check: func(t *testing.T, r Report) {
				if !r.SharedRateStore || r.SessionCapsActive {
					t.Fatalf("unexpected: %+v", r)
				}
			},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, BuildReport(tc.in))
		})
	}
}

func TestBuildReportCopiesWarnings(t *testing.T) {
	warnings := []string{"development_mode"}
	r := BuildReport(ReportInput{Warnings: warnings})
	warnings[0] = "mutated"
	if r.Warnings[0] != "development_mode" {
		t.Fatal("report shares the warnings slice with its input")
	}
}
