package security

import "time"

// Report is a read-only summary of the security posture of a running
// engine, for startup logs and admin endpoints.
type Report struct {
	DevelopmentMode       bool
	OriginScheme          string
	TrustProxy            bool
	RateLimit             int
	RateWindow            time.Duration
	SharedRateStore       bool
	SessionMaxAge         time.Duration
	InactivityTimeout     time.Duration
	SessionCapsActive     bool
	MaxConcurrentSessions int
	BearerTokensEnabled   bool
	SigningAlgorithm      string
	TokenClaimsPinned     bool
	HSTSActive            bool
	CSPActive             bool
	AuditEnabled          bool
	MetricsEnabled        bool
	// Warnings lists the codes of risky settings, highest severity first.
	Warnings []string
}

// ReportInput is the flattened configuration BuildReport reads.
type ReportInput struct {
	DevelopmentMode         bool
	OriginScheme            string
	TrustProxy              bool
	RateLimit               int
	RateWindow              time.Duration
	RedisConfigured         bool
	SessionMaxAge           time.Duration
	InactivityTimeout       time.Duration
	MaxConcurrentSessions   int
	TokenEnabled            bool
	SigningMethod           string
	Issuer                  string
	Audience                string
	StrictTransportSecurity string
	ContentSecurityPolicy   string
	AuditEnabled            bool
	MetricsEnabled          bool
	Warnings                []string
}

// BuildReport derives the posture report from in.
func BuildReport(in ReportInput) Report {
	r := Report{
		DevelopmentMode:       in.DevelopmentMode,
		OriginScheme:          in.OriginScheme,
		TrustProxy:            in.TrustProxy,
		RateLimit:             in.RateLimit,
		RateWindow:            in.RateWindow,
		SharedRateStore:       in.RedisConfigured,
		SessionMaxAge:         in.SessionMaxAge,
		InactivityTimeout:     in.InactivityTimeout,
		SessionCapsActive:     in.MaxConcurrentSessions > 0,
		MaxConcurrentSessions: in.MaxConcurrentSessions,
		BearerTokensEnabled:   in.TokenEnabled,
		HSTSActive:            in.StrictTransportSecurity != "",
		CSPActive:             in.ContentSecurityPolicy != "",
		AuditEnabled:          in.AuditEnabled,
		MetricsEnabled:        in.MetricsEnabled,
		Warnings:              append([]string(nil), in.Warnings...),
	}
	if in.TokenEnabled {
		r.SigningAlgorithm = in.SigningMethod
		r.TokenClaimsPinned = in.Issuer != "" && in.Audience != ""
	}
	return r
}
