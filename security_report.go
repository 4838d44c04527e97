package goGate

import (
	"sort"

	"github.com/MrEthical07/goGate/internal/security"
)

// SecurityReport summarizes the engine's security posture.
type SecurityReport = security.Report

// SecurityReport returns the posture of the running configuration,
// including the codes of every [Config.Lint] warning.
func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	headers := e.SecurityHeaders()
	lint := e.config.Lint()
	sort.SliceStable(lint, func(i, j int) bool { return lint[i].Severity > lint[j].Severity })

	return security.BuildReport(security.ReportInput{
		DevelopmentMode:         e.config.Origin.DevelopmentMode,
		OriginScheme:            e.config.Origin.Scheme,
		TrustProxy:              e.config.Origin.TrustProxy,
		RateLimit:               e.config.RateLimit.Limit,
		RateWindow:              e.config.RateLimit.Window,
		RedisConfigured:         e.redis != nil,
		SessionMaxAge:           e.config.Session.MaxAge,
		InactivityTimeout:       e.config.Session.InactivityTimeout,
		MaxConcurrentSessions:   e.config.Session.MaxConcurrentSessions,
		TokenEnabled:            e.config.Token.Enabled,
		SigningMethod:           e.config.Token.SigningMethod,
		Issuer:                  e.config.Token.Issuer,
		Audience:                e.config.Token.Audience,
		StrictTransportSecurity: headers.Get("Strict-Transport-Security"),
		ContentSecurityPolicy:   headers.Get("Content-Security-Policy"),
		AuditEnabled:            e.config.Audit.Enabled,
		MetricsEnabled:          e.config.Metrics.Enabled,
		Warnings:                lint.Codes(),
	})
}
