package goGate

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MrEthical07/goGate/admission"
)

// Admit runs the rate limit and then the origin check for req. Rejections
// are counted, audited and returned as a Decision; Admit itself never fails.
func (e *Engine) Admit(ctx context.Context, req AdmissionRequest) Decision {
	if e == nil || e.gate == nil {
		return Decision{Outcome: admission.Allowed, Reason: admission.Allowed.String(), Degraded: true}
	}
	start := time.Now()
	defer e.observe(MetricAdmitLatency, start)

	d := e.gate.Admit(ctx, req)
	if d.Degraded {
		e.metricInc(MetricRateBackendDegraded)
	}

	switch d.Outcome {
	case admission.Allowed:
		e.metricInc(MetricAdmissionAllowed)
	case admission.TooManyRequests:
		e.metricInc(MetricRateLimited)
		e.emitAudit(ctx, auditEventRateLimited, false, "", "", req.ClientID, d.Reason, func() map[string]string {
			return map[string]string{
				"method":      req.Method,
				"retry_after": strconv.Itoa(int(d.RetryAfter / time.Second)),
			}
		})
	case admission.ForbiddenOrigin:
		e.metricInc(MetricOriginRejected)
		e.emitAudit(ctx, auditEventOriginRejected, false, "", "", req.ClientID, d.Reason, func() map[string]string {
			return map[string]string{
				"method": req.Method,
				"origin": req.Origin,
				"host":   req.Host,
			}
		})
	}
	return d
}

// AdmitHTTP extracts an admission request from r, honouring the engine's
// proxy trust setting, and runs [Engine.Admit].
func (e *Engine) AdmitHTTP(r *http.Request) Decision {
	return e.Admit(r.Context(), e.AdmissionRequest(r))
}

// AdmissionRequest builds the admission inputs for r.
func (e *Engine) AdmissionRequest(r *http.Request) AdmissionRequest {
	trust := e != nil && e.config.Origin.TrustProxy
	return admission.RequestFromHTTP(r, trust)
}

// ClientID returns the rate-limit key for r.
func (e *Engine) ClientID(r *http.Request) string {
	trust := e != nil && e.config.Origin.TrustProxy
	return admission.ClientID(r, trust)
}

// CheckRateLimit counts one request for clientID without the origin check.
func (e *Engine) CheckRateLimit(ctx context.Context, clientID string) Decision {
	if e == nil || e.gate == nil {
		return Decision{Outcome: admission.Allowed, Reason: admission.Allowed.String(), Degraded: true}
	}
	d := e.gate.CheckRateLimit(ctx, clientID)
	if d.Degraded {
		e.metricInc(MetricRateBackendDegraded)
	}
	if !d.Allowed() {
		e.metricInc(MetricRateLimited)
	}
	return d
}

// ResetRateLimit forgets every counted request of clientID, for operators
// lifting a block early. With Redis the reset is shared by every instance.
func (e *Engine) ResetRateLimit(ctx context.Context, clientID string) error {
	if e == nil || e.gate == nil {
		return ErrEngineNotReady
	}
	if err := e.gate.ResetClient(ctx, clientID); err != nil {
		e.logger.WarnContext(ctx, "rate limit reset failed",
			slog.String("client", clientID),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %v", ErrRateBackendUnavailable, err)
	}
	e.emitAudit(ctx, auditEventRateLimitReset, true, "", "", clientID, "", nil)
	return nil
}

// ValidateOrigin applies the origin policy without touching rate windows.
func (e *Engine) ValidateOrigin(method, origin, host, authorization string) bool {
	if e == nil || e.gate == nil {
		return false
	}
	return e.gate.ValidateOrigin(method, origin, host, authorization)
}

// RateLimitHeaders returns the advisory headers for d.
func RateLimitHeaders(d Decision) http.Header {
	return admission.Headers(d)
}
