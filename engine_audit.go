package goGate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/session"
)

const (
	auditEventRateLimited           = "rate_limited"
	auditEventOriginRejected        = "origin_rejected"
	auditEventRateLimitReset        = "rate_limit_reset"
	auditEventSessionCreated        = "session_created"
	auditEventSessionRejected       = "session_rejected"
	auditEventSessionEvicted        = "session_evicted"
	auditEventLogout                = "logout"
	auditEventLogoutAll             = "logout_all"
	auditEventAuthorizeLookupFailed = "authorize_lookup_failed"
)

// AuditReason is the machine-readable cause recorded on failure events.
type AuditReason string

const (
	auditReasonSessionNotFound AuditReason = "session_not_found"
	auditReasonSessionIdle     AuditReason = "idle"
	auditReasonSessionExpired  AuditReason = "expired"
	auditReasonTokenInvalid    AuditReason = "invalid_token"
	auditReasonTokenDisabled   AuditReason = "tokens_disabled"
	auditReasonSubjectMismatch AuditReason = "subject_mismatch"
	auditReasonAccountNotFound AuditReason = "account_not_found"
	auditReasonUnavailable     AuditReason = "backend_unavailable"
	auditReasonCanceled        AuditReason = "canceled"
	auditReasonInternal        AuditReason = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	sessionID string,
	clientID string,
	reason string,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}
	if clientID == "" {
		clientID = ClientIDFromContext(ctx)
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	e.audit.Emit(ctx, AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		SessionID: sessionID,
		ClientID:  clientID,
		Success:   success,
		Reason:    reason,
		Metadata:  metadata,
	})
}

// onEvict is the session store's eviction observer. It runs after the store
// released its locks.
func (e *Engine) onEvict(s session.Session, cause session.Cause) {
	switch cause {
	case session.CauseIdle:
		e.metricInc(MetricSessionEvictedIdle)
	case session.CauseExpired:
		e.metricInc(MetricSessionEvictedExpired)
	case session.CauseConcurrency:
		e.metricInc(MetricSessionEvictedConcurrency)
	case session.CauseAccountInvalidated:
		e.metricInc(MetricSessionEvictedAccount)
	case session.CauseReplaced:
		e.metricInc(MetricSessionReplaced)
	case session.CauseLogout:
		// Logout audits and counts explicit removals itself.
		return
	}

	e.logger.Debug("session evicted",
		slog.String("session_id", s.ID),
		slog.String("account_id", s.AccountID),
		slog.String("cause", cause.String()),
	)
	e.emitAudit(context.Background(), auditEventSessionEvicted, true, s.AccountID, s.ID, s.Metadata.RemoteAddr, cause.String(), nil)
}

func auditReason(err error) AuditReason {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrSessionIdle):
		return auditReasonSessionIdle
	case errors.Is(err, ErrSessionExpired):
		return auditReasonSessionExpired
	case errors.Is(err, ErrSessionNotFound):
		return auditReasonSessionNotFound
	case errors.Is(err, ErrTokenDisabled):
		return auditReasonTokenDisabled
	case errors.Is(err, flows.ErrSubjectMismatch):
		return auditReasonSubjectMismatch
	case errors.Is(err, ErrTokenInvalid):
		return auditReasonTokenInvalid
	case errors.Is(err, ErrAccountNotFound):
		return auditReasonAccountNotFound
	case errors.Is(err, ErrStoreUnavailable):
		return auditReasonUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return auditReasonCanceled
	default:
		return auditReasonInternal
	}
}
