package goGate

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

// RegisterSession creates a session with a fresh random id for accountID
// and enforces the account's concurrency cap. Empty metadata fields are
// filled from ctx (see [WithClientID] and [WithUserAgent]).
func (e *Engine) RegisterSession(ctx context.Context, accountID string, md SessionMetadata) (Session, error) {
	id := session.NewID()
	if err := e.RegisterSessionWithID(ctx, id, accountID, md); err != nil {
		return Session{}, err
	}
	s, ok := e.sessions.Get(id)
	if !ok {
		// a concurrent LogoutAll removed it already
		return Session{}, ErrSessionNotFound
	}
	return s, nil
}

// RegisterSessionWithID registers a session under a caller-chosen id, for
// platforms whose session ids are minted by the identity provider.
// Re-registering an existing id replaces it.
func (e *Engine) RegisterSessionWithID(ctx context.Context, sessionID, accountID string, md SessionMetadata) error {
	if e == nil || e.sessions == nil {
		return ErrEngineNotReady
	}
	md = metadataFromContext(ctx, md)
	if err := e.sessions.Register(sessionID, accountID, md); err != nil {
		return err
	}

	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventSessionCreated, true, accountID, sessionID, md.RemoteAddr, "", nil)
	return nil
}

// ValidateSession is the request-path check. A valid session has its last
// activity bumped; the returned snapshot's NeedsPersist reports when the
// caller should write the refreshed activity. Every failure returns
// [ErrUnauthenticated]; the specific cause goes to the audit stream and the
// debug log.
func (e *Engine) ValidateSession(ctx context.Context, sessionID string) (Session, error) {
	if e == nil || !e.flows.Initialized() {
		return Session{}, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricValidateLatency, start)

	return e.finishValidate(ctx, e.flows.ValidateSession(sessionID), sessionID)
}

// ValidateBearer verifies an identity-provider token and validates the
// session named by its sid claim. Failures return [ErrUnauthenticated].
func (e *Engine) ValidateBearer(ctx context.Context, token string) (Session, *jwt.Claims, error) {
	if e == nil || !e.flows.Initialized() {
		return Session{}, nil, ErrEngineNotReady
	}
	start := time.Now()
	defer e.observe(MetricValidateLatency, start)

	res := e.flows.ValidateBearer(token)
	sid := ""
	if res.Claims != nil {
		sid = res.Claims.SID
	}
	s, err := e.finishValidate(ctx, res, sid)
	if err != nil {
		return Session{}, nil, err
	}
	return s, res.Claims, nil
}

func (e *Engine) finishValidate(ctx context.Context, res flows.ValidateResult, sessionID string) (Session, error) {
	if !res.OK() {
		e.metricInc(MetricSessionRejected)
		reason := auditReason(res.Cause)
		accountID := ""
		if res.Claims != nil {
			accountID = res.Claims.AccountID()
		}
		e.logger.DebugContext(ctx, "session rejected",
			slog.String("session_id", sessionID),
			slog.String("reason", string(reason)),
			slog.Any("error", res.Cause),
		)
		e.emitAudit(ctx, auditEventSessionRejected, false, accountID, sessionID, "", string(reason), nil)
		return Session{}, ErrUnauthenticated
	}

	e.metricInc(MetricSessionValidated)
	if res.Session.NeedsPersist() {
		e.metricInc(MetricSessionPersistDue)
	}
	return res.Session, nil
}

// TouchSession bumps the last activity of a session. It returns false when
// the session is absent or already stale, in which case it is evicted.
func (e *Engine) TouchSession(sessionID string) bool {
	if e == nil || e.sessions == nil {
		return false
	}
	return e.sessions.Touch(sessionID)
}

// IsSessionValid reports whether the session exists and is within both
// timeouts, without bumping its activity. Stale sessions are evicted.
func (e *Engine) IsSessionValid(sessionID string) bool {
	if e == nil || e.sessions == nil {
		return false
	}
	return e.sessions.IsValid(sessionID)
}

// EnforceConcurrencyLimit evicts the least recently active sessions of
// accountID beyond the configured cap and returns them.
func (e *Engine) EnforceConcurrencyLimit(accountID string) []Session {
	if e == nil || e.sessions == nil {
		return nil
	}
	return e.sessions.EnforceConcurrencyLimit(accountID)
}

// Logout removes one session. It reports whether the session existed.
func (e *Engine) Logout(ctx context.Context, sessionID string) bool {
	if e == nil || !e.flows.Initialized() {
		return false
	}
	s, _ := e.sessions.Get(sessionID)
	removed := e.flows.Logout(sessionID)
	if removed {
		e.metricInc(MetricLogout)
		e.emitAudit(ctx, auditEventLogout, true, s.AccountID, sessionID, "", "", nil)
	}
	return removed
}

// LogoutAll removes every session of accountID, for example after a
// credential change, and returns how many were removed.
func (e *Engine) LogoutAll(ctx context.Context, accountID string) int {
	if e == nil || !e.flows.Initialized() {
		return 0
	}
	n := e.flows.LogoutAll(accountID)
	e.metricInc(MetricLogoutAll)
	e.emitAudit(ctx, auditEventLogoutAll, true, accountID, "", "", "", func() map[string]string {
		return map[string]string{"removed": strconv.Itoa(n)}
	})
	return n
}

// LogoutByToken removes the session named by a bearer token's sid claim.
func (e *Engine) LogoutByToken(ctx context.Context, token string) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	res := e.flows.LogoutByToken(token)
	if res.Err != nil {
		e.logger.DebugContext(ctx, "token logout rejected", slog.Any("error", res.Err))
		return ErrUnauthenticated
	}
	if res.Removed {
		e.metricInc(MetricLogout)
		e.emitAudit(ctx, auditEventLogout, true, res.AccountID, res.SessionID, "", "", nil)
	}
	return nil
}
