package goGate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/MrEthical07/goGate/permission"
)

// Authorize loads accountID from the account store and computes its grant.
// The grant is never cached. When the lookup fails the guest grant is
// returned together with the cause, so callers that ignore the error still
// treat the request as unauthenticated. An empty accountID is an anonymous
// caller and gets the guest grant without error.
func (e *Engine) Authorize(ctx context.Context, accountID string) (Grant, error) {
	if e == nil || !e.flows.Initialized() {
		return permission.GuestGrant(), ErrEngineNotReady
	}
	e.metricInc(MetricAuthorize)

	res := e.flows.Authorize(ctx, accountID)
	if res.Err == nil {
		return res.Grant, nil
	}

	e.metricInc(MetricAuthorizeLookupFailure)
	reason := auditReason(res.Err)
	level := slog.LevelWarn
	if errors.Is(res.Err, ErrAccountNotFound) || errors.Is(res.Err, context.Canceled) {
		level = slog.LevelDebug
	}
	e.logger.Log(ctx, level, "account lookup failed, using guest grant",
		slog.String("account_id", accountID),
		slog.String("reason", string(reason)),
		slog.Any("error", res.Err),
	)
	e.emitAudit(ctx, auditEventAuthorizeLookupFailed, false, accountID, "", "", string(reason), nil)
	return res.Grant, res.Err
}

// AuthorizeAccount computes the grant for an account the caller already
// loaded. It is the pure access rights computation with no store access.
func (e *Engine) AuthorizeAccount(a Account) Grant {
	e.metricInc(MetricAuthorize)
	return permission.ComputeAccount(a)
}

// AuthorizeSession validates sessionID and computes the grant of its
// account in one call. A session failure returns [ErrUnauthenticated] and
// the guest grant.
func (e *Engine) AuthorizeSession(ctx context.Context, sessionID string) (Session, Grant, error) {
	s, err := e.ValidateSession(ctx, sessionID)
	if err != nil {
		return Session{}, permission.GuestGrant(), err
	}
	g, err := e.Authorize(ctx, s.AccountID)
	return s, g, err
}

// GuestGrant is the grant for unauthenticated callers.
func GuestGrant() Grant {
	return permission.GuestGrant()
}
