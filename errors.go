package goGate

import (
	"errors"

	"github.com/MrEthical07/goGate/accounts"
	"github.com/MrEthical07/goGate/admission"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

var (
	// ErrRateLimited is returned for requests over the client's window budget.
	ErrRateLimited = admission.ErrRateLimited
	// ErrForbiddenOrigin is returned for state-changing requests from a foreign origin.
	ErrForbiddenOrigin = admission.ErrForbiddenOrigin
	// ErrRateBackendUnavailable is returned when the shared rate store
	// cannot be reached for an administrative operation.
	ErrRateBackendUnavailable = errors.New("rate limit backend unavailable")
	// ErrUnauthenticated is the single error surfaced to callers for any
	// session failure. The specific cause goes to the audit stream.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSessionNotFound is returned when no session has the given id.
	ErrSessionNotFound = session.ErrSessionNotFound
	// ErrSessionIdle is returned when a session exceeded its inactivity timeout.
	ErrSessionIdle = session.ErrSessionIdle
	// ErrSessionExpired is returned when a session exceeded its absolute age.
	ErrSessionExpired = session.ErrSessionExpired
	// ErrAccountNotFound is returned by account stores for unknown accounts.
	ErrAccountNotFound = accounts.ErrNotFound
	// ErrStoreUnavailable wraps account store backend failures.
	ErrStoreUnavailable = accounts.ErrUnavailable
	// ErrTokenInvalid is returned for bearer tokens that fail verification.
	ErrTokenInvalid = jwt.ErrTokenInvalid
	// ErrTokenDisabled is returned when bearer tokens are used but not configured.
	ErrTokenDisabled = errors.New("bearer tokens not enabled")
	// ErrEngineNotReady is returned by methods called on a nil Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)
