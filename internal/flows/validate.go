package flows

import (
	"errors"
	"fmt"

	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

// ErrSubjectMismatch is returned when a token names a session owned by a
// different account than its subject.
var ErrSubjectMismatch = errors.New("token subject does not own session")

// ValidateDeps captures the validate flow dependencies.
type ValidateDeps struct {
	Sessions SessionValidator
	// Tokens is nil when bearer tokens are disabled.
	Tokens            TokenVerifier
	TokensDisabledErr error
}

// ValidateResult is either a live session or the internal cause of the
// failure. Callers must not reveal Cause to clients.
type ValidateResult struct {
	Session session.Session
	Claims  *jwt.Claims
	Cause   error
}

// OK reports whether validation succeeded.
func (r ValidateResult) OK() bool { return r.Cause == nil }

// RunValidateSession validates and touches sessionID.
func RunValidateSession(sessionID string, deps ValidateDeps) ValidateResult {
	if sessionID == "" {
		return ValidateResult{Cause: session.ErrSessionNotFound}
	}
	sess, err := deps.Sessions.Validate(sessionID)
	if err != nil {
		return ValidateResult{Cause: err}
	}
	return ValidateResult{Session: sess}
}

// RunValidateBearer verifies a bearer token and validates the session named
// by its sid claim. The session must belong to the token's subject.
func RunValidateBearer(token string, deps ValidateDeps) ValidateResult {
	if deps.Tokens == nil {
		return ValidateResult{Cause: deps.TokensDisabledErr}
	}
	claims, err := deps.Tokens.Verify(token)
	if err != nil {
		return ValidateResult{Cause: err}
	}

	if claims.SID == "" {
		return ValidateResult{Claims: claims, Cause: session.ErrSessionNotFound}
	}
	sess, err := deps.Sessions.ValidateOwned(claims.SID, claims.AccountID())
	if errors.Is(err, session.ErrNotOwner) {
		return ValidateResult{
			Claims: claims,
			Cause:  fmt.Errorf("%w: sid %s", ErrSubjectMismatch, claims.SID),
		}
	}
	if err != nil {
		return ValidateResult{Claims: claims, Cause: err}
	}
	return ValidateResult{Session: sess, Claims: claims}
}
