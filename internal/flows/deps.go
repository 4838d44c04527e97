package flows

import (
	"context"

	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

// Deps groups flow dependency sets. The root engine builds this once and
// delegates request methods to the matching flow.
type Deps struct {
	Authorize AuthorizeDeps
	Validate  ValidateDeps
	Logout    LogoutDeps
}

// AccountFinder loads an account with its tickets.
type AccountFinder interface {
	FindAccountWithTickets(ctx context.Context, accountID string) (permission.Account, error)
}

// TokenVerifier checks a bearer token and returns its identity claims.
type TokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

// SessionValidator is the request-path check of the session store.
// ValidateOwned must reject a session of another account without touching it.
type SessionValidator interface {
	Validate(sessionID string) (session.Session, error)
	ValidateOwned(sessionID, accountID string) (session.Session, error)
}

// SessionRemover removes sessions.
type SessionRemover interface {
	Invalidate(sessionID string) bool
	InvalidateAllForAccount(accountID string) int
}
