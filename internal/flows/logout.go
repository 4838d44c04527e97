package flows

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Sessions SessionRemover
	// Tokens is nil when bearer tokens are disabled.
	Tokens            TokenVerifier
	TokensDisabledErr error
}

// LogoutByTokenResult reports what a token logout removed.
type LogoutByTokenResult struct {
	AccountID string
	SessionID string
	Removed   bool
	Err       error
}

// RunLogout removes one session and reports whether it existed.
func RunLogout(sessionID string, deps LogoutDeps) bool {
	if sessionID == "" {
		return false
	}
	return deps.Sessions.Invalidate(sessionID)
}

// RunLogoutAll removes every session of accountID.
func RunLogoutAll(accountID string, deps LogoutDeps) int {
	if accountID == "" {
		return 0
	}
	return deps.Sessions.InvalidateAllForAccount(accountID)
}

// RunLogoutByToken verifies a bearer token and removes the session it names.
// Only the token signature and claims are checked; an idle session can still
// be logged out.
func RunLogoutByToken(token string, deps LogoutDeps) LogoutByTokenResult {
	if deps.Tokens == nil {
		return LogoutByTokenResult{Err: deps.TokensDisabledErr}
	}
	claims, err := deps.Tokens.Verify(token)
	if err != nil {
		return LogoutByTokenResult{Err: err}
	}
	return LogoutByTokenResult{
		AccountID: claims.AccountID(),
		SessionID: claims.SID,
		Removed:   RunLogout(claims.SID, deps),
	}
}
