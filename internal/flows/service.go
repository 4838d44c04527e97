package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Validate.Sessions != nil && s.deps.Logout.Sessions != nil
}

func (s Service) Authorize(ctx context.Context, accountID string) AuthorizeResult {
	return RunAuthorize(ctx, accountID, s.deps.Authorize)
}

func (s Service) ValidateSession(sessionID string) ValidateResult {
	return RunValidateSession(sessionID, s.deps.Validate)
}

func (s Service) ValidateBearer(token string) ValidateResult {
	return RunValidateBearer(token, s.deps.Validate)
}

func (s Service) Logout(sessionID string) bool {
	return RunLogout(sessionID, s.deps.Logout)
}

func (s Service) LogoutAll(accountID string) int {
	return RunLogoutAll(accountID, s.deps.Logout)
}

func (s Service) LogoutByToken(token string) LogoutByTokenResult {
	return RunLogoutByToken(token, s.deps.Logout)
}
