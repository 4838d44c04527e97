package flows

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goGate/permission"
)

// AuthorizeDeps captures the authorize flow dependencies.
type AuthorizeDeps struct {
	// Accounts may be nil; every lookup then fails with NoStoreErr.
	Accounts   AccountFinder
	NoStoreErr error
}

// AuthorizeResult is the grant for one account. On failure Grant is the
// guest grant and Err carries the lookup cause.
type AuthorizeResult struct {
	Grant   permission.Grant
	Account permission.Account
	Guest   bool
	Err     error
}

// RunAuthorize loads accountID and computes its grant. An empty accountID is
// an anonymous caller and yields the guest grant without error.
func RunAuthorize(ctx context.Context, accountID string, deps AuthorizeDeps) AuthorizeResult {
	if accountID == "" {
		return AuthorizeResult{Grant: permission.GuestGrant(), Guest: true}
	}
	if deps.Accounts == nil {
		return AuthorizeResult{
			Grant: permission.GuestGrant(),
			Guest: true,
			Err:   deps.NoStoreErr,
		}
	}

	acct, err := deps.Accounts.FindAccountWithTickets(ctx, accountID)
	if err != nil {
		return AuthorizeResult{
			Grant: permission.GuestGrant(),
			Guest: true,
			Err:   fmt.Errorf("find account %q: %w", accountID, err),
		}
	}
	return AuthorizeResult{
		Grant:   permission.ComputeAccount(acct),
		Account: acct,
	}
}
