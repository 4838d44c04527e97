package flows

import (
	"context"
	"errors"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

var errNoStore = errors.New("no store")

type fakeAccounts map[string]permission.Account

func (f fakeAccounts) FindAccountWithTickets(_ context.Context, id string) (permission.Account, error) {
	a, ok := f[id]
	if !ok {
		return permission.Account{}, errors.New("not found")
	}
	return a, nil
}

type fakeSessions struct {
	live        map[string]session.Session
	invalidated []string
	touched     []string
}

func (f *fakeSessions) Validate(id string) (session.Session, error) {
	s, ok := f.live[id]
	if !ok {
		return session.Session{}, session.ErrSessionNotFound
	}
	f.touched = append(f.touched, id)
	return s, nil
}

func (f *fakeSessions) ValidateOwned(id, accountID string) (session.Session, error) {
	if s, ok := f.live[id]; ok && s.AccountID != accountID {
		return session.Session{}, session.ErrNotOwner
	}
	return f.Validate(id)
}

func (f *fakeSessions) Invalidate(id string) bool {
	_, ok := f.live[id]
	delete(f.live, id)
	f.invalidated = append(f.invalidated, id)
	return ok
}

func (f *fakeSessions) InvalidateAllForAccount(accountID string) int {
	n := 0
	for id, s := range f.live {
		if s.AccountID == accountID {
			delete(f.live, id)
			n++
		}
	}
	return n
}

type fakeTokens map[string]*jwt.Claims

func (f fakeTokens) Verify(token string) (*jwt.Claims, error) {
	c, ok := f[token]
	if !ok {
		return nil, jwt.ErrTokenInvalid
	}
	return c, nil
}

func claims(sub, sid string) *jwt.Claims {
	return &jwt.Claims{SID: sid, RegisteredClaims: jwtlib.RegisteredClaims{Subject: sub}}
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{live: map[string]session.Session{
		"s-1": {ID: "s-1", AccountID: "a-1"},
		"s-2": {ID: "s-2", AccountID: "a-1"},
		"s-3": {ID: "s-3", AccountID: "a-2"},
	}}
}

func TestRunAuthorize(t *testing.T) {
	store := fakeAccounts{
		"fan": {ID: "fan", Role: permission.RoleFan, Tickets: []permission.Ticket{
			{ID: "t", Tier: permission.TierVIP, Status: permission.TicketActive},
		}},
	}
	deps := AuthorizeDeps{Accounts: store, NoStoreErr: errNoStore}

	t.Run("known account", func(t *testing.T) {
		res := RunAuthorize(context.Background(), "fan", deps)
		if res.Err != nil || res.Guest {
			t.Fatalf("unexpected failure: %+v", res)
		}
		if !res.Grant.VIP() {
			t.Fatal("vip ticket should grant vip")
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		res := RunAuthorize(context.Background(), "", deps)
		if res.Err != nil || !res.Guest || res.Grant != permission.GuestGrant() {
			t.Fatalf("anonymous should be guest without error: %+v", res)
		}
	})

	t.Run("lookup failure yields guest", func(t *testing.T) {
		res := RunAuthorize(context.Background(), "ghost", deps)
		if res.Err == nil || !res.Guest || res.Grant != permission.GuestGrant() {
			t.Fatalf("missing account should be guest with error: %+v", res)
		}
	})

	t.Run("no store", func(t *testing.T) {
		res := RunAuthorize(context.Background(), "fan", AuthorizeDeps{NoStoreErr: errNoStore})
		if !errors.Is(res.Err, errNoStore) || !res.Guest {
			t.Fatalf("want guest with errNoStore, got %+v", res)
		}
	})
}

func TestRunValidate(t *testing.T) {
	sessions := newFakeSessions()
	tokens := fakeTokens{
		"good":     claims("a-1", "s-1"),
		"stolen":   claims("a-2", "s-1"),
		"dead-sid": claims("a-1", "s-9"),
	}
	deps := ValidateDeps{Sessions: sessions, Tokens: tokens, TokensDisabledErr: errNoStore}

	tests := []struct {
		name    string
		run     func() ValidateResult
		wantErr error
	}{
		{"session ok", func() ValidateResult { return RunValidateSession("s-1", deps) }, nil},
		{"empty session id", func() ValidateResult { return RunValidateSession("", deps) }, session.ErrSessionNotFound},
		{"unknown session", func() ValidateResult { return RunValidateSession("s-9", deps) }, session.ErrSessionNotFound},
		{"bearer ok", func() ValidateResult { return RunValidateBearer("good", deps) }, nil},
		{"bearer invalid", func() ValidateResult { return RunValidateBearer("forged", deps) }, jwt.ErrTokenInvalid},
		{"bearer subject mismatch", func() ValidateResult { return RunValidateBearer("stolen", deps) }, ErrSubjectMismatch},
		{"bearer dead session", func() ValidateResult { return RunValidateBearer("dead-sid", deps) }, session.ErrSessionNotFound},
		{"bearer disabled", func() ValidateResult {
			return RunValidateBearer("good", ValidateDeps{Sessions: sessions, TokensDisabledErr: errNoStore})
		}, errNoStore},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := tc.run()
			if tc.wantErr == nil {
				if !res.OK() {
					t.Fatalf("unexpected cause: %v", res.Cause)
				}
				return
			}
			if !errors.Is(res.Cause, tc.wantErr) {
				t.Fatalf("cause = %v, want %v", res.Cause, tc.wantErr)
			}
		})
	}
}

func TestRunValidateBearerForeignSessionUntouched(t *testing.T) {
	sessions := newFakeSessions()
	deps := ValidateDeps{Sessions: sessions, Tokens: fakeTokens{"stolen": claims("a-2", "s-1")}}

	res := RunValidateBearer("stolen", deps)
	if !errors.Is(res.Cause, ErrSubjectMismatch) {
		t.Fatalf("cause = %v, want ErrSubjectMismatch", res.Cause)
	}
	if res.Session.ID != "" {
		t.Fatalf("mismatch must not return the session, got %+v", res.Session)
	}
	if len(sessions.touched) != 0 {
		t.Fatalf("foreign session was touched: %v", sessions.touched)
	}
}

func TestRunLogout(t *testing.T) {
	sessions := newFakeSessions()
	deps := LogoutDeps{Sessions: sessions, Tokens: fakeTokens{"t": claims("a-2", "s-3")}}

	if RunLogout("", deps) {
		t.Fatal("empty id must not remove anything")
	}
	if !RunLogout("s-1", deps) {
		t.Fatal("existing session should be removed")
	}
	if n := RunLogoutAll("a-1", deps); n != 1 {
		t.Fatalf("LogoutAll removed %d, want 1", n)
	}

	res := RunLogoutByToken("t", deps)
	if res.Err != nil || !res.Removed || res.AccountID != "a-2" || res.SessionID != "s-3" {
		t.Fatalf("unexpected token logout: %+v", res)
	}
	if res := RunLogoutByToken("bad", deps); !errors.Is(res.Err, jwt.ErrTokenInvalid) {
		t.Fatalf("bad token err = %v", res.Err)
	}
}

func TestServiceInitialized(t *testing.T) {
	if (Service{}).Initialized() {
		t.Fatal("zero service must not report initialized")
	}
	s := New(Deps{
		Validate: ValidateDeps{Sessions: newFakeSessions()},
		Logout:   LogoutDeps{Sessions: newFakeSessions()},
	})
	if !s.Initialized() {
		t.Fatal("wired service should report initialized")
	}
}
