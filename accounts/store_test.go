package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MrEthical07/goGate/permission"
)

func fanWithTicket() permission.Account {
	return permission.Account{
		ID:   "acc-1",
		Role: permission.RoleFan,
		Tickets: []permission.Ticket{
			{ID: "t-1", Tier: permission.TierVIP, Status: permission.TicketActive},
		},
	}
}

func TestMemoryStoreFind(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Put(fanWithTicket()); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.FindAccountWithTickets(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("FindAccountWithTickets: %v", err)
	}
	if got.Role != permission.RoleFan || len(got.Tickets) != 1 {
		t.Fatalf("unexpected account: %+v", got)
	}
	if got.Tickets[0].AccountID != "acc-1" {
		t.Fatalf("ticket owner = %q, want acc-1", got.Tickets[0].AccountID)
	}
	if !permission.ComputeAccount(got).VIP() {
		t.Fatal("active vip ticket should grant vip")
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.FindAccountWithTickets(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Put(fanWithTicket())

	a, _ := s.FindAccountWithTickets(context.Background(), "acc-1")
	a.Tickets[0].Status = permission.TicketCancelled
	a.Role = permission.RoleAdmin

	b, _ := s.FindAccountWithTickets(context.Background(), "acc-1")
	if b.Role != permission.RoleFan || b.Tickets[0].Status != permission.TicketActive {
		t.Fatalf("stored account mutated through returned copy: %+v", b)
	}
}

func TestMemoryStoreTicketMutations(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Put(fanWithTicket())

	if err := s.AddTicket("acc-1", permission.Ticket{ID: "t-2", Tier: permission.TierBackstage, Status: permission.TicketActive}); err != nil {
		t.Fatalf("AddTicket: %v", err)
	}
	a, _ := s.FindAccountWithTickets(context.Background(), "acc-1")
	if !permission.ComputeAccount(a).FullAccess() {
		t.Fatal("backstage ticket should grant full access")
	}

	if err := s.SetTicketStatus("acc-1", "t-2", permission.TicketUsed); err != nil {
		t.Fatalf("SetTicketStatus: %v", err)
	}
	a, _ = s.FindAccountWithTickets(context.Background(), "acc-1")
	if permission.ComputeAccount(a).Backstage() {
		t.Fatal("used ticket must not grant backstage")
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"add to missing account", s.AddTicket("nope", permission.Ticket{ID: "x"}), ErrNotFound},
		{"add blank ticket", s.AddTicket("acc-1", permission.Ticket{}), ErrEmptyID},
		{"status missing account", s.SetTicketStatus("nope", "t-1", permission.TicketUsed), ErrNotFound},
		{"status missing ticket", s.SetTicketStatus("acc-1", "t-9", permission.TicketUsed), ErrTicketNotFound},
		{"put blank account", s.Put(permission.Account{}), ErrEmptyID},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !errors.Is(tc.err, tc.want) {
				t.Fatalf("err = %v, want %v", tc.err, tc.want)
			}
		})
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Put(fanWithTicket())
	if !s.Delete("acc-1") {
		t.Fatal("Delete should report existing account")
	}
	if s.Delete("acc-1") {
		t.Fatal("second Delete should report false")
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Put(fanWithTicket())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.FindAccountWithTickets(ctx, "acc-1"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestMemoryStoreConcurrentAccess(t *testing.T) {
	s := NewMemoryStore()
	_ = s.Put(fanWithTicket())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i%2 == 0 {
					_ = s.SetTicketStatus("acc-1", "t-1", permission.TicketActive)
				} else {
					_, _ = s.FindAccountWithTickets(context.Background(), "acc-1")
				}
			}
		}(i)
	}
	wg.Wait()
}

var _ Finder = (*MemoryStore)(nil)
