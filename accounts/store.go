package accounts

import (
	"context"
	"errors"
	"sync"

	"github.com/MrEthical07/goGate/permission"
)

var (
	// ErrNotFound is returned when no account has the requested id.
	ErrNotFound = errors.New("account not found")
	// ErrUnavailable wraps backend failures of a store.
	ErrUnavailable = errors.New("account store unavailable")
	// ErrTicketNotFound is returned by ticket mutations on unknown ids.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrEmptyID is returned when an account or ticket id is blank.
	ErrEmptyID = errors.New("empty id")
)

// Finder is the lookup the gate needs from an account store.
type Finder interface {
	FindAccountWithTickets(ctx context.Context, accountID string) (permission.Account, error)
}

// MemoryStore is an in-process account store. It is safe for concurrent use
// and returns copies, so callers can never mutate stored state.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*permission.Account
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]*permission.Account)}
}

// Put inserts or replaces an account, tickets included.
func (s *MemoryStore) Put(a permission.Account) error {
	if a.ID == "" {
		return ErrEmptyID
	}
	cp := copyAccount(a)
	for i := range cp.Tickets {
		cp.Tickets[i].AccountID = a.ID
	}
	s.mu.Lock()
	s.accounts[a.ID] = &cp
	s.mu.Unlock()
	return nil
}

// Delete removes an account. It reports whether the account existed.
func (s *MemoryStore) Delete(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.accounts[accountID]
	delete(s.accounts, accountID)
	return ok
}

// AddTicket appends a ticket to an existing account.
func (s *MemoryStore) AddTicket(accountID string, t permission.Ticket) error {
	if t.ID == "" {
		return ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	t.AccountID = accountID
	a.Tickets = append(a.Tickets, t)
	return nil
}

// SetTicketStatus changes the status of one ticket, e.g. after a refund
// or a scan at the venue.
func (s *MemoryStore) SetTicketStatus(accountID, ticketID string, status permission.TicketStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return ErrNotFound
	}
	for i := range a.Tickets {
		if a.Tickets[i].ID == ticketID {
			a.Tickets[i].Status = status
			return nil
		}
	}
	return ErrTicketNotFound
}

// Len returns the number of stored accounts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}

// FindAccountWithTickets returns a copy of the account and its tickets.
func (s *MemoryStore) FindAccountWithTickets(ctx context.Context, accountID string) (permission.Account, error) {
	if err := ctx.Err(); err != nil {
		return permission.Account{}, err
	}
	s.mu.RLock()
	a, ok := s.accounts[accountID]
	var cp permission.Account
	if ok {
		cp = copyAccount(*a)
	}
	s.mu.RUnlock()
	if !ok {
		return permission.Account{}, ErrNotFound
	}
	return cp, nil
}

func copyAccount(a permission.Account) permission.Account {
	if a.Tickets != nil {
		a.Tickets = append([]permission.Ticket(nil), a.Tickets...)
	}
	return a
}
