package pgstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrEthical07/goGate/accounts"
	"github.com/MrEthical07/goGate/permission"
)

// DBTX is satisfied by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements accounts.Finder on PostgreSQL.
type Store struct {
	db DBTX
}

// New returns a Store reading through db.
func New(db DBTX) *Store {
	return &Store{db: db}
}

const findAccountSQL = `
SELECT a.id, a.role, t.id, t.tier, t.status
FROM accounts a
LEFT JOIN tickets t ON t.account_id = a.id
WHERE a.id = $1
ORDER BY t.created_at, t.id`

// FindAccountWithTickets loads one account and all of its tickets in a
// single round trip. Tickets come back in purchase order.
func (s *Store) FindAccountWithTickets(ctx context.Context, accountID string) (permission.Account, error) {
	rows, err := s.db.Query(ctx, findAccountSQL, accountID)
	if err != nil {
		return permission.Account{}, fmt.Errorf("%w: %v", accounts.ErrUnavailable, err)
	}
	defer rows.Close()

	var (
		acct  permission.Account
		found bool
	)
	for rows.Next() {
		var (
			id, role                     string
			ticketID, tier, ticketStatus *string
		)
		if err := rows.Scan(&id, &role, &ticketID, &tier, &ticketStatus); err != nil {
			return permission.Account{}, fmt.Errorf("%w: scan: %v", accounts.ErrUnavailable, err)
		}
		if !found {
			acct = permission.Account{ID: id, Role: permission.ParseRole(role)}
			found = true
		}
		if ticketID == nil {
			continue
		}
		acct.Tickets = append(acct.Tickets, permission.Ticket{
			ID:        *ticketID,
			AccountID: id,
			Tier:      permission.ParseTier(deref(tier)),
			Status:    permission.TicketStatus(deref(ticketStatus)),
		})
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return permission.Account{}, err
		}
		return permission.Account{}, fmt.Errorf("%w: %v", accounts.ErrUnavailable, err)
	}
	if !found {
		return permission.Account{}, accounts.ErrNotFound
	}
	return acct, nil
}

// PutAccount inserts an account or updates its role.
func (s *Store) PutAccount(ctx context.Context, id string, role permission.Role) error {
	if id == "" {
		return accounts.ErrEmptyID
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO accounts (id, role) VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET role = EXCLUDED.role`, id, role.String())
	if err != nil {
		return fmt.Errorf("%w: %v", accounts.ErrUnavailable, err)
	}
	return nil
}

// AddTicket stores a ticket for an existing account.
func (s *Store) AddTicket(ctx context.Context, t permission.Ticket) error {
	if t.ID == "" || t.AccountID == "" {
		return accounts.ErrEmptyID
	}
	_, err := s.db.Exec(ctx, `
INSERT INTO tickets (id, account_id, tier, status) VALUES ($1, $2, $3, $4)`,
		t.ID, t.AccountID, t.Tier.String(), string(t.Status))
	if err != nil {
		if isForeignKeyViolation(err) {
			return accounts.ErrNotFound
		}
		return fmt.Errorf("%w: %v", accounts.ErrUnavailable, err)
	}
	return nil
}

// SetTicketStatus updates the status of one ticket.
func (s *Store) SetTicketStatus(ctx context.Context, ticketID string, status permission.TicketStatus) error {
	tag, err := s.db.Exec(ctx, `UPDATE tickets SET status = $2 WHERE id = $1`, ticketID, string(status))
	if err != nil {
		return fmt.Errorf("%w: %v", accounts.ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return accounts.ErrTicketNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isForeignKeyViolation matches SQLSTATE 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ accounts.Finder = (*Store)(nil)
