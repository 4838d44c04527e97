package permission

import "strings"

// TicketStatus is the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketActive    TicketStatus = "active"
	TicketInactive  TicketStatus = "inactive"
	TicketExpired   TicketStatus = "expired"
	TicketCancelled TicketStatus = "cancelled"
	TicketUsed      TicketStatus = "used"
)

// Active reports whether the ticket currently counts. Only the active status
// does; every other value, including unknown ones, is treated as inactive.
func (s TicketStatus) Active() bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(TicketActive))
}

// Ticket is one purchased ticket as read from the account store.
type Ticket struct {
	ID        string       `json:"id"`
	AccountID string       `json:"account_id"`
	Tier      Tier         `json:"tier"`
	Status    TicketStatus `json:"status"`
}

// Account is the read-only view of an account needed to compute its grant.
type Account struct {
	ID      string   `json:"id"`
	Role    Role     `json:"role"`
	Tickets []Ticket `json:"tickets,omitempty"`
}

// GuestGrant is the grant for callers without an authenticated account.
func GuestGrant() Grant {
	return guestPolicy.baseline
}

// Compute returns the grant for role holding tickets.
//
// Roles that are not ticketed return their baseline without looking at
// tickets. Ticketed roles add the capabilities resolved from their active
// tickets; inactive tickets are ignored.
func Compute(role Role, tickets []Ticket) Grant {
	return ComputeAccount(Account{Role: role, Tickets: tickets})
}

// ComputeAccount is Compute applied to an account record.
func ComputeAccount(a Account) Grant {
	p := policyFor(a.Role)
	if !p.ticketed || len(a.Tickets) == 0 {
		return normalize(p.baseline)
	}
	return p.baseline.Union(ResolveTiers(ActiveTiers(a)))
}

// ActiveTiers lists the tiers of a's active tickets in stored order.
func ActiveTiers(a Account) []Tier {
	out := make([]Tier, 0, len(a.Tickets))
	for _, t := range a.Tickets {
		if t.Status.Active() {
			out = append(out, t.Tier)
		}
	}
	return out
}
