package session

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrSessionNotFound is returned when no session exists for the id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionIdle is returned when a session exceeded its inactivity timeout.
	ErrSessionIdle = errors.New("session idle timeout")
	// ErrSessionExpired is returned when a session exceeded its absolute lifetime.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotOwner is returned by [Store.ValidateOwned] when the session
	// belongs to another account. The session is left untouched.
	ErrNotOwner = errors.New("session owned by another account")
	// ErrEmptySessionID is returned when registering without a session id.
	ErrEmptySessionID = errors.New("session id empty")
	// ErrEmptyAccountID is returned when registering without an account id.
	ErrEmptyAccountID = errors.New("account id empty")
)

// Metadata is optional client information captured at registration.
type Metadata struct {
	RemoteAddr string `json:"remote_addr,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// Session is a snapshot of one session record. Values returned by the
// [Store] are copies; mutating them does not affect the store.
type Session struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	// PersistedAt is the last activity instant handed to the caller for
	// persistence. It advances at most once per UpdateAge.
	PersistedAt time.Time `json:"persisted_at"`
	Metadata    Metadata  `json:"metadata"`

	seq     uint64
	persist bool
}

// NeedsPersist reports whether the validation that produced this snapshot
// advanced PersistedAt, meaning the caller should write the refreshed
// activity (cookie expiry, database row) now.
func (s Session) NeedsPersist() bool {
	return s.persist
}

// Cause is the reason a session was removed.
type Cause uint8

const (
	CauseLogout Cause = iota + 1
	CauseIdle
	CauseExpired
	CauseConcurrency
	CauseAccountInvalidated
	CauseReplaced
)

func (c Cause) String() string {
	switch c {
	case CauseLogout:
		return "logout"
	case CauseIdle:
		return "idle"
	case CauseExpired:
		return "expired"
	case CauseConcurrency:
		return "concurrency"
	case CauseAccountInvalidated:
		return "account_invalidated"
	case CauseReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Err maps a validity cause to its sentinel error. Causes that do not come
// from a validity check map to ErrSessionNotFound.
func (c Cause) Err() error {
	switch c {
	case CauseIdle:
		return ErrSessionIdle
	case CauseExpired:
		return ErrSessionExpired
	default:
		return ErrSessionNotFound
	}
}

// EvictionFunc observes removed sessions. It is called after the store
// released its locks, so it may call back into the store.
type EvictionFunc func(Session, Cause)

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}
