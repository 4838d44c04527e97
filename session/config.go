package session

import (
	"errors"
	"time"
)

// Config controls session lifetimes and the per-account concurrency cap.
type Config struct {
	// MaxAge is the absolute lifetime measured from registration.
	MaxAge time.Duration
	// InactivityTimeout evicts sessions without activity for longer than this.
	InactivityTimeout time.Duration
	// UpdateAge is the minimum interval between activity persists reported
	// through Session.NeedsPersist.
	UpdateAge time.Duration
	// MaxConcurrentSessions caps valid sessions per account. Zero disables the cap.
	MaxConcurrentSessions int
	// SweepInterval is the period of the background sweeper.
	SweepInterval time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		MaxAge:                24 * time.Hour,
		InactivityTimeout:     time.Hour,
		UpdateAge:             15 * time.Minute,
		MaxConcurrentSessions: 3,
		SweepInterval:         5 * time.Minute,
	}
}

// Validate checks the configuration for impossible values.
func (c Config) Validate() error {
	if c.MaxAge <= 0 {
		return errors.New("session MaxAge must be > 0")
	}
	if c.InactivityTimeout <= 0 {
		return errors.New("session InactivityTimeout must be > 0")
	}
	if c.InactivityTimeout > c.MaxAge {
		return errors.New("session InactivityTimeout must be <= MaxAge")
	}
	if c.UpdateAge < 0 {
		return errors.New("session UpdateAge must be >= 0")
	}
	if c.UpdateAge >= c.InactivityTimeout {
		return errors.New("session UpdateAge must be < InactivityTimeout")
	}
	if c.MaxConcurrentSessions < 0 {
		return errors.New("session MaxConcurrentSessions must be >= 0")
	}
	if c.SweepInterval <= 0 {
		return errors.New("session SweepInterval must be > 0")
	}
	return nil
}
