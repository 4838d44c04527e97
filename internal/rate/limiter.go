package rate

import (
	"context"
	"errors"
	"time"
)

// Config holds the window parameters.
type Config struct {
	Limit  int
	Window time.Duration
}

// Validate rejects non-positive limits and windows.
func (c Config) Validate() error {
	if c.Limit <= 0 {
		return errors.New("rate Limit must be > 0")
	}
	if c.Window <= 0 {
		return errors.New("rate Window must be > 0")
	}
	return nil
}

// Result is the outcome of one check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// RetryAfter is how long until the oldest counted request leaves the
	// window. Zero when Allowed.
	RetryAfter time.Duration
}

// Store records hits for a key and reports the window state. Reset forgets
// every hit of key.
type Store interface {
	Hit(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Result, error)
	Reset(ctx context.Context, key string) error
}

// Limiter applies one Config to a Store.
type Limiter struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// New creates a Limiter. A nil now uses time.Now.
func New(store Store, cfg Config, now func() time.Time) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("rate store is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &Limiter{store: store, cfg: cfg, now: now}, nil
}

// Check counts one request for key.
func (l *Limiter) Check(ctx context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, ErrEmptyKey
	}
	return l.store.Hit(ctx, key, l.now(), l.cfg.Limit, l.cfg.Window)
}

// Reset clears the window of key so its next request starts a fresh budget.
func (l *Limiter) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return l.store.Reset(ctx, key)
}

// Config returns the limiter's window parameters.
func (l *Limiter) Config() Config {
	return l.cfg
}

// Sweep prunes idle windows when the store supports it and returns the
// number of client windows dropped.
func (l *Limiter) Sweep() int {
	if sw, ok := l.store.(interface {
		Sweep(now time.Time, window time.Duration) int
	}); ok {
		return sw.Sweep(l.now(), l.cfg.Window)
	}
	return 0
}
