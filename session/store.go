package session

import (
	"hash/maphash"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const shardCount = 64

// bucket holds every session of one account. dead is set, under both the
// owning shard lock and mu, when the bucket is unlinked from its shard; a
// caller that locks a dead bucket must look the account up again.
type bucket struct {
	mu       sync.Mutex
	sessions map[string]*Session
	dead     bool
}

type accountShard struct {
	mu      sync.RWMutex
	buckets map[string]*bucket
}

type indexShard struct {
	mu       sync.RWMutex
	accounts map[string]string
}

// Store is the in-memory session store. Create it with [NewStore]; the zero
// value is not usable.
type Store struct {
	cfg     Config
	now     func() time.Time
	onEvict EvictionFunc
	seed    maphash.Seed
	seq     atomic.Uint64

	accounts [shardCount]accountShard
	index    [shardCount]indexShard

	sweepMu  sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now. Intended for tests and simulations.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEvictionFunc registers the eviction observer.
func WithEvictionFunc(fn EvictionFunc) Option {
	return func(s *Store) {
		s.onEvict = fn
	}
}

// NewStore creates a Store. The background sweeper is not started; call
// [Store.StartSweeper].
func NewStore(cfg Config, opts ...Option) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		cfg:  cfg,
		now:  time.Now,
		seed: maphash.MakeSeed(),
	}
	for i := range s.accounts {
		s.accounts[i].buckets = make(map[string]*bucket)
		s.index[i].accounts = make(map[string]string)
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Config returns the store configuration.
func (s *Store) Config() Config {
	return s.cfg
}

func (s *Store) shardIndex(key string) int {
	return int(maphash.String(s.seed, key) % shardCount)
}

func (s *Store) accountShardFor(accountID string) *accountShard {
	return &s.accounts[s.shardIndex(accountID)]
}

func (s *Store) indexShardFor(sessionID string) *indexShard {
	return &s.index[s.shardIndex(sessionID)]
}

/*
====================================
INDEX
====================================
*/

func (s *Store) indexGet(sessionID string) (string, bool) {
	sh := s.indexShardFor(sessionID)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	acct, ok := sh.accounts[sessionID]
	return acct, ok
}

// indexSwap points sessionID at accountID and returns the previous owner.
func (s *Store) indexSwap(sessionID, accountID string) string {
	sh := s.indexShardFor(sessionID)
	sh.mu.Lock()
	prev := sh.accounts[sessionID]
	sh.accounts[sessionID] = accountID
	sh.mu.Unlock()
	return prev
}

// indexDelete removes the mapping only if it still points at accountID, so a
// newer registration of the same id under another account survives.
func (s *Store) indexDelete(sessionID, accountID string) {
	sh := s.indexShardFor(sessionID)
	sh.mu.Lock()
	if sh.accounts[sessionID] == accountID {
		delete(sh.accounts, sessionID)
	}
	sh.mu.Unlock()
}

/*
====================================
BUCKETS
====================================
*/

// lockBucket returns the locked bucket of accountID. With create it makes
// the bucket when missing; without it, it returns nil for unknown accounts.
func (s *Store) lockBucket(accountID string, create bool) *bucket {
	sh := s.accountShardFor(accountID)
	for {
		sh.mu.RLock()
		b := sh.buckets[accountID]
		sh.mu.RUnlock()

		if b == nil {
			if !create {
				return nil
			}
			sh.mu.Lock()
			b = sh.buckets[accountID]
			if b == nil {
				b = &bucket{sessions: make(map[string]*Session)}
				sh.buckets[accountID] = b
			}
			sh.mu.Unlock()
		}

		b.mu.Lock()
		if !b.dead {
			return b
		}
		b.mu.Unlock()
	}
}

// reap unlinks the bucket of accountID if it is empty.
func (s *Store) reap(accountID string) {
	sh := s.accountShardFor(accountID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	b := sh.buckets[accountID]
	if b == nil {
		return
	}
	b.mu.Lock()
	if len(b.sessions) == 0 && !b.dead {
		b.dead = true
		delete(sh.buckets, accountID)
	}
	b.mu.Unlock()
}

type eviction struct {
	sess  Session
	cause Cause
}

// removeLocked deletes id from b. The caller holds b.mu.
func (s *Store) removeLocked(b *bucket, id string, cause Cause, out []eviction) []eviction {
	rec, ok := b.sessions[id]
	if !ok {
		return out
	}
	delete(b.sessions, id)
	s.indexDelete(id, rec.AccountID)
	return append(out, eviction{sess: *rec, cause: cause})
}

func (s *Store) notify(evicted []eviction) {
	if s.onEvict == nil {
		return
	}
	for _, ev := range evicted {
		s.onEvict(ev.sess, ev.cause)
	}
}

// check returns the cause that makes rec invalid at now, or 0.
func (s *Store) check(rec *Session, now time.Time) Cause {
	if now.Sub(rec.CreatedAt) > s.cfg.MaxAge {
		return CauseExpired
	}
	if now.Sub(rec.LastActivity) > s.cfg.InactivityTimeout {
		return CauseIdle
	}
	return 0
}

/*
====================================
OPERATIONS
====================================
*/

// Register creates a session for accountID and then enforces the account's
// concurrency cap. Registering an id that already exists replaces it.
func (s *Store) Register(sessionID, accountID string, md Metadata) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if accountID == "" {
		return ErrEmptyAccountID
	}

	now := s.now()
	rec := &Session{
		ID:           sessionID,
		AccountID:    accountID,
		CreatedAt:    now,
		LastActivity: now,
		PersistedAt:  now,
		Metadata:     md,
		seq:          s.seq.Add(1),
	}

	b := s.lockBucket(accountID, true)
	b.sessions[sessionID] = rec
	prev := s.indexSwap(sessionID, accountID)
	evicted := s.enforceLocked(b, nil)
	b.mu.Unlock()

	// The index swap is the point where the id changes owner, so whichever
	// registration swaps second removes the other's record.
	if prev != "" && prev != accountID {
		if pb := s.lockBucket(prev, false); pb != nil {
			evicted = s.removeLocked(pb, sessionID, CauseReplaced, evicted)
			empty := len(pb.sessions) == 0
			pb.mu.Unlock()
			if empty {
				s.reap(prev)
			}
		}
	}

	s.notify(evicted)
	return nil
}

// Touch bumps the last activity of a session. It returns false when the
// session does not exist or has already outlived its timeouts, in which
// case it is evicted.
// PersistedAt is left alone, so the next Validate still reports a due
// persist.
func (s *Store) Touch(sessionID string) bool {
	_, err := s.validate(sessionID, "", false)
	return err == nil
}

// IsValid reports whether the session exists and is within its inactivity
// timeout and absolute lifetime. Invalid sessions are evicted.
func (s *Store) IsValid(sessionID string) bool {
	accountID, ok := s.indexGet(sessionID)
	if !ok {
		return false
	}
	b := s.lockBucket(accountID, false)
	if b == nil {
		return false
	}

	rec, ok := b.sessions[sessionID]
	if !ok {
		b.mu.Unlock()
		return false
	}

	cause := s.check(rec, s.now())
	if cause == 0 {
		b.mu.Unlock()
		return true
	}

	evicted := s.removeLocked(b, sessionID, cause, nil)
	empty := len(b.sessions) == 0
	b.mu.Unlock()
	if empty {
		s.reap(accountID)
	}
	s.notify(evicted)
	return false
}

// Validate is the request-path check: it verifies the session like IsValid
// and, when valid, bumps its last activity in the same critical section.
// The returned error is ErrSessionNotFound, ErrSessionIdle or
// ErrSessionExpired; callers must not reveal the difference to clients.
func (s *Store) Validate(sessionID string) (Session, error) {
	return s.validate(sessionID, "", true)
}

// ValidateOwned is Validate for a caller that claims to own the session.
// Ownership is checked before anything else; a session of another account
// yields ErrNotOwner and is neither touched nor evicted.
func (s *Store) ValidateOwned(sessionID, accountID string) (Session, error) {
	if accountID == "" {
		return Session{}, ErrNotOwner
	}
	return s.validate(sessionID, accountID, true)
}

func (s *Store) validate(sessionID, owner string, markPersist bool) (Session, error) {
	accountID, ok := s.indexGet(sessionID)
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if owner != "" && owner != accountID {
		return Session{}, ErrNotOwner
	}
	b := s.lockBucket(accountID, false)
	if b == nil {
		return Session{}, ErrSessionNotFound
	}

	rec, ok := b.sessions[sessionID]
	if !ok {
		b.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}

	now := s.now()
	if cause := s.check(rec, now); cause != 0 {
		evicted := s.removeLocked(b, sessionID, cause, nil)
		empty := len(b.sessions) == 0
		b.mu.Unlock()
		if empty {
			s.reap(accountID)
		}
		s.notify(evicted)
		return Session{}, cause.Err()
	}

	rec.LastActivity = now
	out := *rec
	if markPersist && now.Sub(rec.PersistedAt) >= s.cfg.UpdateAge && now.After(rec.PersistedAt) {
		rec.PersistedAt = now
		out.PersistedAt = now
		out.persist = true
	}
	b.mu.Unlock()
	return out, nil
}

// Get returns a snapshot of the session without touching it.
func (s *Store) Get(sessionID string) (Session, bool) {
	accountID, ok := s.indexGet(sessionID)
	if !ok {
		return Session{}, false
	}
	b := s.lockBucket(accountID, false)
	if b == nil {
		return Session{}, false
	}
	defer b.mu.Unlock()

	rec, ok := b.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *rec, true
}

// Invalidate removes a session (logout). It reports whether a session was removed.
func (s *Store) Invalidate(sessionID string) bool {
	accountID, ok := s.indexGet(sessionID)
	if !ok {
		return false
	}
	b := s.lockBucket(accountID, false)
	if b == nil {
		return false
	}

	evicted := s.removeLocked(b, sessionID, CauseLogout, nil)
	empty := len(b.sessions) == 0
	b.mu.Unlock()
	if empty {
		s.reap(accountID)
	}
	s.notify(evicted)
	return len(evicted) > 0
}

// InvalidateAllForAccount removes every session of accountID in one
// critical section and returns how many were removed. Sessions registered
// after the call returns are unaffected.
func (s *Store) InvalidateAllForAccount(accountID string) int {
	sh := s.accountShardFor(accountID)

	sh.mu.Lock()
	b := sh.buckets[accountID]
	if b == nil {
		sh.mu.Unlock()
		return 0
	}
	b.mu.Lock()
	evicted := make([]eviction, 0, len(b.sessions))
	for id := range b.sessions {
		evicted = s.removeLocked(b, id, CauseAccountInvalidated, evicted)
	}
	b.dead = true
	delete(sh.buckets, accountID)
	b.mu.Unlock()
	sh.mu.Unlock()

	s.notify(evicted)
	return len(evicted)
}

// EnforceConcurrencyLimit evicts the least recently active sessions of
// accountID beyond MaxConcurrentSessions and returns them.
func (s *Store) EnforceConcurrencyLimit(accountID string) []Session {
	b := s.lockBucket(accountID, false)
	if b == nil {
		return nil
	}
	evicted := s.enforceLocked(b, nil)
	b.mu.Unlock()

	s.notify(evicted)
	out := make([]Session, len(evicted))
	for i, ev := range evicted {
		out[i] = ev.sess
	}
	return out
}

// enforceLocked applies the concurrency cap to b. The caller holds b.mu.
func (s *Store) enforceLocked(b *bucket, out []eviction) []eviction {
	limit := s.cfg.MaxConcurrentSessions
	if limit <= 0 || len(b.sessions) <= limit {
		return out
	}

	ordered := make([]*Session, 0, len(b.sessions))
	for _, rec := range b.sessions {
		ordered = append(ordered, rec)
	}
	sortByActivityDesc(ordered)

	for _, rec := range ordered[limit:] {
		out = s.removeLocked(b, rec.ID, CauseConcurrency, out)
	}
	return out
}

// sortByActivityDesc orders most recently active first; registration order
// breaks ties so the newest session wins.
func sortByActivityDesc(recs []*Session) {
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].LastActivity.Equal(recs[j].LastActivity) {
			return recs[i].LastActivity.After(recs[j].LastActivity)
		}
		return recs[i].seq > recs[j].seq
	})
}

// ListForAccount returns the account's sessions, most recently active first.
func (s *Store) ListForAccount(accountID string) []Session {
	b := s.lockBucket(accountID, false)
	if b == nil {
		return nil
	}
	recs := make([]*Session, 0, len(b.sessions))
	for _, rec := range b.sessions {
		recs = append(recs, rec)
	}
	sortByActivityDesc(recs)
	out := make([]Session, len(recs))
	for i, rec := range recs {
		out[i] = *rec
	}
	b.mu.Unlock()
	return out
}

// Count returns the number of stored sessions, including ones that have
// expired but were not swept yet.
func (s *Store) Count() int {
	n := 0
	for i := range s.index {
		sh := &s.index[i]
		sh.mu.RLock()
		n += len(sh.accounts)
		sh.mu.RUnlock()
	}
	return n
}

// Sweep evicts every session that fails the validity checks and returns
// the number evicted. It takes the same bucket locks as the request path.
func (s *Store) Sweep() int {
	total := 0
	for i := range s.accounts {
		sh := &s.accounts[i]

		sh.mu.RLock()
		ids := make([]string, 0, len(sh.buckets))
		for id := range sh.buckets {
			ids = append(ids, id)
		}
		sh.mu.RUnlock()

		for _, accountID := range ids {
			total += s.sweepAccount(accountID)
		}
	}
	return total
}

func (s *Store) sweepAccount(accountID string) int {
	b := s.lockBucket(accountID, false)
	if b == nil {
		return 0
	}

	now := s.now()
	var evicted []eviction
	for id, rec := range b.sessions {
		if cause := s.check(rec, now); cause != 0 {
			evicted = s.removeLocked(b, id, cause, evicted)
		}
	}
	empty := len(b.sessions) == 0
	b.mu.Unlock()

	if empty {
		s.reap(accountID)
	}
	s.notify(evicted)
	return len(evicted)
}
