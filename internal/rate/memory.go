package rate

import (
	"context"
	"hash/maphash"
	"sync"
	"time"
)

const memoryShards = 64

type clientWindow struct {
	mu     sync.Mutex
	stamps []time.Time
	dead   bool
}

// prune drops stamps at or before cutoff and returns the oldest survivor.
func (w *clientWindow) prune(cutoff time.Time) (oldest time.Time) {
	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
			if oldest.IsZero() || ts.Before(oldest) {
				oldest = ts
			}
		}
	}
	clear(w.stamps[len(kept):])
	w.stamps = kept
	return oldest
}

type memoryShard struct {
	mu      sync.RWMutex
	windows map[string]*clientWindow
}

// MemoryStore keeps windows in process memory. Each client window has its
// own mutex; the shard lock is only held to find or unlink a window.
type MemoryStore struct {
	seed   maphash.Seed
	shards [memoryShards]memoryShard
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{seed: maphash.MakeSeed()}
	for i := range m.shards {
		m.shards[i].windows = make(map[string]*clientWindow)
	}
	return m
}

func (m *MemoryStore) shard(key string) *memoryShard {
	return &m.shards[maphash.String(m.seed, key)%memoryShards]
}

// lock returns the locked window of key, creating it when missing.
func (m *MemoryStore) lock(key string) *clientWindow {
	sh := m.shard(key)
	for {
		sh.mu.RLock()
		w := sh.windows[key]
		sh.mu.RUnlock()

		if w == nil {
			sh.mu.Lock()
			w = sh.windows[key]
			if w == nil {
				w = &clientWindow{}
				sh.windows[key] = w
			}
			sh.mu.Unlock()
		}

		w.mu.Lock()
		if !w.dead {
			return w
		}
		w.mu.Unlock()
	}
}

// Hit implements Store.
func (m *MemoryStore) Hit(_ context.Context, key string, now time.Time, limit int, window time.Duration) (Result, error) {
	w := m.lock(key)
	defer w.mu.Unlock()

	oldest := w.prune(now.Add(-window))
	if len(w.stamps) < limit {
		w.stamps = append(w.stamps, now)
		return Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - len(w.stamps),
		}, nil
	}

	retry := oldest.Add(window).Sub(now)
	if retry < 0 {
		retry = 0
	}
	return Result{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		RetryAfter: retry,
	}, nil
}

// Reset implements Store.
func (m *MemoryStore) Reset(_ context.Context, key string) error {
	sh := m.shard(key)
	sh.mu.Lock()
	if w := sh.windows[key]; w != nil {
		w.mu.Lock()
		w.dead = true
		delete(sh.windows, key)
		w.mu.Unlock()
	}
	sh.mu.Unlock()
	return nil
}

// Sweep prunes every window against now and unlinks the empty ones.
func (m *MemoryStore) Sweep(now time.Time, window time.Duration) int {
	cutoff := now.Add(-window)
	dropped := 0
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.Lock()
		for key, w := range sh.windows {
			w.mu.Lock()
			w.prune(cutoff)
			if len(w.stamps) == 0 {
				w.dead = true
				delete(sh.windows, key)
				dropped++
			}
			w.mu.Unlock()
		}
		sh.mu.Unlock()
	}
	return dropped
}

// Len returns the number of tracked client windows.
func (m *MemoryStore) Len() int {
	n := 0
	for i := range m.shards {
		sh := &m.shards[i]
		sh.mu.RLock()
		n += len(sh.windows)
		sh.mu.RUnlock()
	}
	return n
}
