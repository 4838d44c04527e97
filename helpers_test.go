package goGate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGate/accounts"
	"github.com/MrEthical07/goGate/permission"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestRedis(t testing.TB) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

// testAccounts seeds a store with one account per interesting role.
func testAccounts(t testing.TB) *accounts.MemoryStore {
	t.Helper()

	store := accounts.NewMemoryStore()
	seed := []permission.Account{
		{ID: "fan-plain", Role: permission.RoleFan},
		{ID: "fan-vip", Role: permission.RoleFan, Tickets: []permission.Ticket{
			{ID: "t-1", Tier: permission.TierVIP, Status: permission.TicketActive},
		}},
		{ID: "fan-backstage", Role: permission.RoleVipFan, Tickets: []permission.Ticket{
			{ID: "t-2", Tier: permission.TierStandard, Status: permission.TicketActive},
			{ID: "t-3", Tier: permission.TierBackstage, Status: permission.TicketActive},
		}},
		{ID: "band", Role: permission.RoleBand},
		{ID: "admin", Role: permission.RoleAdmin},
	}
	for _, a := range seed {
		if err := store.Put(a); err != nil {
			t.Fatalf("seed %s: %v", a.ID, err)
		}
	}
	return store
}

type engineOpts struct {
	mutate func(*Config)
	redis  redis.UniversalClient
	sink   AuditSink
	store  AccountStore
}

func newTestEngine(t testing.TB, clock *fakeClock, opts engineOpts) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Metrics.EnableLatencyHistograms = true
	if opts.mutate != nil {
		opts.mutate(&cfg)
	}

	b := New().WithConfig(cfg).WithClock(clock.Now)
	if opts.redis != nil {
		b.WithRedis(opts.redis)
	}
	if opts.sink != nil {
		b.WithAuditSink(opts.sink)
	}
	if opts.store != nil {
		b.WithAccountStore(opts.store)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

// waitEvent reads audit events until one of eventType arrives.
func waitEvent(t *testing.T, sink *ChannelSink, eventType string) AuditEvent {
	t.Helper()

	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-sink.Events():
			if ev.EventType == eventType {
				return ev
			}
		case <-timeout:
			t.Fatalf("timed out waiting for audit event %q", eventType)
			return AuditEvent{}
		}
	}
}

func postRequest(clientID, origin, host string) AdmissionRequest {
	return AdmissionRequest{
		ClientID: clientID,
		Method:   "POST",
		Origin:   origin,
		Host:     host,
	}
}

var bg = context.Background()
