package goGate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrEthical07/goGate/admission"
)

func TestAdmitRateLimitProperty(t *testing.T) {
	clock := newFakeClock()
	sink := NewChannelSink(16)
	engine := newTestEngine(t, clock, engineOpts{sink: sink})

	for i := 1; i <= 100; i++ {
		d := engine.Admit(bg, AdmissionRequest{ClientID: "203.0.113.7", Method: "GET"})
		if !d.Allowed() {
			t.Fatalf("request %d denied", i)
		}
		if d.Remaining != 100-i {
			t.Fatalf("request %d remaining = %d, want %d", i, d.Remaining, 100-i)
		}
		clock.Advance(100 * time.Millisecond)
	}

	d := engine.Admit(bg, AdmissionRequest{ClientID: "203.0.113.7", Method: "GET"})
	if d.Outcome != admission.TooManyRequests {
		t.Fatalf("101st outcome = %s, want too_many_requests", d.Outcome)
	}
	if d.Remaining != 0 || d.RetryAfter < time.Second {
		t.Fatalf("denied decision = %+v", d)
	}

	ev := waitEvent(t, sink, auditEventRateLimited)
	if ev.ClientID != "203.0.113.7" || ev.Success {
		t.Fatalf("unexpected audit event: %+v", ev)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricAdmissionAllowed] != 100 || snap.Counters[MetricRateLimited] != 1 {
		t.Fatalf("counters = %v", snap.Counters)
	}

	clock.Advance(time.Minute)
	if d := engine.Admit(bg, AdmissionRequest{ClientID: "203.0.113.7", Method: "GET"}); !d.Allowed() {
		t.Fatal("window did not reopen after a full window")
	}
}

func TestAdmitOriginRejected(t *testing.T) {
	sink := NewChannelSink(16)
	engine := newTestEngine(t, newFakeClock(), engineOpts{sink: sink})

	d := engine.Admit(bg, postRequest("c1", "https://evil.example", "tickets.example"))
	if d.Outcome != admission.ForbiddenOrigin || d.Err() != ErrForbiddenOrigin {
		t.Fatalf("decision = %+v", d)
	}
	ev := waitEvent(t, sink, auditEventOriginRejected)
	if ev.Metadata["origin"] != "https://evil.example" {
		t.Fatalf("audit metadata = %v", ev.Metadata)
	}

	if d := engine.Admit(bg, postRequest("c1", "https://tickets.example", "tickets.example")); !d.Allowed() {
		t.Fatalf("same-origin post denied: %+v", d)
	}
	if engine.MetricsSnapshot().Counters[MetricOriginRejected] != 1 {
		t.Fatal("origin rejection not counted")
	}
}

func TestAdmitRateLimitBeforeOrigin(t *testing.T) {
	engine := newTestEngine(t, newFakeClock(), engineOpts{mutate: func(c *Config) { c.RateLimit.Limit = 1 }})

	engine.Admit(bg, postRequest("c1", "https://evil.example", "tickets.example"))
	d := engine.Admit(bg, postRequest("c1", "https://evil.example", "tickets.example"))
	if d.Outcome != admission.TooManyRequests {
		t.Fatalf("outcome = %s, want rate limit to win over origin", d.Outcome)
	}
}

func TestAdmitRedisSharedAcrossEngines(t *testing.T) {
	_, rdb := newTestRedis(t)
	clock := newFakeClock()
	mutate := func(c *Config) { c.RateLimit.Limit = 4 }
	a := newTestEngine(t, clock, engineOpts{redis: rdb, mutate: mutate})
	b := newTestEngine(t, clock, engineOpts{redis: rdb, mutate: mutate})

	for i := 0; i < 2; i++ {
		a.Admit(bg, AdmissionRequest{ClientID: "shared", Method: "GET"})
		clock.Advance(time.Millisecond)
		b.Admit(bg, AdmissionRequest{ClientID: "shared", Method: "GET"})
		clock.Advance(time.Millisecond)
	}
	if d := a.Admit(bg, AdmissionRequest{ClientID: "shared", Method: "GET"}); d.Allowed() {
		t.Fatal("instances did not share the window")
	}
}

func TestAdmitRedisFailOpen(t *testing.T) {
	mr, rdb := newTestRedis(t)
	engine := newTestEngine(t, newFakeClock(), engineOpts{redis: rdb})
	mr.Close()

	d := engine.Admit(bg, AdmissionRequest{ClientID: "c1", Method: "GET"})
	if !d.Allowed() || !d.Degraded {
		t.Fatalf("decision = %+v, want degraded allow", d)
	}
	if engine.MetricsSnapshot().Counters[MetricRateBackendDegraded] != 1 {
		t.Fatal("degraded admission not counted")
	}
	if h := engine.Health(bg); !h.RedisConfigured || h.RedisAvailable {
		t.Fatalf("health = %+v", h)
	}
}

func TestResetRateLimit(t *testing.T) {
	sink := NewChannelSink(16)
	engine := newTestEngine(t, newFakeClock(), engineOpts{sink: sink, mutate: func(c *Config) { c.RateLimit.Limit = 1 }})

	engine.Admit(bg, AdmissionRequest{ClientID: "c1", Method: "GET"})
	if d := engine.Admit(bg, AdmissionRequest{ClientID: "c1", Method: "GET"}); d.Allowed() {
		t.Fatal("second request should be limited")
	}
	if err := engine.ResetRateLimit(bg, "c1"); err != nil {
		t.Fatalf("ResetRateLimit: %v", err)
	}
	if d := engine.Admit(bg, AdmissionRequest{ClientID: "c1", Method: "GET"}); !d.Allowed() {
		t.Fatalf("decision after reset = %+v", d)
	}
	if ev := waitEvent(t, sink, auditEventRateLimitReset); ev.ClientID != "c1" || !ev.Success {
		t.Fatalf("reset event = %+v", ev)
	}
}

func TestResetRateLimitRedisDown(t *testing.T) {
	mr, rdb := newTestRedis(t)
	engine := newTestEngine(t, newFakeClock(), engineOpts{redis: rdb})
	mr.Close()

	if err := engine.ResetRateLimit(bg, "c1"); !errors.Is(err, ErrRateBackendUnavailable) {
		t.Fatalf("err = %v, want ErrRateBackendUnavailable", err)
	}
}

func TestAdmitHTTPUsesProxyTrust(t *testing.T) {
	engine := newTestEngine(t, newFakeClock(), engineOpts{mutate: func(c *Config) {
		c.Origin.TrustProxy = true
		c.RateLimit.Limit = 1
	}})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5000"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")
	if id := engine.ClientID(r); id != "198.51.100.1" {
		t.Fatalf("ClientID = %q", id)
	}

	engine.AdmitHTTP(r)
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.RemoteAddr = "10.0.0.1:5000"
	r2.Header.Set("X-Forwarded-For", "198.51.100.2")
	if d := engine.AdmitHTTP(r2); !d.Allowed() {
		t.Fatal("different forwarded clients should have separate windows")
	}
}

func TestRateSweeperDropsIdleWindows(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(t, clock, engineOpts{})

	for _, id := range []string{"a", "b", "c"} {
		engine.Admit(bg, AdmissionRequest{ClientID: id, Method: "GET"})
	}
	clock.Advance(2 * time.Minute)
	if n := engine.SweepRateWindows(); n != 3 {
		t.Fatalf("swept %d windows, want 3", n)
	}
	if engine.MetricsSnapshot().Counters[MetricRateWindowsSwept] != 3 {
		t.Fatal("swept windows not counted")
	}
}

func TestRateLimitHeaders(t *testing.T) {
	engine := newTestEngine(t, newFakeClock(), engineOpts{mutate: func(c *Config) { c.RateLimit.Limit = 1 }})

	h := RateLimitHeaders(engine.Admit(bg, AdmissionRequest{ClientID: "c", Method: "GET"}))
	if h.Get("X-RateLimit-Limit") != "1" || h.Get("X-RateLimit-Remaining") != "0" || h.Get("Retry-After") != "" {
		t.Fatalf("allowed headers = %v", h)
	}
	h = RateLimitHeaders(engine.Admit(bg, AdmissionRequest{ClientID: "c", Method: "GET"}))
	if h.Get("Retry-After") != "60" {
		t.Fatalf("Retry-After = %q, want 60", h.Get("Retry-After"))
	}
	if engine.SecurityHeaders().Get("X-Frame-Options") != "DENY" {
		t.Fatal("security headers missing")
	}
}
