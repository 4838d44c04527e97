package goGate

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGate/admission"
	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

// Engine composes the admission gate, the session store and the access
// rights engine. Create it with [Builder.Build]. All methods are safe for
// concurrent use.
type Engine struct {
	config   Config
	gate     *admission.Gate
	sessions *session.Store
	verifier *jwt.Verifier
	accounts AccountStore
	redis    redis.UniversalClient
	flows    flows.Service
	audit    *internalaudit.Dispatcher
	metrics  *Metrics
	logger   *slog.Logger
	now      func() time.Time

	lifeMu   sync.Mutex
	started  bool
	closed   bool
	stopRate context.CancelFunc
	rateDone chan struct{}
}

// Config returns a deep copy of the engine configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// Start launches the background sweepers: one for idle sessions and, with
// the in-memory rate store, one for idle client windows. Both stop when ctx
// is cancelled or [Engine.Close] runs. Calling Start twice is a no-op.
func (e *Engine) Start(ctx context.Context) {
	if e == nil {
		return
	}
	e.lifeMu.Lock()
	defer e.lifeMu.Unlock()
	if e.started || e.closed {
		return
	}
	e.started = true
	if ctx == nil {
		ctx = context.Background()
	}

	e.sessions.StartSweeper(ctx, func(evicted int) {
		if evicted > 0 {
			e.logger.Debug("session sweep", slog.Int("evicted", evicted))
		}
	})

	if e.redis != nil {
		return
	}
	rateCtx, cancel := context.WithCancel(ctx)
	e.stopRate = cancel
	e.rateDone = make(chan struct{})
	go e.rateSweepLoop(rateCtx, e.rateDone)
}

func (e *Engine) rateSweepLoop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.config.RateLimit.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.SweepRateWindows()
		case <-ctx.Done():
			return
		}
	}
}

// SweepRateWindows drops idle in-memory client windows now and returns how
// many were removed. The background sweeper calls it periodically.
func (e *Engine) SweepRateWindows() int {
	if e == nil || e.gate == nil {
		return 0
	}
	n := e.gate.Sweep()
	e.metrics.Add(MetricRateWindowsSwept, uint64(n))
	return n
}

// SweepSessions evicts every stale session now and returns how many were
// removed.
func (e *Engine) SweepSessions() int {
	if e == nil || e.sessions == nil {
		return 0
	}
	return e.sessions.Sweep()
}

// Close stops the sweepers and flushes the audit dispatcher. It never waits
// on in-flight requests and is safe to call more than once.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.lifeMu.Lock()
	if e.closed {
		e.lifeMu.Unlock()
		return
	}
	e.closed = true
	stop, done := e.stopRate, e.rateDone
	e.lifeMu.Unlock()

	if stop != nil {
		stop()
		<-done
	}
	if e.sessions != nil {
		e.sessions.Close()
	}
	e.verifier.Close()
	e.audit.Close()
}

// AuditDropped returns how many audit events were dropped because the
// buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a copy of every counter and enabled histogram.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// SecurityHeaders returns a copy of the static hardening header set.
func (e *Engine) SecurityHeaders() http.Header {
	if e == nil || e.gate == nil {
		return http.Header{}
	}
	return e.gate.SecurityHeaders()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) observe(id MetricID, start time.Time) {
	if e == nil || !e.metrics.LatencyEnabled() {
		return
	}
	e.metrics.Observe(id, time.Since(start))
}
