package admission

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MrEthical07/goGate/internal/rate"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned by [Decision.Err] for TooManyRequests.
	ErrRateLimited = errors.New("rate limited")
	// ErrForbiddenOrigin is returned by [Decision.Err] for ForbiddenOrigin.
	ErrForbiddenOrigin = errors.New("forbidden origin")
)

// Outcome is the result class of an admission check.
type Outcome uint8

const (
	Allowed Outcome = iota
	TooManyRequests
	ForbiddenOrigin
)

// String returns a machine-readable reason.
func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case TooManyRequests:
		return "too_many_requests"
	case ForbiddenOrigin:
		return "forbidden_origin"
	default:
		return "unknown"
	}
}

// StatusCode maps the outcome to an HTTP status.
func (o Outcome) StatusCode() int {
	switch o {
	case TooManyRequests:
		return http.StatusTooManyRequests
	case ForbiddenOrigin:
		return http.StatusForbidden
	default:
		return http.StatusOK
	}
}

// Request carries the inputs of one admission check.
type Request struct {
	ClientID      string
	Method        string
	Origin        string
	Host          string
	Authorization string
}

// RequestFromHTTP extracts a Request from r.
func RequestFromHTTP(r *http.Request, trustProxy bool) Request {
	return Request{
		ClientID:      ClientID(r, trustProxy),
		Method:        r.Method,
		Origin:        r.Header.Get("Origin"),
		Host:          r.Host,
		Authorization: r.Header.Get("Authorization"),
	}
}

// Decision is the gate's verdict.
type Decision struct {
	Outcome   Outcome
	Limit     int
	Remaining int
	// RetryAfter is set for TooManyRequests, rounded up to whole seconds.
	RetryAfter time.Duration
	Reason     string
	// Degraded is set when the rate backend failed and the request was let
	// through without being counted.
	Degraded bool
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool { return d.Outcome == Allowed }

// Err returns the sentinel for a rejection, nil otherwise.
func (d Decision) Err() error {
	switch d.Outcome {
	case TooManyRequests:
		return ErrRateLimited
	case ForbiddenOrigin:
		return ErrForbiddenOrigin
	}
	return nil
}

// Gate combines the rate limiter and the origin policy.
type Gate struct {
	cfg     Config
	limiter *rate.Limiter
	origin  OriginPolicy
	headers http.Header
	logger  *slog.Logger

	now         func() time.Time
	redis       redis.UniversalClient
	redisPrefix string
}

// Option customises a Gate.
type Option func(*Gate)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithRedis shares rate windows through Redis. prefix defaults to "grl".
func WithRedis(client redis.UniversalClient, prefix string) Option {
	return func(g *Gate) {
		g.redis = client
		g.redisPrefix = prefix
	}
}

// WithLogger sets the logger used for backend failures and rejections.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Gate.
func New(cfg Config, opts ...Option) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := &Gate{
		cfg:    cfg,
		now:    time.Now,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}

	var store rate.Store
	if g.redis != nil {
		store = rate.NewRedisStore(g.redis, g.redisPrefix)
	} else {
		store = rate.NewMemoryStore()
	}

	lim, err := rate.New(store, rate.Config{Limit: cfg.Limit, Window: cfg.Window}, g.now)
	if err != nil {
		return nil, err
	}
	g.limiter = lim
	g.origin = OriginPolicy{
		Scheme:            cfg.Scheme,
		AllowLoopbackHTTP: cfg.DevelopmentMode,
	}
	g.headers = cfg.Headers.withDefaults().header()
	return g, nil
}

// Config returns the gate configuration.
func (g *Gate) Config() Config { return g.cfg }

// CheckRateLimit counts one request for clientID.
func (g *Gate) CheckRateLimit(ctx context.Context, clientID string) Decision {
	if clientID == "" {
		clientID = unknownClient
	}

	res, err := g.limiter.Check(ctx, clientID)
	if err != nil {
		g.logger.WarnContext(ctx, "rate limit backend failed, admitting request",
			slog.String("client", clientID),
			slog.Any("error", err),
		)
		return Decision{
			Outcome:  Allowed,
			Limit:    g.cfg.Limit,
			Reason:   Allowed.String(),
			Degraded: true,
		}
	}

	if !res.Allowed {
		g.logger.DebugContext(ctx, "request rate limited",
			slog.String("client", clientID),
			slog.Duration("retry_after", res.RetryAfter),
		)
		return Decision{
			Outcome:    TooManyRequests,
			Limit:      res.Limit,
			Remaining:  0,
			RetryAfter: roundRetry(res.RetryAfter),
			Reason:     TooManyRequests.String(),
		}
	}

	return Decision{
		Outcome:   Allowed,
		Limit:     res.Limit,
		Remaining: res.Remaining,
		Reason:    Allowed.String(),
	}
}

// ResetClient clears the rate window of clientID.
func (g *Gate) ResetClient(ctx context.Context, clientID string) error {
	if clientID == "" {
		clientID = unknownClient
	}
	return g.limiter.Reset(ctx, clientID)
}

// ValidateOrigin applies the gate's origin policy.
func (g *Gate) ValidateOrigin(method, origin, host, authorization string) bool {
	return g.origin.Validate(method, origin, host, authorization)
}

// Admit runs the rate limit and then the origin check.
func (g *Gate) Admit(ctx context.Context, req Request) Decision {
	d := g.CheckRateLimit(ctx, req.ClientID)
	if !d.Allowed() {
		return d
	}

	if !g.ValidateOrigin(req.Method, req.Origin, req.Host, req.Authorization) {
		g.logger.DebugContext(ctx, "origin rejected",
			slog.String("client", req.ClientID),
			slog.String("method", req.Method),
			slog.String("origin", req.Origin),
			slog.String("host", req.Host),
		)
		d.Outcome = ForbiddenOrigin
		d.Reason = ForbiddenOrigin.String()
	}
	return d
}

// SecurityHeaders returns a copy of the static hardening headers.
func (g *Gate) SecurityHeaders() http.Header {
	return g.headers.Clone()
}

// Sweep drops idle in-memory windows and returns how many were removed.
// Redis windows expire on their own.
func (g *Gate) Sweep() int {
	return g.limiter.Sweep()
}

// Headers returns the advisory rate-limit headers for d. Degraded decisions
// carry none, since nothing was counted.
func Headers(d Decision) http.Header {
	h := make(http.Header, 3)
	if d.Degraded || d.Limit <= 0 {
		return h
	}
	h.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	if d.Outcome == TooManyRequests {
		h.Set("Retry-After", strconv.Itoa(int(d.RetryAfter/time.Second)))
	}
	return h
}

func roundRetry(d time.Duration) time.Duration {
	if d <= time.Second {
		return time.Second
	}
	return ((d + time.Second - 1) / time.Second) * time.Second
}
