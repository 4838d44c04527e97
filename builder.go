package goGate

import (
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goGate/admission"
	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/internal/flows"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/session"
)

// Builder assembles an [Engine]. Configure it during initialization, call
// [Builder.Build] once, and discard it.
type Builder struct {
	config    Config
	redis     redis.UniversalClient
	accounts  AccountStore
	auditSink AuditSink
	logger    *slog.Logger
	now       func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

// WithConfig replaces the configuration. The builder keeps a deep copy.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis shares rate-limit windows across instances through Redis.
// Without it the engine uses the in-memory window store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountStore sets the store consulted by [Engine.Authorize].
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.accounts = store
	return b
}

// WithAuditSink sets where audit events are delivered.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the structured logger. The default discards everything.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now across every component. Intended for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the admit and validate latency histograms.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. Background work
// does not start until [Engine.Start].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	engine := &Engine{
		config:   cfg,
		accounts: b.accounts,
		redis:    b.redis,
		logger:   logger,
		now:      now,
		metrics:  NewMetrics(cfg.Metrics),
	}

	// -------- AUDIT --------
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
		OnDrop: func(internalaudit.Event) {
			engine.metrics.Inc(MetricAuditDropped)
		},
	}, b.auditSink)

	// -------- ADMISSION GATE --------
	gateOpts := []admission.Option{
		admission.WithClock(now),
		admission.WithLogger(logger.With(slog.String("component", "admission"))),
	}
	if b.redis != nil {
		gateOpts = append(gateOpts, admission.WithRedis(b.redis, cfg.RateLimit.RedisPrefix))
	}
	gate, err := admission.New(cfg.admissionConfig(), gateOpts...)
	if err != nil {
		engine.audit.Close()
		return nil, err
	}
	engine.gate = gate

	// -------- SESSION STORE --------
	store, err := session.NewStore(cfg.sessionConfig(),
		session.WithClock(now),
		session.WithEvictionFunc(engine.onEvict),
	)
	if err != nil {
		engine.audit.Close()
		return nil, err
	}
	engine.sessions = store

	// -------- BEARER TOKENS --------
	var tokens flows.TokenVerifier
	if cfg.Token.Enabled {
		v, err := jwt.NewVerifier(jwt.Config{
			SigningMethod: jwt.SigningMethod(cfg.Token.SigningMethod),
			PrivateKey:    cloneBytes(cfg.Token.PrivateKey),
			PublicKey:     cloneBytes(cfg.Token.PublicKey),
			Issuer:        cfg.Token.Issuer,
			Audience:      cfg.Token.Audience,
			Leeway:        cfg.Token.Leeway,

			JWKSURL:             cfg.Token.JWKSURL,
			JWKSRefreshInterval: cfg.Token.JWKSRefreshInterval,
			Logger:              logger.With(slog.String("component", "jwks")),
		})
		if err != nil {
			engine.audit.Close()
			return nil, err
		}
		engine.verifier = v.WithClock(now)
		tokens = engine.verifier
	}

	// -------- FLOWS --------
	var finder flows.AccountFinder
	if b.accounts != nil {
		finder = b.accounts
	}
	engine.flows = flows.New(flows.Deps{
		Authorize: flows.AuthorizeDeps{
			Accounts:   finder,
			NoStoreErr: ErrStoreUnavailable,
		},
		Validate: flows.ValidateDeps{
			Sessions:          store,
			Tokens:            tokens,
			TokensDisabledErr: ErrTokenDisabled,
		},
		Logout: flows.LogoutDeps{
			Sessions:          store,
			Tokens:            tokens,
			TokensDisabledErr: ErrTokenDisabled,
		},
	})

	b.built = true
	return engine, nil
}
