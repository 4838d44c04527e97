package goGate

import (
	"context"
	"time"
)

// SessionInfo is the safe introspection view of a session, suitable for an
// "active devices" page.
type SessionInfo struct {
	SessionID    string
	AccountID    string
	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time
	IdleDeadline time.Time
	RemoteAddr   string
	UserAgent    string
}

// HealthStatus is an on-demand backend health result.
type HealthStatus struct {
	RedisConfigured bool
	RedisAvailable  bool
	RedisLatency    time.Duration
	ActiveSessions  int
}

// GetSessionInfo returns a session without touching it.
func (e *Engine) GetSessionInfo(sessionID string) (SessionInfo, error) {
	if e == nil || e.sessions == nil {
		return SessionInfo{}, ErrEngineNotReady
	}
	if sessionID == "" {
		return SessionInfo{}, ErrSessionNotFound
	}
	s, ok := e.sessions.Get(sessionID)
	if !ok {
		return SessionInfo{}, ErrSessionNotFound
	}
	return e.toSessionInfo(s), nil
}

// ListActiveSessions returns the sessions of accountID, most recently
// active first.
func (e *Engine) ListActiveSessions(accountID string) ([]SessionInfo, error) {
	if e == nil || e.sessions == nil {
		return nil, ErrEngineNotReady
	}
	if accountID == "" {
		return nil, ErrAccountNotFound
	}
	sessions := e.sessions.ListForAccount(accountID)
	out := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, e.toSessionInfo(s))
	}
	return out, nil
}

// GetActiveSessionCount returns the number of sessions held by accountID.
func (e *Engine) GetActiveSessionCount(accountID string) (int, error) {
	list, err := e.ListActiveSessions(accountID)
	return len(list), err
}

// ActiveSessionEstimate returns the number of stored sessions, stale ones
// not yet swept included.
func (e *Engine) ActiveSessionEstimate() int {
	if e == nil || e.sessions == nil {
		return 0
	}
	return e.sessions.Count()
}

// Health pings Redis when configured and reports the session count.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	if e == nil {
		return HealthStatus{}
	}
	h := HealthStatus{ActiveSessions: e.ActiveSessionEstimate()}
	if e.redis == nil {
		return h
	}
	h.RedisConfigured = true
	start := time.Now()
	err := e.redis.Ping(ctx).Err()
	h.RedisLatency = time.Since(start)
	h.RedisAvailable = err == nil
	return h
}

func (e *Engine) toSessionInfo(s Session) SessionInfo {
	return SessionInfo{
		SessionID:    s.ID,
		AccountID:    s.AccountID,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		ExpiresAt:    s.CreatedAt.Add(e.config.Session.MaxAge),
		IdleDeadline: s.LastActivity.Add(e.config.Session.InactivityTimeout),
		RemoteAddr:   s.Metadata.RemoteAddr,
		UserAgent:    s.Metadata.UserAgent,
	}
}
