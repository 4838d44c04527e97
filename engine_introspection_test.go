package goGate

import (
	"errors"
	"slices"
	"testing"
	"time"
)

func TestSessionIntrospection(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(t, clock, engineOpts{})

	first, _ := engine.RegisterSession(bg, "fan-vip", SessionMetadata{RemoteAddr: "198.51.100.4", UserAgent: "phone"})
	clock.Advance(time.Minute)
	second, _ := engine.RegisterSession(bg, "fan-vip", SessionMetadata{UserAgent: "laptop"})

	info, err := engine.GetSessionInfo(first.ID)
	if err != nil {
		t.Fatalf("GetSessionInfo: %v", err)
	}
	if info.RemoteAddr != "198.51.100.4" || info.UserAgent != "phone" {
		t.Fatalf("metadata = %+v", info)
	}
	if !info.ExpiresAt.Equal(first.CreatedAt.Add(24*time.Hour)) || !info.IdleDeadline.Equal(first.LastActivity.Add(time.Hour)) {
		t.Fatalf("deadlines = %v / %v", info.ExpiresAt, info.IdleDeadline)
	}

	list, err := engine.ListActiveSessions("fan-vip")
	if err != nil {
		t.Fatalf("ListActiveSessions: %v", err)
	}
	ids := make([]string, 0, len(list))
	for _, s := range list {
		ids = append(ids, s.SessionID)
	}
	if !slices.Equal(ids, []string{second.ID, first.ID}) {
		t.Fatalf("order = %v, want most recent first", ids)
	}

	if n, _ := engine.GetActiveSessionCount("nobody"); n != 0 {
		t.Fatalf("count for unknown account = %d", n)
	}
	if _, err := engine.ListActiveSessions(""); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("empty account err = %v", err)
	}
	if _, err := engine.GetSessionInfo("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("missing session err = %v", err)
	}
	if h := engine.Health(bg); h.RedisConfigured || h.ActiveSessions != 2 {
		t.Fatalf("health = %+v", h)
	}
}

func TestGetSessionInfoDoesNotTouch(t *testing.T) {
	clock := newFakeClock()
	engine := newTestEngine(t, clock, engineOpts{})

	s, _ := engine.RegisterSession(bg, "band", SessionMetadata{})
	clock.Advance(10 * time.Minute)
	info, _ := engine.GetSessionInfo(s.ID)
	if !info.LastActivity.Equal(s.LastActivity) {
		t.Fatal("GetSessionInfo bumped activity")
	}
}

func TestHealthWithRedis(t *testing.T) {
	_, rdb := newTestRedis(t)
	engine := newTestEngine(t, newFakeClock(), engineOpts{redis: rdb})

	h := engine.Health(bg)
	if !h.RedisConfigured || !h.RedisAvailable {
		t.Fatalf("health = %+v", h)
	}
}

func TestSecurityReport(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		engine := newTestEngine(t, newFakeClock(), engineOpts{})
		r := engine.SecurityReport()
		if r.DevelopmentMode || !r.HSTSActive || !r.CSPActive || !r.SessionCapsActive {
			t.Fatalf("report = %+v", r)
		}
		if r.BearerTokensEnabled || r.SigningAlgorithm != "" || r.SharedRateStore {
			t.Fatalf("token or redis fields set: %+v", r)
		}
		if len(r.Warnings) != 0 {
			t.Fatalf("warnings = %v", r.Warnings)
		}
	})

	t.Run("tokens and redis", func(t *testing.T) {
		_, rdb := newTestRedis(t)
		engine := newTestEngine(t, newFakeClock(), engineOpts{redis: rdb, mutate: withTokens})
		r := engine.SecurityReport()
		if !r.SharedRateStore || !r.BearerTokensEnabled || r.SigningAlgorithm != "hs256" || r.TokenClaimsPinned {
			t.Fatalf("report = %+v", r)
		}
		if !slices.Contains(r.Warnings, "token_hs256") || !slices.Contains(r.Warnings, "token_claims_unchecked") {
			t.Fatalf("warnings = %v", r.Warnings)
		}
		// Severity order: warn findings come before info findings.
		if slices.Index(r.Warnings, "token_claims_unchecked") > slices.Index(r.Warnings, "token_hs256") {
			t.Fatalf("warnings not sorted by severity: %v", r.Warnings)
		}
	})
}
