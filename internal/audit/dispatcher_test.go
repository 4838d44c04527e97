package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type blockingSink struct {
	release chan struct{}
	got     atomic.Int64
}

func (s *blockingSink) Emit(context.Context, Event) {
	<-s.release
	s.got.Add(1)
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reports drops")
	}
}

func TestDispatcherDelivers(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{EventType: "session_evicted", SessionID: "s1"})

	select {
	case ev := <-sink.Events():
		if ev.EventType != "session_evicted" || ev.SessionID != "s1" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDispatcherDropIfFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{})}
	var onDrop atomic.Int64
	d := NewDispatcher(Config{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
		OnDrop:     func(Event) { onDrop.Add(1) },
	}, sink)

	// one event parked in the sink, one in the buffer, the rest dropped
	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "rate_limited"})
	}
	close(sink.release)
	d.Close()

	dropped := d.Dropped()
	if dropped == 0 {
		t.Fatal("expected drops with a full buffer")
	}
	if uint64(onDrop.Load()) != dropped {
		t.Fatalf("OnDrop called %d times, Dropped() = %d", onDrop.Load(), dropped)
	}
	if got := uint64(sink.got.Load()) + dropped; got != 10 {
		t.Fatalf("delivered+dropped = %d, want 10", got)
	}
}

func TestDispatcherCloseDrainsAndIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, NewJSONWriterSink(&buf))
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{EventType: "logout", Success: true})
	}
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{EventType: "after_close"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), buf.String())
	}
	var ev Event
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if ev.EventType != "logout" || !ev.Success {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewSlogSink(logger, slog.LevelInfo)

	sink.Emit(context.Background(), Event{
		Timestamp: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EventType: "session_evicted",
		AccountID: "acct-1",
		Reason:    "idle",
		Metadata:  map[string]string{"cause": "idle"},
	})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec["msg"] != "audit: session_evicted" || rec["account_id"] != "acct-1" || rec["reason"] != "idle" {
		t.Fatalf("unexpected record %v", rec)
	}
	md, ok := rec["metadata"].(map[string]any)
	if !ok || md["cause"] != "idle" {
		t.Fatalf("metadata group missing: %v", rec)
	}
}
