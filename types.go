package goGate

import (
	"context"
	"io"
	"log/slog"

	"github.com/MrEthical07/goGate/admission"
	internalaudit "github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/permission"
	"github.com/MrEthical07/goGate/session"
)

// AccountStore is the read side of the platform's account database. The
// engine calls it once per [Engine.Authorize]; implementations must be safe
// for concurrent use. accounts.MemoryStore and pgstore.Store satisfy it.
type AccountStore interface {
	FindAccountWithTickets(ctx context.Context, accountID string) (permission.Account, error)
}

// Account is an account with its tickets as returned by an [AccountStore].
type Account = permission.Account

// Ticket is one purchased ticket.
type Ticket = permission.Ticket

// Grant is the capability set computed for an account.
type Grant = permission.Grant

// Session is a snapshot of one session record.
type Session = session.Session

// SessionMetadata is optional client information stored with a session.
type SessionMetadata = session.Metadata

// Decision is the admission verdict for one request.
type Decision = admission.Decision

// AdmissionRequest carries the inputs of one admission check.
type AdmissionRequest = admission.Request

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes one JSON object per line.
type JSONWriterSink = internalaudit.JSONWriterSink

// SlogSink is an [AuditSink] that writes events through a [slog.Logger].
type SlogSink = internalaudit.SlogSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewSlogSink creates a [SlogSink] logging at level.
func NewSlogSink(logger *slog.Logger, level slog.Level) *SlogSink {
	return internalaudit.NewSlogSink(logger, level)
}
