package credkit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Audit event types emitted by the Manager. Events carry outcomes only;
// plaintext passwords, hashes, and token strings never appear in an event.
const (
	EventPasswordHash   = "password.hash"
	EventPasswordVerify = "password.verify"
	EventTokenIssue     = "token.issue"
	EventTokenVerify    = "token.verify"
)

// eventKind indexes the drop counters kept by the dispatcher, one slot per
// credential event type plus a catch-all for events emitted by host code.
type eventKind int

const (
	kindPasswordHash eventKind = iota
	kindPasswordVerify
	kindTokenIssue
	kindTokenVerify
	kindOther

	eventKindCount
)

func kindOf(eventType string) eventKind {
	switch eventType {
	case EventPasswordHash:
		return kindPasswordHash
	case EventPasswordVerify:
		return kindPasswordVerify
	case EventTokenIssue:
		return kindTokenIssue
	case EventTokenVerify:
		return kindTokenVerify
	default:
		return kindOther
	}
}

func (k eventKind) String() string {
	switch k {
	case kindPasswordHash:
		return EventPasswordHash
	case kindPasswordVerify:
		return EventPasswordVerify
	case kindTokenIssue:
		return EventTokenIssue
	case kindTokenVerify:
		return EventTokenVerify
	default:
		return "other"
	}
}

// maxAuditErrorLen bounds the Error field before an event reaches a sink.
// Token parse errors can echo segments of the attacker-supplied token string,
// so what flows into audit storage is capped.
const maxAuditErrorLen = 256

func boundError(msg string) string {
	if len(msg) <= maxAuditErrorLen {
		return msg
	}
	return msg[:maxAuditErrorLen]
}

type AuditEvent struct {
	Timestamp time.Time         `json:"timestamp"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

// ChannelSink buffers events for consumption by a host goroutine. When the
// buffer is full the oldest event is discarded in favor of the incoming one:
// for credential events the most recent outcomes are the ones worth keeping.
type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	for {
		select {
		case s.events <- event:
			return
		case <-ctx.Done():
			return
		default:
		}
		// Full. Evict the oldest buffered event and retry.
		select {
		case <-s.events:
		default:
		}
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

// JSONWriterSink streams one JSON object per line, suitable for appending to
// an audit log file or piping into a log shipper.
type JSONWriterSink struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	if w == nil {
		return &JSONWriterSink{}
	}
	return &JSONWriterSink{
		encoder: json.NewEncoder(w),
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.encoder == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.encoder.Encode(event)
}
