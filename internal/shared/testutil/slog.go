// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

// LogRecord is a captured log record.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// BufferedHandler captures slog records so tests can assert on them.
type BufferedHandler struct {
	mu      sync.Mutex
	records []LogRecord
	attrs   []slog.Attr
}

// NewLogger returns a logger whose records are captured by the returned
// handler and echoed to the test log.
func NewLogger(t *testing.T) (*slog.Logger, *BufferedHandler) {
	t.Helper()
	h := &BufferedHandler{}
	return slog.New(h), h
}

// Handle implements slog.Handler.
func (h *BufferedHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any)
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, LogRecord{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// Enabled implements slog.Handler; every level is captured.
func (h *BufferedHandler) Enabled(context.Context, slog.Level) bool { return true }

// WithAttrs implements slog.Handler. Attribute scoping is shared with
// the parent so tests keep seeing all records in one place.
func (h *BufferedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attrs = append(h.attrs, attrs...)
	return h
}

// WithGroup implements slog.Handler; groups are flattened for tests.
func (h *BufferedHandler) WithGroup(string) slog.Handler { return h }

// Records returns a copy of the captured records.
func (h *BufferedHandler) Records() []LogRecord {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]LogRecord, len(h.records))
	copy(out, h.records)
	return out
}

// HasMessage reports whether any captured record has the given message.
func (h *BufferedHandler) HasMessage(msg string) bool {
	for _, r := range h.Records() {
		if r.Message == msg {
			return true
		}
	}
	return false
}
