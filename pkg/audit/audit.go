// Package audit records who changed what.
//
// Sinks are fire-and-forget from the caller's point of view: services log a
// failing sink and carry on. Durability is the sink's own concern.
package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one audit record.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	OldValue   *string   `json:"old_value,omitempty"`
	NewValue   *string   `json:"new_value,omitempty"`
	ActorID    uuid.UUID `json:"actor_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEntry builds an Entry stamped with a fresh ID and the current UTC time.
// Empty old or new values are stored as nil.
func NewEntry(action, entityType, entityID, oldValue, newValue string, actor uuid.UUID) *Entry {
	return &Entry{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		OldValue:   optional(oldValue),
		NewValue:   optional(newValue),
		ActorID:    actor,
		CreatedAt:  time.Now().UTC(),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Sink receives audit entries.
type Sink interface {
	Log(ctx context.Context, entry *Entry) error
}

// Writer persists entries; repository.AuditRepository satisfies it.
type Writer interface {
	Create(ctx context.Context, entry *Entry) error
}

// StoreSink writes entries through a Writer.
type StoreSink struct {
	w Writer
}

// NewStoreSink returns a Sink backed by w.
func NewStoreSink(w Writer) *StoreSink {
	return &StoreSink{w: w}
}

// Log implements Sink.
func (s *StoreSink) Log(ctx context.Context, entry *Entry) error {
	return s.w.Create(ctx, entry)
}

// LogSink writes entries to a structured logger at Info level.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink returns a Sink that only logs.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger.With("sink", "audit")}
}

// Log implements Sink.
func (s *LogSink) Log(ctx context.Context, e *Entry) error {
	s.logger.InfoContext(ctx, "audit",
		"action", e.Action,
		"entity_type", e.EntityType,
		"entity_id", e.EntityID,
		"old", deref(e.OldValue),
		"new", deref(e.NewValue),
		"actor", e.ActorID,
	)
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Multi fans an entry out to every sink and joins their errors.
type Multi []Sink

// Log implements Sink.
func (m Multi) Log(ctx context.Context, entry *Entry) error {
	var errs []error
	for _, s := range m {
		if err := s.Log(ctx, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Memory keeps entries in process. Used by the CLI and tests.
type Memory struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemory returns an empty Memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Log implements Sink.
func (m *Memory) Log(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// Entries returns a snapshot of the recorded entries.
func (m *Memory) Entries() []*Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Clear drops all recorded entries.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = nil
}

var (
	_ Sink = (*StoreSink)(nil)
	_ Sink = (*LogSink)(nil)
	_ Sink = Multi(nil)
	_ Sink = (*Memory)(nil)
)
