package events

import (
	"context"
	"sync"

	"github.com/SscSPs/core_banking_ledger/internal/core/domain"
	"github.com/SscSPs/core_banking_ledger/internal/core/ports"
)

// NoopPublisher drops every event.
type NoopPublisher struct{}

var _ ports.EventPublisher = NoopPublisher{}

func (NoopPublisher) Publish(context.Context, ...domain.LedgerEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }

// RecordingPublisher keeps events in memory. Tests use it to assert what
// was emitted.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []domain.LedgerEvent
}

var _ ports.EventPublisher = (*RecordingPublisher)(nil)

func (r *RecordingPublisher) Publish(_ context.Context, events ...domain.LedgerEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

func (r *RecordingPublisher) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *RecordingPublisher) Events() []domain.LedgerEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LedgerEvent, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the published events of type t.
func (r *RecordingPublisher) OfType(t domain.EventType) []domain.LedgerEvent {
	var out []domain.LedgerEvent
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
