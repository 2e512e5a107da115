// Package store provides an in-memory event sink used by tests and the
// single-process deployment mode.
package store

import (
	"context"
	"sync"

	"clubhub/internal/notify"
)

// InMemory records delivered events in order.
type InMemory struct {
	mu     sync.RWMutex
	events []notify.Event
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Deliver(_ context.Context, e notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

// Events returns a snapshot of everything delivered so far.
func (s *InMemory) Events() []notify.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]notify.Event, len(s.events))
	copy(out, s.events)
	return out
}

// OfType filters the snapshot by event type.
func (s *InMemory) OfType(eventType string) []notify.Event {
	var out []notify.Event
	for _, e := range s.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
