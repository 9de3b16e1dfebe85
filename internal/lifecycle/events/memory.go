// Package events holds the outbound lifecycle event sinks: Kafka for
// production, a buffered wrapper that keeps sink latency off the request path,
// a log sink for local runs and an in-memory recorder for tests.
package events

import (
	"context"
	"sync"

	"caregate/pkg/platform/audit"
)

// MemorySink records every event it receives.
type MemorySink struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, eventType audit.EventType, payload audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	payload.Type = eventType
	s.events = append(s.events, payload)
	return nil
}

// FailWith makes subsequent Emit calls return err. Pass nil to recover.
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Events returns a copy of everything emitted so far.
func (s *MemorySink) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event(nil), s.events...)
}

// OfType returns the emitted events of one type, in order.
func (s *MemorySink) OfType(eventType audit.EventType) []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// Types returns the emitted event types, in order.
func (s *MemorySink) Types() []audit.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

func (s *MemorySink) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}
