package events

import (
	"context"
	"sync"
)

// InMemoryStore keeps emitted events in order of arrival. It backs tests and
// single-node deployments where no broker is configured.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// List returns all recorded events in emission order.
func (s *InMemoryStore) List(_ context.Context) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events...), nil
}

// ListByActor returns the events emitted for operations performed by the
// given account.
func (s *InMemoryStore) ListByActor(_ context.Context, actor string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Event
	for _, e := range s.events {
		if e.Actor == actor {
			out = append(out, e)
		}
	}
	return out, nil
}
