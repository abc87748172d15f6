// Package store persists the counter value and the per-account interaction
// counts.
package store

import (
	"context"
	"sync"

	registrymodels "attestry/internal/registry/models"
)

// InMemoryStore keeps the counter state in process memory.
type InMemoryStore struct {
	mu           sync.RWMutex
	value        uint32
	interactions map[registrymodels.AccountID]uint32
}

func New() *InMemoryStore {
	return &InMemoryStore{interactions: make(map[registrymodels.AccountID]uint32)}
}

// Value returns the current counter value; zero when never set.
func (s *InMemoryStore) Value(_ context.Context) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value, nil
}

func (s *InMemoryStore) SetValue(_ context.Context, value uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	return nil
}

// Interactions returns how many counter operations the account has performed.
func (s *InMemoryStore) Interactions(_ context.Context, accountID registrymodels.AccountID) (uint32, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interactions[accountID], nil
}

func (s *InMemoryStore) SetInteractions(_ context.Context, accountID registrymodels.AccountID, count uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions[accountID] = count
	return nil
}
