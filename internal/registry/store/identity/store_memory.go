// Package identity persists identity records keyed by account id. The key is
// the map key itself, so no uniqueness conflicts are possible at this layer;
// all validation happens upstream in the service.
package identity

import (
	"context"
	"sync"

	"attestry/internal/registry/models"
	"attestry/pkg/platform/sentinel"
)

// InMemoryStore favors clarity over performance. It is the default backend
// for tests and single-node deployments.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[models.AccountID]models.Identity
}

func New() *InMemoryStore {
	return &InMemoryStore{identities: make(map[models.AccountID]models.Identity)}
}

// Find returns the stored record, or sentinel.ErrNotFound when absent.
func (s *InMemoryStore) Find(_ context.Context, accountID models.AccountID) (models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if identity, ok := s.identities[accountID]; ok {
		return identity, nil
	}
	return models.Identity{}, sentinel.ErrNotFound
}

// Save overwrites the record wholesale. Re-creation after revocation is a
// plain Save with a fresh record.
func (s *InMemoryStore) Save(_ context.Context, accountID models.AccountID, identity models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identities[accountID] = identity
	return nil
}

// Mutate applies fn in place only when a record exists; otherwise it is a
// silent no-op.
func (s *InMemoryStore) Mutate(_ context.Context, accountID models.AccountID, fn func(*models.Identity)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[accountID]
	if !ok {
		return nil
	}
	fn(&identity)
	s.identities[accountID] = identity
	return nil
}
