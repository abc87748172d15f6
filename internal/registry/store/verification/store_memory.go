// Package verification persists the attestation relation keyed by
// (validator, owner). A present pair means "verified"; there is no un-verify,
// so the relation only ever grows. Duplicate detection is owned by the
// registry service, not re-checked here.
package verification

import (
	"context"
	"sync"

	"attestry/internal/registry/models"
)

// InMemoryStore keeps the relation as a two-level map.
type InMemoryStore struct {
	mu            sync.RWMutex
	verifications map[models.AccountID]map[models.AccountID]bool
}

func New() *InMemoryStore {
	return &InMemoryStore{verifications: make(map[models.AccountID]map[models.AccountID]bool)}
}

func (s *InMemoryStore) Exists(_ context.Context, validatorID, ownerID models.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.verifications[validatorID][ownerID], nil
}

// Insert records the attestation. The caller has already checked Exists.
func (s *InMemoryStore) Insert(_ context.Context, validatorID, ownerID models.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owners, ok := s.verifications[validatorID]
	if !ok {
		owners = make(map[models.AccountID]bool)
		s.verifications[validatorID] = owners
	}
	owners[ownerID] = true
	return nil
}
