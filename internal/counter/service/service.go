// Package service implements the shared counter operations: an
// administrative set plus bounded increment/decrement that also track how
// many operations each account has performed.
package service

import (
	"context"
	"math"

	"attestry/internal/counter/models"
	"attestry/internal/events"
	"attestry/internal/platform/config"
	"attestry/internal/platform/metrics"
	registrymodels "attestry/internal/registry/models"
	dErrors "attestry/pkg/domainerrors"
)

// Store persists the counter value and per-account interaction counts.
type Store interface {
	Value(ctx context.Context) (uint32, error)
	SetValue(ctx context.Context, value uint32) error
	Interactions(ctx context.Context, accountID registrymodels.AccountID) (uint32, error)
	SetInteractions(ctx context.Context, accountID registrymodels.AccountID, count uint32) error
}

// EventPublisher emits counter events.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

type Service struct {
	store     Store
	publisher EventPublisher
	cfg       config.Counter
	metrics   *metrics.Metrics
}

func NewService(store Store, publisher EventPublisher, cfg config.Counter, m *metrics.Metrics) *Service {
	return &Service{store: store, publisher: publisher, cfg: cfg, metrics: m}
}

// Value returns the current counter value.
func (s *Service) Value(ctx context.Context) (uint32, error) {
	value, err := s.store.Value(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read counter")
	}
	return value, nil
}

// SetValue overwrites the counter. Authorization (admin-only) is enforced at
// the transport boundary; this layer only validates the value itself.
func (s *Service) SetValue(ctx context.Context, caller registrymodels.AccountID, value uint32) error {
	if value > s.cfg.MaxValue {
		return dErrors.Wrap(models.ErrValueExceedsMax, dErrors.CodeBadRequest, "counter value exceeds maximum")
	}
	if err := s.store.SetValue(ctx, value); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "set counter")
	}
	s.emit(ctx, events.Event{Type: events.TypeCounterValueSet, Actor: string(caller), Value: value})
	s.countOp("set")
	return nil
}

// Increment adds amount to the counter, rejecting 32-bit overflow and values
// above the configured maximum, and bumps the caller's interaction count.
// All checks happen before any write.
func (s *Service) Increment(ctx context.Context, caller registrymodels.AccountID, amount uint32) (uint32, error) {
	current, err := s.store.Value(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read counter")
	}
	if amount > math.MaxUint32-current {
		return 0, dErrors.Wrap(models.ErrValueOverflow, dErrors.CodeBadRequest, "counter overflow")
	}
	newValue := current + amount
	if newValue > s.cfg.MaxValue {
		return 0, dErrors.Wrap(models.ErrValueExceedsMax, dErrors.CodeBadRequest, "counter value exceeds maximum")
	}

	interactions, err := s.bumpInteractions(ctx, caller)
	if err != nil {
		return 0, err
	}
	if err := s.store.SetValue(ctx, newValue); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "set counter")
	}
	if err := s.store.SetInteractions(ctx, caller, interactions); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "set interactions")
	}

	s.emit(ctx, events.Event{Type: events.TypeCounterIncremented, Actor: string(caller), Value: newValue, Amount: amount})
	s.countOp("increment")
	return newValue, nil
}

// Decrement subtracts amount from the counter, rejecting drops below zero,
// and bumps the caller's interaction count.
func (s *Service) Decrement(ctx context.Context, caller registrymodels.AccountID, amount uint32) (uint32, error) {
	current, err := s.store.Value(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read counter")
	}
	if amount > current {
		return 0, dErrors.Wrap(models.ErrValueBelowZero, dErrors.CodeBadRequest, "counter below zero")
	}
	newValue := current - amount

	interactions, err := s.bumpInteractions(ctx, caller)
	if err != nil {
		return 0, err
	}
	if err := s.store.SetValue(ctx, newValue); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "set counter")
	}
	if err := s.store.SetInteractions(ctx, caller, interactions); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "set interactions")
	}

	s.emit(ctx, events.Event{Type: events.TypeCounterDecremented, Actor: string(caller), Value: newValue, Amount: amount})
	s.countOp("decrement")
	return newValue, nil
}

// Interactions returns the number of counter operations the account has
// performed.
func (s *Service) Interactions(ctx context.Context, accountID registrymodels.AccountID) (uint32, error) {
	count, err := s.store.Interactions(ctx, accountID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read interactions")
	}
	return count, nil
}

func (s *Service) bumpInteractions(ctx context.Context, caller registrymodels.AccountID) (uint32, error) {
	interactions, err := s.store.Interactions(ctx, caller)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "read interactions")
	}
	if interactions == math.MaxUint32 {
		return 0, dErrors.Wrap(models.ErrInteractionOverflow, dErrors.CodeBadRequest, "interaction overflow")
	}
	return interactions + 1, nil
}

func (s *Service) emit(ctx context.Context, event events.Event) {
	_ = s.publisher.Emit(ctx, event)
}

func (s *Service) countOp(op string) {
	if s.metrics != nil {
		s.metrics.CounterOps.WithLabelValues(op).Inc()
	}
}
