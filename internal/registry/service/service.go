// Package service implements the registry operations: create-or-update,
// verify, revoke. It composes the identity store, the verification relation
// and the event publisher, and owns every authorization and invariant check.
package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"attestry/internal/events"
	"attestry/internal/platform/config"
	"attestry/internal/platform/metrics"
	"attestry/internal/registry/models"
	dErrors "attestry/pkg/domainerrors"
	"attestry/pkg/platform/sentinel"
)

// IdentityStore is the key-value mapping from account id to identity record.
type IdentityStore interface {
	Find(ctx context.Context, accountID models.AccountID) (models.Identity, error)
	Save(ctx context.Context, accountID models.AccountID, identity models.Identity) error
	Mutate(ctx context.Context, accountID models.AccountID, fn func(*models.Identity)) error
}

// VerificationStore is the (validator, owner) attestation relation. Insert
// does not re-check existence; this service owns duplicate detection.
type VerificationStore interface {
	Exists(ctx context.Context, validatorID, ownerID models.AccountID) (bool, error)
	Insert(ctx context.Context, validatorID, ownerID models.AccountID) error
}

// EventPublisher emits domain events as the observable side effect of
// successful operations.
type EventPublisher interface {
	Emit(ctx context.Context, event events.Event) error
}

// Service is one registry instance. Stores are constructor-injected so tests
// run against isolated instances; limits are fixed at construction.
type Service struct {
	identities    IdentityStore
	verifications VerificationStore
	publisher     EventPublisher
	limits        config.Limits
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

func NewService(
	identities IdentityStore,
	verifications VerificationStore,
	publisher EventPublisher,
	limits config.Limits,
	m *metrics.Metrics,
) *Service {
	return &Service{
		identities:    identities,
		verifications: verifications,
		publisher:     publisher,
		limits:        limits,
		metrics:       m,
		tracer:        otel.Tracer("attestry/registry"),
	}
}

// CreateOrUpdate stores a fresh identity record for the caller, replacing any
// previous one wholesale. A revoked identity is re-created active: the whole
// record is rewritten with Revoked=false. Validation happens before any
// mutation, so a failed call leaves prior state untouched.
func (s *Service) CreateOrUpdate(ctx context.Context, caller models.AccountID, name, email, documentHash []byte) error {
	ctx, span := s.tracer.Start(ctx, "registry.CreateOrUpdate",
		trace.WithAttributes(attribute.String("account.id", string(caller))))
	defer span.End()

	identity, err := models.NewIdentity(s.limits, name, email, documentHash)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid identity fields")
	}

	if err := s.identities.Save(ctx, caller, identity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "save identity")
	}

	s.emit(ctx, events.Event{Type: events.TypeIdentityCreated, Actor: string(caller)})
	if s.metrics != nil {
		s.metrics.IdentitiesCreated.Inc()
	}
	return nil
}

// Get returns the stored identity for an account.
func (s *Service) Get(ctx context.Context, accountID models.AccountID) (models.Identity, error) {
	identity, err := s.identities.Find(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Identity{}, dErrors.Wrap(models.ErrIdentityNotFound, dErrors.CodeNotFound, "identity not found")
		}
		return models.Identity{}, dErrors.Wrap(err, dErrors.CodeInternal, "find identity")
	}
	return identity, nil
}

// Verify records the caller's attestation of target. The target identity must
// exist (active or revoked both count), and the caller must not have attested
// this target before; each check fails before anything is written.
// Self-attestation is not disallowed.
func (s *Service) Verify(ctx context.Context, caller, target models.AccountID) error {
	ctx, span := s.tracer.Start(ctx, "registry.Verify",
		trace.WithAttributes(
			attribute.String("validator.id", string(caller)),
			attribute.String("owner.id", string(target)),
		))
	defer span.End()

	if _, err := s.identities.Find(ctx, target); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(models.ErrIdentityNotFound, dErrors.CodeNotFound, "identity not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "find identity")
	}

	exists, err := s.verifications.Exists(ctx, caller, target)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "check verification")
	}
	if exists {
		return dErrors.Wrap(models.ErrAlreadyVerified, dErrors.CodeConflict, "already verified")
	}

	if err := s.verifications.Insert(ctx, caller, target); err != nil {
		// The SQL backend enforces pair uniqueness as a backstop against
		// concurrent inserts between the Exists check and here.
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.Wrap(models.ErrAlreadyVerified, dErrors.CodeConflict, "already verified")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "insert verification")
	}

	s.emit(ctx, events.Event{Type: events.TypeIdentityVerified, Actor: string(caller), Subject: string(target)})
	if s.metrics != nil {
		s.metrics.IdentitiesVerified.Inc()
	}
	return nil
}

// IsVerified reports whether validator has attested owner.
func (s *Service) IsVerified(ctx context.Context, validator, owner models.AccountID) (bool, error) {
	exists, err := s.verifications.Exists(ctx, validator, owner)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "check verification")
	}
	return exists, nil
}

// Revoke soft-deletes the caller's identity: the record stays stored with
// Revoked set, and existing attestations are not retracted. Callers can only
// revoke their own identity. When no record exists the mutation is a silent
// no-op but the event still fires: consumers must read it as "a revoke was
// requested", not "a record changed".
func (s *Service) Revoke(ctx context.Context, caller models.AccountID) error {
	ctx, span := s.tracer.Start(ctx, "registry.Revoke",
		trace.WithAttributes(attribute.String("account.id", string(caller))))
	defer span.End()

	err := s.identities.Mutate(ctx, caller, func(identity *models.Identity) {
		identity.Revoked = true
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "revoke identity")
	}

	s.emit(ctx, events.Event{Type: events.TypeIdentityRevoked, Actor: string(caller)})
	if s.metrics != nil {
		s.metrics.IdentitiesRevoked.Inc()
	}
	return nil
}

// emit forwards the event; a sink failure must not fail an operation whose
// state change already happened.
func (s *Service) emit(ctx context.Context, event events.Event) {
	_ = s.publisher.Emit(ctx, event)
}
