package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a domain event emitted by the registry or counter services.
type Type string

const (
	// Identity events
	TypeIdentityCreated  Type = "identity_created"
	TypeIdentityVerified Type = "identity_verified"
	TypeIdentityRevoked  Type = "identity_revoked"

	// Counter events
	TypeCounterValueSet    Type = "counter_value_set"
	TypeCounterIncremented Type = "counter_incremented"
	TypeCounterDecremented Type = "counter_decremented"
)

// Event is emitted from domain logic as the observable side effect of a
// successful operation. Keep it transport-agnostic so stores and sinks can
// fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	// Actor is the authenticated account that performed the operation.
	Actor string `json:"actor"`
	// Subject is the account acted upon, when different from Actor
	// (the identity owner for identity_verified).
	Subject string `json:"subject,omitempty"`

	// Counter events carry the resulting value and, for increments and
	// decrements, the applied delta.
	Value  uint32 `json:"value,omitempty"`
	Amount uint32 `json:"amount,omitempty"`
}
