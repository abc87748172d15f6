package models

import (
	"errors"

	"attestry/internal/platform/config"
)

// AccountID is the opaque authenticated caller identity supplied by the
// external runtime. The registry never mints or validates these itself.
type AccountID string

// Field-length violations. One sentinel per field: callers need to know which
// field overflowed, so these are never collapsed into a generic error.
var (
	ErrNameTooLong    = errors.New("name exceeds maximum length")
	ErrEmailTooLong   = errors.New("email exceeds maximum length")
	ErrDocHashTooLong = errors.New("document hash exceeds maximum length")
)

// Relational-state violations raised by the registry service.
var (
	ErrIdentityNotFound = errors.New("identity not found")
	ErrAlreadyVerified  = errors.New("identity already verified by this validator")
)

// Identity is a self-asserted identity claim for one account. Fields are raw
// bytes bounded by the configured limits; the document hash is opaque and not
// checked against any algorithm. Revocation is a soft delete: the record
// stays stored with Revoked set.
type Identity struct {
	Name         []byte
	Email        []byte
	DocumentHash []byte
	Revoked      bool
}

// NewIdentity bound-checks all three fields and builds an active record.
// Checks fail fast in field order so the first violation is the one reported.
func NewIdentity(limits config.Limits, name, email, documentHash []byte) (Identity, error) {
	if len(name) > limits.MaxNameLength {
		return Identity{}, ErrNameTooLong
	}
	if len(email) > limits.MaxEmailLength {
		return Identity{}, ErrEmailTooLong
	}
	if len(documentHash) > limits.MaxDocHashLength {
		return Identity{}, ErrDocHashTooLong
	}
	return Identity{
		Name:         name,
		Email:        email,
		DocumentHash: documentHash,
		Revoked:      false,
	}, nil
}
