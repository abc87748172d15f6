// Package models defines the shared counter's errors. The counter is an
// independent piece of state living alongside the identity registry; it has
// no interaction with identities beyond sharing the storage namespace.
package models

import "errors"

var (
	// ErrValueExceedsMax rejects values above the configured maximum.
	ErrValueExceedsMax = errors.New("counter value exceeds the maximum allowed value")
	// ErrValueBelowZero rejects decrements past zero.
	ErrValueBelowZero = errors.New("counter value cannot be decremented below zero")
	// ErrValueOverflow rejects increments that wrap the 32-bit value.
	ErrValueOverflow = errors.New("overflow in counter value")
	// ErrInteractionOverflow rejects operations once an account's
	// interaction count would wrap.
	ErrInteractionOverflow = errors.New("overflow in user interactions")
)
