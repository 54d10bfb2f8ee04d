// Package common defines shared sentinel errors and small utility helpers
// used across the privacy core. Callers should use errors.Is to match the
// sentinel values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (user creation).
	ErrInvalidRole       = errors.New("invalid role")
	ErrDuplicateUsername = errors.New("username already exists")
	ErrValidation        = errors.New("validation error")

	// Field privacy errors.
	ErrDecryptionFailed = errors.New("decryption failed")

	// Authentication: the same value is returned for an unknown username and
	// a wrong password so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Access guard denials.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInsufficientRole = errors.New("insufficient role")

	// ErrStorage wraps storage failures on operations that must not fail
	// silently (user creation, password change, retention sweep).
	ErrStorage = errors.New("storage error")
)
