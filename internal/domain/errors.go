package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Existence is always checked before ownership, so callers see 404 before 403.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the resource exists but belongs to another owner.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict covers uniqueness and referential-integrity violations.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput covers request validation and business-rule violations on input.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials hides whether email or password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	ErrAccountLocked = errors.New("account temporarily locked")
)
