package domain

import "errors"

// Shared sentinel errors. Entity-specific sentinels live next to their types.
var (
	// ErrNotFound is returned when a requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller is not allowed to act on the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput is returned when a request fails domain-level validation.
	ErrInvalidInput = errors.New("invalid input")
)
