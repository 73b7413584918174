package repo

import "errors"

var (
	// ErrNotFound is returned for operations on a nonexistent id. The
	// store is left untouched.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned when caller-supplied data violates a
	// required-field or reference constraint, before any mutation.
	ErrInvalidInput = errors.New("invalid input")
)
