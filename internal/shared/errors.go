package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates malformed or incomplete input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a business rule rejected the operation.
	ErrConflict = errors.New("rejected")
	// ErrUnauthorized indicates a missing or wrong API key.
	ErrUnauthorized = errors.New("unauthorized")
)
