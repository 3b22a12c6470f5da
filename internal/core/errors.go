package core

import "errors"

// Sentinel errors for the error taxonomy. Services wrap these with
// fmt.Errorf("...: %w", Err...) so adapters can map them to HTTP statuses
// with errors.Is.
var (
	// ErrValidation marks input rejected before any write.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a referenced record missing at processing time.
	ErrNotFound = errors.New("not found")

	// ErrConflict marks a uniqueness violation. Callers retry numbering
	// allocation, or treat it as a successful dedup for transactions.
	ErrConflict = errors.New("conflict")

	// ErrInvalidTransition marks a rejected status transition.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrExternal marks an unavailable or failing external collaborator.
	ErrExternal = errors.New("external service error")
)
