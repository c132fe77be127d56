package domain

import "errors"

// Domain error taxonomy. Services return these (usually wrapped with
// context via fmt.Errorf and %w); handlers map them to HTTP statuses
// with errors.Is.
var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	ErrAnonymous  = errors.New("no valid session")

	// ErrStorage wraps transient storage failures that survived the
	// repository-level retry.
	ErrStorage = errors.New("storage failure")
)
