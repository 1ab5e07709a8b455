package core

import "errors"

var (
	// ErrOutOfRange is returned for an unknown category or a month index
	// outside [0, 12).
	ErrOutOfRange = errors.New("out of range")

	// ErrNonFinite is returned when a NaN or infinite value would be stored.
	ErrNonFinite = errors.New("non-finite value")

	// ErrMissingTarget is returned by persistence collaborators when the named
	// document does not exist.
	ErrMissingTarget = errors.New("target not found")

	ErrUnknownGroup      = errors.New("unknown category group")
	ErrEmptyCategory     = errors.New("empty category id")
	ErrDuplicateCategory = errors.New("duplicate category id")
)
