package domain

import "errors"

var (
	// ErrNotFound marks operations on a missing appointment, series or
	// reference entity. Deleting something that is already gone is a
	// no-op for the caller, not a fatal condition.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a versioned save observes a stale
	// version, turning silent last-write-wins into a detectable
	// conflict the caller can surface.
	ErrConflict = errors.New("version conflict")
)
