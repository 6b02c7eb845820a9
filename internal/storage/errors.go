package storage

import "errors"

var (
	// ErrRunNotFound is returned when no run has the requested id.
	ErrRunNotFound = errors.New("storage: run not found")

	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("storage: unknown backend")
)
