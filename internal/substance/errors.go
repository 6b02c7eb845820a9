package substance

import "errors"

var (
	// ErrUnknownSubstance is returned when a name matches no catalog entry.
	ErrUnknownSubstance = errors.New("substance: unknown substance")

	// ErrDuplicate is returned when two entries share a name.
	ErrDuplicate = errors.New("substance: duplicate name")
)
