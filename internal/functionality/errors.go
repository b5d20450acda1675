package functionality

import "errors"

var (
	// ErrUnknownFunctionality is returned for an ID that was never registered.
	ErrUnknownFunctionality = errors.New("functionality: unknown functionality")

	// ErrInvalidTable is returned when the routing table cannot be built.
	ErrInvalidTable = errors.New("functionality: invalid routing table")
)
