package house

import "errors"

var (
	// ErrNoHouseConfigured is returned when no house exists at all.
	ErrNoHouseConfigured = errors.New("house: no house configured")

	// ErrNoLocation is returned when a house has no location to look up.
	ErrNoLocation = errors.New("house: house has no location")

	// ErrInvalidHouse is returned when a house fails validation.
	ErrInvalidHouse = errors.New("house: invalid")
)
