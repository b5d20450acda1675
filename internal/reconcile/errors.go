package reconcile

import "errors"

var (
	// ErrValueNotFound is returned when matching sensors exist but none has a value.
	ErrValueNotFound = errors.New("reconcile: value not found")

	// ErrInvalidSetting is returned when a reconciliation setting cannot be parsed.
	ErrInvalidSetting = errors.New("reconcile: invalid setting")

	// ErrInvalidRange is returned when a window's start is after its end.
	ErrInvalidRange = errors.New("reconcile: start is after end")

	// ErrNoWeatherSource is returned by weather differentials when the
	// service was built without an outdoor temperature source.
	ErrNoWeatherSource = errors.New("reconcile: no weather source configured")
)
