package value

import "errors"

var (
	// ErrInvalidReading is returned when a measurement or unit is blank.
	ErrInvalidReading = errors.New("value: invalid reading")

	// ErrInvalidValue is returned when a value fails construction checks.
	ErrInvalidValue = errors.New("value: invalid value")

	// ErrNonNumeric is returned when a measurement cannot be read as a number.
	ErrNonNumeric = errors.New("value: measurement is not numeric")

	// ErrUnknownKind is returned when a variant name is not recognised.
	ErrUnknownKind = errors.New("value: unknown variant")
)
