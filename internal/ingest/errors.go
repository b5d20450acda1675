package ingest

import "errors"

var (
	// ErrInvalidMessage is returned for a payload that cannot become a value.
	ErrInvalidMessage = errors.New("ingest: invalid message")

	// ErrUnknownSensor is returned when the sensor is unknown and the
	// message does not carry enough to register it.
	ErrUnknownSensor = errors.New("ingest: unknown sensor")
)
