package sensor

import "errors"

var (
	// ErrSensorNotFound is returned when no sensor matches the lookup.
	ErrSensorNotFound = errors.New("sensor: not found")

	// ErrDeviceNotFound is returned when a device ID or name is unknown.
	ErrDeviceNotFound = errors.New("sensor: device not found")

	// ErrInvalidSensor is returned when a sensor or device fails validation.
	ErrInvalidSensor = errors.New("sensor: invalid")
)
