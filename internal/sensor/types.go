package sensor

import (
	"fmt"
	"strings"
)

// ID identifies a sensor.
type ID string

// DeviceID identifies a device.
type DeviceID string

// FunctionalityID names what a sensor measures. It is the key of the
// functionality routing table.
type FunctionalityID string

// Well-known functionality IDs used by reconciliation.
const (
	TemperatureCelsius           FunctionalityID = "TemperatureCelsius"
	PowerAverage                 FunctionalityID = "PowerAverage"
	SpecificTimePowerConsumption FunctionalityID = "SpecificTimePowerConsumption"
)

// Device is a physical appliance carrying one or more sensors.
type Device struct {
	ID      DeviceID `json:"id"`
	HouseID string   `json:"house_id,omitempty"`
	Name    string   `json:"name"`
}

// Sensor is a single measuring element on a device.
type Sensor struct {
	ID              ID              `json:"id"`
	DeviceID        DeviceID        `json:"device_id"`
	FunctionalityID FunctionalityID `json:"functionality_id"`
	Name            string          `json:"name,omitempty"`
}

// Validate checks the required identity fields.
func (s *Sensor) Validate() error {
	switch {
	case strings.TrimSpace(string(s.ID)) == "":
		return fmt.Errorf("%w: id is required", ErrInvalidSensor)
	case strings.TrimSpace(string(s.DeviceID)) == "":
		return fmt.Errorf("%w: device_id is required", ErrInvalidSensor)
	case strings.TrimSpace(string(s.FunctionalityID)) == "":
		return fmt.Errorf("%w: functionality_id is required", ErrInvalidSensor)
	}
	return nil
}

// Validate checks the required device fields.
func (d *Device) Validate() error {
	if strings.TrimSpace(string(d.ID)) == "" {
		return fmt.Errorf("%w: device id is required", ErrInvalidSensor)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: device name is required", ErrInvalidSensor)
	}
	return nil
}
