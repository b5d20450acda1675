package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Message is the JSON payload of a sensor value message.
type Message struct {
	ID            string      `json:"id,omitempty"`
	SensorID      string      `json:"sensor_id"`
	DeviceID      string      `json:"device_id,omitempty"`
	Functionality string      `json:"functionality,omitempty"`
	Measurement   Measurement `json:"measurement"`
	Unit          string      `json:"unit,omitempty"`

	Instant *time.Time `json:"instant,omitempty"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// Measurement is a measurement sent either as a JSON string or a number.
type Measurement string

// UnmarshalJSON accepts "21.5", 21.5 and true/false.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Measurement(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*m = Measurement(n.String())
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*m = Measurement(strconv.FormatBool(b))
		return nil
	}

	return fmt.Errorf("measurement must be a string, number or boolean, got %s", data)
}

// decode parses payload into a Message.
func decode(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return msg, nil
}
