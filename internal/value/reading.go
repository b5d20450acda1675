package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// UnitNone marks a unitless measurement such as ON/OFF.
	UnitNone = "*"

	partSeparator = ";"
	partJoiner    = " and "
)

// Reading is an immutable measurement with its unit.
type Reading struct {
	measurement string
	unit        string
}

// NewReading returns a Reading, rejecting blank measurement or unit.
func NewReading(measurement, unit string) (Reading, error) {
	if strings.TrimSpace(measurement) == "" {
		return Reading{}, fmt.Errorf("%w: measurement is blank", ErrInvalidReading)
	}
	if strings.TrimSpace(unit) == "" {
		return Reading{}, fmt.Errorf("%w: unit is blank", ErrInvalidReading)
	}
	return Reading{measurement: measurement, unit: unit}, nil
}

// MustReading is NewReading for literals known to be valid. It panics otherwise.
func MustReading(measurement, unit string) Reading {
	r, err := NewReading(measurement, unit)
	if err != nil {
		panic(err)
	}
	return r
}

// Measurement returns the raw measurement string.
func (r Reading) Measurement() string { return r.measurement }

// Unit returns the raw unit string.
func (r Reading) Unit() string { return r.unit }

// IsZero reports whether r is the zero Reading.
func (r Reading) IsZero() bool { return r.measurement == "" && r.unit == "" }

// Float parses the measurement as a finite float64. NaN and infinities are
// rejected with ErrNonNumeric.
func (r Reading) Float() (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(r.measurement), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %q", ErrNonNumeric, r.measurement)
	}
	return f, nil
}

// String renders the reading for display.
//
// A single part renders as "<measurement> <unit>", or the bare measurement
// when the unit is "*". Multi-part readings pair each measurement with the
// unit at the same position and join the parts with " and ". A single unit
// applies to every part.
func (r Reading) String() string {
	if !strings.Contains(r.measurement, partSeparator) && !strings.Contains(r.unit, partSeparator) {
		return renderPart(r.measurement, r.unit)
	}

	values := strings.Split(r.measurement, partSeparator)
	units := strings.Split(r.unit, partSeparator)

	parts := make([]string, len(values))
	for i, v := range values {
		switch {
		case len(units) == 1:
			parts[i] = renderPart(v, r.unit)
		case i < len(units):
			parts[i] = renderPart(v, units[i])
		default:
			parts[i] = v
		}
	}
	return strings.Join(parts, partJoiner)
}

func renderPart(measurement, unit string) string {
	if unit == UnitNone {
		return measurement
	}
	return measurement + " " + unit
}

type readingJSON struct {
	Measurement string `json:"measurement"`
	Unit        string `json:"unit"`
}

// MarshalJSON encodes the reading as {"measurement": ..., "unit": ...}.
func (r Reading) MarshalJSON() ([]byte, error) {
	return json.Marshal(readingJSON{Measurement: r.measurement, Unit: r.unit})
}

// UnmarshalJSON decodes and validates a reading.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw readingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewReading(raw.Measurement, raw.Unit)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
