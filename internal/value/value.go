package value

import (
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/sensor"
)

// Kind is the temporal shape a value is recorded under.
type Kind int

// Value kinds. The zero Kind is invalid.
const (
	KindInstant Kind = iota + 1
	KindInterval
	KindInstantLocation
)

var kindNames = map[Kind]string{
	KindInstant:         "instant",
	KindInterval:        "interval",
	KindInstantLocation: "instant_location",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts a configured variant name into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Value is one recorded reading of one sensor. The set of implementations is
// closed: *InstantValue, *IntervalValue and *InstantLocationValue.
type Value interface {
	ID() string
	SensorID() sensor.ID
	Reading() Reading
	Kind() Kind

	// Timestamp is the instant the reading refers to; the end for intervals.
	Timestamp() time.Time

	sealed()
}

type base struct {
	id       string
	sensorID sensor.ID
	reading  Reading
}

func newBase(id string, sensorID sensor.ID, r Reading) (base, error) {
	switch {
	case strings.TrimSpace(id) == "":
		return base{}, fmt.Errorf("%w: id is required", ErrInvalidValue)
	case strings.TrimSpace(string(sensorID)) == "":
		return base{}, fmt.Errorf("%w: sensor id is required", ErrInvalidValue)
	case r.IsZero():
		return base{}, fmt.Errorf("%w: reading is required", ErrInvalidValue)
	}
	return base{id: id, sensorID: sensorID, reading: r}, nil
}

func (b base) ID() string          { return b.id }
func (b base) SensorID() sensor.ID { return b.sensorID }
func (b base) Reading() Reading    { return b.reading }
func (b base) sealed()             {}

// InstantValue is a reading taken at a single instant.
type InstantValue struct {
	base
	at time.Time
}

// NewInstantValue builds an InstantValue.
func NewInstantValue(id string, sensorID sensor.ID, r Reading, at time.Time) (*InstantValue, error) {
	b, err := newBase(id, sensorID, r)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, fmt.Errorf("%w: instant is required", ErrInvalidValue)
	}
	return &InstantValue{base: b, at: at}, nil
}

func (v *InstantValue) Kind() Kind           { return KindInstant }
func (v *InstantValue) Timestamp() time.Time { return v.at }

// IntervalValue is a reading that covers [Start, End].
type IntervalValue struct {
	base
	start time.Time
	end   time.Time
}

// NewIntervalValue builds an IntervalValue, rejecting start after end.
func NewIntervalValue(id string, sensorID sensor.ID, r Reading, start, end time.Time) (*IntervalValue, error) {
	b, err := newBase(id, sensorID, r)
	if err != nil {
		return nil, err
	}
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", ErrInvalidValue)
	}
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidValue,
			start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return &IntervalValue{base: b, start: start, end: end}, nil
}

func (v *IntervalValue) Kind() Kind           { return KindInterval }
func (v *IntervalValue) Timestamp() time.Time { return v.end }

// Start returns the beginning of the interval.
func (v *IntervalValue) Start() time.Time { return v.start }

// End returns the end of the interval.
func (v *IntervalValue) End() time.Time { return v.end }

// InstantLocationValue is a reading taken at an instant and a place.
type InstantLocationValue struct {
	base
	at       time.Time
	location geo.Coordinate
}

// NewInstantLocationValue builds an InstantLocationValue.
func NewInstantLocationValue(id string, sensorID sensor.ID, r Reading, at time.Time, loc geo.Coordinate) (*InstantLocationValue, error) {
	b, err := newBase(id, sensorID, r)
	if err != nil {
		return nil, err
	}
	if at.IsZero() {
		return nil, fmt.Errorf("%w: instant is required", ErrInvalidValue)
	}
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	return &InstantLocationValue{base: b, at: at, location: loc}, nil
}

func (v *InstantLocationValue) Kind() Kind           { return KindInstantLocation }
func (v *InstantLocationValue) Timestamp() time.Time { return v.at }

// Location returns where the reading was taken.
func (v *InstantLocationValue) Location() geo.Coordinate { return v.location }
