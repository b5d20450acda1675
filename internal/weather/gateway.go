package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nerrad567/smarthome-core/internal/geo"
)

// Reading is the payload returned by every weather service endpoint.
type Reading struct {
	Measurement float64 `json:"measurement"`
	Unit        string  `json:"unit"`
	Label       string  `json:"label"`
}

// UnmarshalJSON accepts "info" as an alias for "label".
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw struct {
		Measurement *float64 `json:"measurement"`
		Unit        string   `json:"unit"`
		Label       string   `json:"label"`
		Info        string   `json:"info"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Measurement == nil {
		return fmt.Errorf("measurement is missing")
	}
	r.Measurement = *raw.Measurement
	r.Unit = raw.Unit
	r.Label = raw.Label
	if r.Label == "" {
		r.Label = raw.Info
	}
	return nil
}

// Event is a named solar event.
type Event string

// Solar events understood by the weather service.
const (
	Sunrise Event = "sunrise"
	Sunset  Event = "sunset"
)

// ParseEvent validates a solar event name. Matching is case-insensitive.
func ParseEvent(s string) (Event, error) {
	switch e := Event(strings.ToLower(strings.TrimSpace(s))); e {
	case Sunrise, Sunset:
		return e, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidEvent, s)
	}
}

// Gateway is the external weather service contract.
type Gateway interface {
	InstantaneousTemperature(ctx context.Context, group string, at geo.Coordinate, hour int) (Reading, error)
	SunriseSunset(ctx context.Context, group string, at geo.Coordinate, event Event) (Reading, error)
	InstantaneousWind(ctx context.Context, group string, at geo.Coordinate, hour int) (Reading, error)
	MaximumWind(ctx context.Context, group string, at geo.Coordinate, startHour, endHour int) (Reading, error)
}
