package value

import (
	"context"
	"time"

	"github.com/nerrad567/smarthome-core/internal/sensor"
)

// Range queries are inclusive on both ends. Results are ordered by timestamp,
// then value ID, so callers see a stable order.
//
// FindMostRecent returns (nil, nil) when the sensor has no values.

// InstantStore reads instant values.
type InstantStore interface {
	FindBySensor(ctx context.Context, sensorID sensor.ID) ([]*InstantValue, error)
	FindBySensorBetween(ctx context.Context, sensorID sensor.ID, start, end time.Time) ([]*InstantValue, error)
	FindMostRecent(ctx context.Context, sensorID sensor.ID) (*InstantValue, error)
}

// IntervalStore reads interval values. FindBySensorBetween returns only
// intervals that lie wholly inside [start, end], so an interval that begins
// before start or finishes after end is left out.
type IntervalStore interface {
	FindBySensor(ctx context.Context, sensorID sensor.ID) ([]*IntervalValue, error)
	FindBySensorBetween(ctx context.Context, sensorID sensor.ID, start, end time.Time) ([]*IntervalValue, error)
	FindMostRecent(ctx context.Context, sensorID sensor.ID) (*IntervalValue, error)
}

// InstantLocationStore reads instant-with-location values.
type InstantLocationStore interface {
	FindBySensor(ctx context.Context, sensorID sensor.ID) ([]*InstantLocationValue, error)
	FindBySensorBetween(ctx context.Context, sensorID sensor.ID, start, end time.Time) ([]*InstantLocationValue, error)
	FindMostRecent(ctx context.Context, sensorID sensor.ID) (*InstantLocationValue, error)
}

// Writer persists values of one variant. Saving a value whose ID already
// exists overwrites it.
type Writer[V Value] interface {
	Save(ctx context.Context, v V) error
}

// Stores bundles the three variant stores.
type Stores struct {
	Instant         InstantStore
	Interval        IntervalStore
	InstantLocation InstantLocationStore
}
