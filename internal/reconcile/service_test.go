package reconcile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/smarthome-core/internal/functionality"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// countingInstantStore counts FindMostRecent calls on top of a real store.
type countingInstantStore struct {
	*value.SQLiteInstantStore
	mostRecent int
}

func (c *countingInstantStore) FindMostRecent(ctx context.Context, id sensor.ID) (*value.InstantValue, error) {
	c.mostRecent++
	return c.SQLiteInstantStore.FindMostRecent(ctx, id)
}

type countingLocatedStore struct {
	*value.SQLiteInstantLocationStore
	mostRecent int
}

func (c *countingLocatedStore) FindMostRecent(ctx context.Context, id sensor.ID) (*value.InstantLocationValue, error) {
	c.mostRecent++
	return c.SQLiteInstantLocationStore.FindMostRecent(ctx, id)
}

func TestNew_FetcherForEveryAggregation(t *testing.T) {
	f := newFixture(t)
	table, err := functionality.FromConfig(config.DefaultFunctionalities())
	require.NoError(t, err)

	for _, id := range table.IDs() {
		agg, err := table.ResolveAggregation(id)
		require.NoError(t, err)
		assert.Contains(t, f.svc.fetchers, agg, "functionality %s", id)
	}
	assert.Len(t, f.svc.fetchers, 3)
}

func TestLastMeasurement_SensorNotFoundSkipsStores(t *testing.T) {
	f := newFixture(t)
	f.device("dev-thermo", "Thermostat")
	f.sensor("s-temp", "dev-thermo", sensor.TemperatureCelsius)
	f.instantValue("t1", "s-temp", "19.0", "°C", at(9, 0))

	instant := &countingInstantStore{SQLiteInstantStore: f.instant}
	located := &countingLocatedStore{SQLiteInstantLocationStore: f.located}
	svc, err := New(Deps{
		Sensors:  f.dir,
		Table:    f.svc.table,
		Stores:   value.Stores{Instant: instant, Interval: f.interv, InstantLocation: located},
		Settings: defaultSettings(),
	})
	require.NoError(t, err)

	tests := []struct {
		name   string
		device sensor.DeviceID
		fn     sensor.FunctionalityID
	}{
		{"functionality without sensor", "dev-thermo", "HumidityPercentage"},
		{"unknown device", "dev-missing", sensor.TemperatureCelsius},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LastMeasurement(f.ctx, tt.device, tt.fn)
			assert.ErrorIs(t, err, sensor.ErrSensorNotFound)
			assert.Zero(t, instant.mostRecent)
			assert.Zero(t, located.mostRecent)
		})
	}

	got, err := svc.LastMeasurement(f.ctx, "dev-thermo", sensor.TemperatureCelsius)
	require.NoError(t, err)
	assert.Equal(t, "19.0", got)
	assert.Equal(t, 1, instant.mostRecent)
	assert.Zero(t, located.mostRecent, "instant store answered first")
}
