package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nerrad567/smarthome-core/internal/functionality"
	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database/databasetest"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/metrics"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

func at(hh, mm int) time.Time {
	return time.Date(2026, 3, 1, hh, mm, 0, 0, time.UTC)
}

// fakeOutdoor serves fixed temperatures per hour and counts lookups.
type fakeOutdoor struct {
	temps map[int]float64
	calls map[int]int
	err   error
}

func newFakeOutdoor(temps map[int]float64) *fakeOutdoor {
	return &fakeOutdoor{temps: temps, calls: make(map[int]int)}
}

func (f *fakeOutdoor) TemperatureForHour(_ context.Context, hour int) (float64, error) {
	f.calls[hour]++
	if f.err != nil {
		return 0, f.err
	}
	t, ok := f.temps[hour]
	if !ok {
		return 0, errors.New("no temperature for hour")
	}
	return t, nil
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	dir     *sensor.SQLiteDirectory
	stores  value.Stores
	instant *value.SQLiteInstantStore
	interv  *value.SQLiteIntervalStore
	located *value.SQLiteInstantLocationStore
	outdoor *fakeOutdoor
	metrics *metrics.Metrics
	svc     *Service
}

func defaultSettings() Settings {
	return Settings{
		GridMeterDevice:  "Grid Power Meter",
		GridMeterCadence: 15 * time.Minute,
		Tolerance:        5 * time.Minute,
		Location:         time.UTC,
	}
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, defaultSettings())
}

func newFixtureWith(t *testing.T, settings Settings) *fixture {
	t.Helper()

	db := databasetest.Open(t)
	f := &fixture{
		t:       t,
		ctx:     context.Background(),
		dir:     sensor.NewSQLiteDirectory(db.DB),
		instant: value.NewSQLiteInstantStore(db.DB),
		interv:  value.NewSQLiteIntervalStore(db.DB),
		located: value.NewSQLiteInstantLocationStore(db.DB),
		outdoor: newFakeOutdoor(nil),
		metrics: metrics.New(),
	}
	f.stores = value.Stores{Instant: f.instant, Interval: f.interv, InstantLocation: f.located}

	table, err := functionality.FromConfig(config.DefaultFunctionalities())
	require.NoError(t, err)

	f.svc, err = New(Deps{
		Sensors:  f.dir,
		Table:    table,
		Stores:   f.stores,
		Settings: settings,
		Outdoor:  f.outdoor,
		Metrics:  f.metrics,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) device(id sensor.DeviceID, name string) {
	f.t.Helper()
	require.NoError(f.t, f.dir.SaveDevice(f.ctx, &sensor.Device{ID: id, Name: name}))
}

func (f *fixture) sensor(id sensor.ID, dev sensor.DeviceID, fn sensor.FunctionalityID) {
	f.t.Helper()
	require.NoError(f.t, f.dir.SaveSensor(f.ctx, &sensor.Sensor{ID: id, DeviceID: dev, FunctionalityID: fn}))
}

func (f *fixture) instantValue(id string, sn sensor.ID, measurement, unit string, ts time.Time) {
	f.t.Helper()
	v, err := value.NewInstantValue(id, sn, value.MustReading(measurement, unit), ts)
	require.NoError(f.t, err)
	require.NoError(f.t, f.instant.Save(f.ctx, v))
}

func (f *fixture) intervalValue(id string, sn sensor.ID, measurement, unit string, start, end time.Time) {
	f.t.Helper()
	v, err := value.NewIntervalValue(id, sn, value.MustReading(measurement, unit), start, end)
	require.NoError(f.t, err)
	require.NoError(f.t, f.interv.Save(f.ctx, v))
}

func (f *fixture) locatedValue(id string, sn sensor.ID, measurement, unit string, ts time.Time) {
	f.t.Helper()
	loc, err := geo.NewCoordinate(50.85, 4.35)
	require.NoError(f.t, err)
	v, err := value.NewInstantLocationValue(id, sn, value.MustReading(measurement, unit), ts, loc)
	require.NoError(f.t, err)
	require.NoError(f.t, f.located.Save(f.ctx, v))
}
