package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// powerFixture sets up a grid meter with two 15 minute intervals and two
// source devices.
func powerFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	f.device("dev-grid", "Grid Power Meter")
	f.device("dev-solar", "Solar Inverter")
	f.device("dev-washer", "Washing Machine")
	f.sensor("s-grid", "dev-grid", sensor.PowerAverage)
	f.sensor("s-solar", "dev-solar", sensor.SpecificTimePowerConsumption)
	f.sensor("s-washer", "dev-washer", sensor.SpecificTimePowerConsumption)

	f.intervalValue("g1", "s-grid", "50", "W", at(12, 15), at(12, 30))
	f.intervalValue("g2", "s-grid", "60", "W", at(12, 30), at(12, 45))
	return f
}

func TestPeakPowerConsumption(t *testing.T) {
	f := powerFixture(t)
	f.instantValue("p1", "s-solar", "10", "W", at(12, 16))
	f.instantValue("p2", "s-washer", "20", "W", at(12, 21))
	f.instantValue("p3", "s-solar", "30", "W", at(12, 35))
	f.instantValue("p4", "s-washer", "40", "W", at(12, 55))

	got, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 50))
	require.NoError(t, err)
	assert.Equal(t, 90.0, got)
}

func TestPeakPowerConsumption_IgnoresGridIntervalEndingAfterWindow(t *testing.T) {
	f := powerFixture(t)
	f.intervalValue("g3", "s-grid", "100", "W", at(12, 45), at(13, 0))
	f.instantValue("p1", "s-solar", "10", "W", at(12, 16))
	f.instantValue("p2", "s-washer", "20", "W", at(12, 21))
	f.instantValue("p3", "s-solar", "30", "W", at(12, 35))
	f.instantValue("p4", "s-washer", "40", "W", at(12, 55))

	got, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 50))
	require.NoError(t, err)
	assert.Equal(t, 90.0, got)

	got, err = f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(13, 0))
	require.NoError(t, err)
	assert.Equal(t, 140.0, got, "g3 counts once the window covers it")
}

func TestPeakPowerConsumption_Idempotent(t *testing.T) {
	f := powerFixture(t)
	f.instantValue("p1", "s-solar", "10", "W", at(12, 16))
	f.instantValue("p3", "s-solar", "30", "W", at(12, 35))

	first, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 50))
	require.NoError(t, err)
	second, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 50))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 90.0, second)
}

func TestPeakPowerConsumption_SingleBucketSum(t *testing.T) {
	f := powerFixture(t)
	f.instantValue("p1", "s-solar", "35", "W", at(12, 20))
	f.instantValue("p2", "s-washer", "25", "W", at(12, 30))

	got, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 50))
	require.NoError(t, err)
	assert.Equal(t, 110.0, got)
}

func TestPeakPowerConsumption_DeduplicatesPerDevice(t *testing.T) {
	f := powerFixture(t)
	f.sensor("s-solar-2", "dev-solar", sensor.SpecificTimePowerConsumption)
	f.instantValue("p1", "s-solar", "10", "W", at(12, 20))
	f.instantValue("p2", "s-solar-2", "15", "W", at(12, 20))
	f.instantValue("p3", "s-washer", "5", "W", at(12, 20))

	got, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 50))
	require.NoError(t, err)
	// 50 + 15 (solar, last wins) + 5 (washer)
	assert.Equal(t, 70.0, got)
}

func TestPeakPowerConsumption_IgnoresGridDeviceAndStaleSamples(t *testing.T) {
	f := newFixtureWith(t, Settings{
		GridMeterDevice:  "dev-grid",
		GridMeterCadence: 5 * time.Minute,
		Tolerance:        time.Minute,
		Location:         time.UTC,
	})
	f.device("dev-grid", "Main Meter")
	f.device("dev-solar", "Solar Inverter")
	f.sensor("s-grid", "dev-grid", sensor.PowerAverage)
	f.sensor("s-grid-spot", "dev-grid", sensor.SpecificTimePowerConsumption)
	f.sensor("s-solar", "dev-solar", sensor.SpecificTimePowerConsumption)
	f.intervalValue("g1", "s-grid", "50", "W", at(12, 15), at(12, 30))

	f.instantValue("own", "s-grid-spot", "1000", "W", at(12, 29))
	f.instantValue("stale", "s-solar", "500", "W", at(12, 20))
	f.instantValue("fresh", "s-solar", "7", "W", at(12, 26))

	got, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 30))
	require.NoError(t, err)
	assert.Equal(t, 57.0, got)
}

func TestPeakPowerConsumption_NoGridValues(t *testing.T) {
	f := powerFixture(t)

	got, err := f.svc.PeakPowerConsumption(f.ctx, at(18, 0), at(19, 0))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestPeakPowerConsumption_Errors(t *testing.T) {
	t.Run("grid device missing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 0), at(13, 0))
		assert.ErrorIs(t, err, sensor.ErrDeviceNotFound)
	})

	t.Run("grid sensor missing", func(t *testing.T) {
		f := newFixture(t)
		f.device("dev-grid", "Grid Power Meter")
		_, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 0), at(13, 0))
		assert.ErrorIs(t, err, sensor.ErrSensorNotFound)
	})

	t.Run("non-numeric source", func(t *testing.T) {
		f := powerFixture(t)
		f.instantValue("bad", "s-solar", "lots", "W", at(12, 20))
		_, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(12, 50))
		assert.ErrorIs(t, err, value.ErrNonNumeric)
	})

	t.Run("NaN grid reading", func(t *testing.T) {
		f := powerFixture(t)
		f.intervalValue("g-nan", "s-grid", "NaN", "W", at(12, 45), at(13, 0))
		_, err := f.svc.PeakPowerConsumption(f.ctx, at(12, 15), at(13, 0))
		assert.ErrorIs(t, err, value.ErrNonNumeric)
	})

	t.Run("inverted range", func(t *testing.T) {
		f := powerFixture(t)
		_, err := f.svc.PeakPowerConsumption(f.ctx, at(13, 0), at(12, 0))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})
}

func TestAttribute(t *testing.T) {
	grid := []sample{{at: at(12, 45), measure: 60}, {at: at(12, 30), measure: 50}}
	sources := []sample{
		{at: at(12, 14), measure: 1}, // older than one cadence before 12:30
		{at: at(12, 15), measure: 2},
		{at: at(12, 30), measure: 3},
		{at: at(12, 31), measure: 4},
		{at: at(12, 46), measure: 5}, // after the last boundary
	}

	got, dropped := attribute(grid, sources, 15*time.Minute)
	assert.Equal(t, 2, dropped)
	assert.Equal(t, []float64{2, 3}, got[at(12, 30).UnixNano()])
	assert.Equal(t, []float64{4}, got[at(12, 45).UnixNano()])
}
