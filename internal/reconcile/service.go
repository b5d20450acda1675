package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/functionality"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/metrics"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// NoComparableData is returned by temperature differentials when no pair of
// readings matched within tolerance.
const NoComparableData = -1.0

// Operation names used for metrics and logs.
const (
	opMeasurements       = "device_measurements"
	opLastMeasurement    = "last_measurement"
	opPeakPower          = "peak_power"
	opTemperatureDiff    = "temperature_difference"
	opWeatherTemperature = "temperature_difference_weather"
)

// OutdoorTemperature supplies the outdoor temperature for a local hour (0-23).
type OutdoorTemperature interface {
	TemperatureForHour(ctx context.Context, hour int) (float64, error)
}

// Deps holds the collaborators of a Service.
type Deps struct {
	Sensors  sensor.Directory
	Table    *functionality.Table
	Stores   value.Stores
	Settings Settings

	// Outdoor is optional; without it weather differentials fail with ErrNoWeatherSource.
	Outdoor OutdoorTemperature

	Logger  *logging.Logger
	Metrics *metrics.Metrics
}

// rangeFetcher lists one sensor's values within [start, end] as Values.
type rangeFetcher func(ctx context.Context, id sensor.ID, start, end time.Time) ([]value.Value, error)

// Service is the value reconciliation orchestrator. It holds no mutable
// state and is safe for concurrent use.
type Service struct {
	sensors  sensor.Directory
	table    *functionality.Table
	stores   value.Stores
	outdoor  OutdoorTemperature
	settings Settings
	fetchers map[functionality.Aggregation]rangeFetcher
	logger   *logging.Logger
	metrics  *metrics.Metrics
}

// New builds a Service. Settings must come from ParseSettings.
func New(deps Deps) (*Service, error) {
	switch {
	case deps.Sensors == nil:
		return nil, errors.New("reconcile: sensor directory is required")
	case deps.Table == nil:
		return nil, errors.New("reconcile: functionality table is required")
	case deps.Stores.Instant == nil || deps.Stores.Interval == nil || deps.Stores.InstantLocation == nil:
		return nil, errors.New("reconcile: all three value stores are required")
	case deps.Settings.GridMeterCadence <= 0:
		return nil, fmt.Errorf("%w: grid meter cadence must be positive", ErrInvalidSetting)
	}

	settings := deps.Settings
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	s := &Service{
		sensors:  deps.Sensors,
		table:    deps.Table,
		stores:   deps.Stores,
		outdoor:  deps.Outdoor,
		settings: settings,
		logger:   logger.With("component", "reconcile"),
		metrics:  deps.Metrics,
	}
	s.fetchers = s.buildFetchers()
	return s, nil
}

// Settings returns the parsed settings in use.
func (s *Service) Settings() Settings {
	return s.settings
}

// buildFetchers binds each aggregation of the routing table to the store
// that serves it.
func (s *Service) buildFetchers() map[functionality.Aggregation]rangeFetcher {
	return map[functionality.Aggregation]rangeFetcher{
		functionality.ListInstantValues: func(ctx context.Context, id sensor.ID, start, end time.Time) ([]value.Value, error) {
			vs, err := s.stores.Instant.FindBySensorBetween(ctx, id, start, end)
			return toValues(vs), err
		},
		functionality.ListIntervalValues: func(ctx context.Context, id sensor.ID, start, end time.Time) ([]value.Value, error) {
			vs, err := s.stores.Interval.FindBySensorBetween(ctx, id, start, end)
			return toValues(vs), err
		},
		functionality.ListInstantLocationValues: func(ctx context.Context, id sensor.ID, start, end time.Time) ([]value.Value, error) {
			vs, err := s.stores.InstantLocation.FindBySensorBetween(ctx, id, start, end)
			return toValues(vs), err
		},
	}
}

// valuesFor resolves the sensor's aggregation through the routing table and
// returns its values within [start, end].
func (s *Service) valuesFor(ctx context.Context, sn sensor.Sensor, start, end time.Time) ([]value.Value, error) {
	agg, err := s.table.ResolveAggregation(sn.FunctionalityID)
	if err != nil {
		return nil, fmt.Errorf("sensor %s: %w", sn.ID, err)
	}
	fetch, ok := s.fetchers[agg]
	if !ok {
		return nil, fmt.Errorf("sensor %s: no fetcher for %s", sn.ID, agg)
	}
	values, err := fetch(ctx, sn.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching values for sensor %s: %w", sn.ID, err)
	}
	return values, nil
}

func (s *Service) observe(op string, started time.Time, err error) {
	s.metrics.ObserveReconcile(op, started, err)
	if err != nil {
		s.logger.Debug("reconciliation failed", "operation", op, "error", err)
	}
}

func toValues[V value.Value](vs []V) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func checkRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return nil
}
