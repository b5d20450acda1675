package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// LastMeasurement returns the rendered measurement of the most recent value
// recorded by the device's sensors for the functionality.
//
// Matching sensors are checked in directory order. For each, the instant
// store is asked first and the instant-location store second; the first
// value found wins.
func (s *Service) LastMeasurement(ctx context.Context, deviceID sensor.DeviceID, functionalityID sensor.FunctionalityID) (measurement string, err error) {
	defer func(started time.Time) { s.observe(opLastMeasurement, started, err) }(time.Now())

	sensors, err := s.sensors.FindByDeviceAndFunctionality(ctx, deviceID, functionalityID)
	if err != nil {
		return "", fmt.Errorf("listing sensors of device %s: %w", deviceID, err)
	}
	if len(sensors) == 0 {
		return "", fmt.Errorf("%w: device %s has no %s sensor", sensor.ErrSensorNotFound, deviceID, functionalityID)
	}

	for _, sn := range sensors {
		v, err := s.mostRecent(ctx, sn.ID)
		if err != nil {
			return "", err
		}
		if v != nil {
			return v.Reading().Measurement(), nil
		}
	}

	return "", fmt.Errorf("%w: device %s, functionality %s", ErrValueNotFound, deviceID, functionalityID)
}

// mostRecent asks the instant store, then the instant-location store.
// It returns nil when neither holds a value for the sensor.
func (s *Service) mostRecent(ctx context.Context, id sensor.ID) (value.Value, error) {
	iv, err := s.stores.Instant.FindMostRecent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading instant store for sensor %s: %w", id, err)
	}
	if iv != nil {
		return iv, nil
	}

	lv, err := s.stores.InstantLocation.FindMostRecent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading instant-location store for sensor %s: %w", id, err)
	}
	if lv != nil {
		return lv, nil
	}
	return nil, nil
}
