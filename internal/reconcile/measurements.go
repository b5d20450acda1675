package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// AllMeasurementsForDeviceBetween returns every reading of the device's
// sensors within [start, end], grouped by functionality.
//
// Readings under a key keep the order the store returned them in. Sensors
// without values in range add no key; a device without sensors yields an
// empty map. A sensor whose functionality is not routed fails the request.
func (s *Service) AllMeasurementsForDeviceBetween(ctx context.Context, deviceID sensor.DeviceID, start, end time.Time) (result map[sensor.FunctionalityID][]value.Reading, err error) {
	defer func(started time.Time) { s.observe(opMeasurements, started, err) }(time.Now())

	sensors, err := s.sensors.FindByDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("listing sensors of device %s: %w", deviceID, err)
	}

	result = make(map[sensor.FunctionalityID][]value.Reading)
	for _, sn := range sensors {
		values, err := s.valuesFor(ctx, sn, start, end)
		if err != nil {
			return nil, err
		}
		for _, v := range values {
			result[sn.FunctionalityID] = append(result[sn.FunctionalityID], v.Reading())
		}
	}

	s.logger.Debug("collected device measurements",
		"device_id", deviceID,
		"sensors", len(sensors),
		"functionalities", len(result),
	)
	return result, nil
}
