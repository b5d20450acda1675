package reconcile

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
)

// sample is a numeric reading at a point in time.
type sample struct {
	at      time.Time
	measure float64
}

// PeakPowerConsumption returns the highest total power draw within
// [start, end].
//
// The grid meter's interval ends are the bucket boundaries. Every
// specific-time power sample from another device is attributed to the
// earliest boundary at or after its timestamp, provided it is no older than
// one grid cadence before that boundary. Each bucket's total is the grid
// measurement plus its attributed samples; the peak is the largest total,
// or 0 when the grid meter has no intervals in range.
//
// Non-numeric power measurements fail the request.
func (s *Service) PeakPowerConsumption(ctx context.Context, start, end time.Time) (peak float64, err error) {
	defer func(started time.Time) { s.observe(opPeakPower, started, err) }(time.Now())

	if err := checkRange(start, end); err != nil {
		return 0, err
	}

	grid, err := s.gridSeries(ctx, start, end)
	if err != nil {
		return 0, err
	}
	if len(grid.samples) == 0 {
		return 0, nil
	}

	sources, err := s.sourceSamples(ctx, grid.device, start, end)
	if err != nil {
		return 0, err
	}

	attributed, dropped := attribute(grid.samples, sources, s.settings.GridMeterCadence)
	for _, g := range grid.samples {
		total := g.measure
		for _, w := range attributed[g.at.UnixNano()] {
			total += w
		}
		if total > peak {
			peak = total
		}
	}

	s.logger.Debug("computed peak power",
		"grid_intervals", len(grid.samples),
		"source_samples", len(sources),
		"unattributed", dropped,
		"peak_watts", peak,
	)
	return peak, nil
}

type gridSeries struct {
	device  sensor.DeviceID
	samples []sample // one per interval, stamped with the interval end
}

// gridSeries resolves the grid meter device and reads its average power
// intervals within the window.
func (s *Service) gridSeries(ctx context.Context, start, end time.Time) (gridSeries, error) {
	dev, err := s.sensors.ResolveDevice(ctx, s.settings.GridMeterDevice)
	if err != nil {
		return gridSeries{}, fmt.Errorf("resolving grid meter %q: %w", s.settings.GridMeterDevice, err)
	}

	meters, err := s.sensors.FindByDeviceAndFunctionality(ctx, dev.ID, sensor.PowerAverage)
	if err != nil {
		return gridSeries{}, fmt.Errorf("listing grid meter sensors: %w", err)
	}
	if len(meters) == 0 {
		return gridSeries{}, fmt.Errorf("%w: grid meter %s has no %s sensor", sensor.ErrSensorNotFound, dev.ID, sensor.PowerAverage)
	}
	if len(meters) > 1 {
		s.logger.Warn("grid meter has several power average sensors, using the first",
			"device_id", dev.ID,
			"sensor_id", meters[0].ID,
		)
	}

	intervals, err := s.stores.Interval.FindBySensorBetween(ctx, meters[0].ID, start, end)
	if err != nil {
		return gridSeries{}, fmt.Errorf("fetching grid meter intervals: %w", err)
	}

	samples := make([]sample, 0, len(intervals))
	for _, iv := range intervals {
		w, err := iv.Reading().Float()
		if err != nil {
			return gridSeries{}, fmt.Errorf("grid meter value %s: %w", iv.ID(), err)
		}
		samples = append(samples, sample{at: iv.End(), measure: w})
	}
	return gridSeries{device: dev.ID, samples: samples}, nil
}

// sourceSamples reads every specific-time power sensor outside the grid
// meter device. Per device, samples sharing a timestamp collapse into one:
// the position of the first is kept and the measurement of the last wins.
func (s *Service) sourceSamples(ctx context.Context, gridDevice sensor.DeviceID, start, end time.Time) ([]sample, error) {
	sensors, err := s.sensors.FindByFunctionality(ctx, sensor.SpecificTimePowerConsumption)
	if err != nil {
		return nil, fmt.Errorf("listing power sources: %w", err)
	}

	var (
		out     []sample
		devices []sensor.DeviceID
		byDev   = make(map[sensor.DeviceID][]*value.InstantValue)
	)
	for _, sn := range sensors {
		if sn.DeviceID == gridDevice {
			continue
		}
		values, err := s.stores.Instant.FindBySensorBetween(ctx, sn.ID, start, end)
		if err != nil {
			return nil, fmt.Errorf("fetching power values for sensor %s: %w", sn.ID, err)
		}
		if _, seen := byDev[sn.DeviceID]; !seen {
			devices = append(devices, sn.DeviceID)
		}
		byDev[sn.DeviceID] = append(byDev[sn.DeviceID], values...)
	}

	for _, dev := range devices {
		deduped, err := dedupeByTimestamp(byDev[dev])
		if err != nil {
			return nil, fmt.Errorf("device %s: %w", dev, err)
		}
		out = append(out, deduped...)
	}
	return out, nil
}

func dedupeByTimestamp(values []*value.InstantValue) ([]sample, error) {
	out := make([]sample, 0, len(values))
	index := make(map[int64]int, len(values))
	for _, v := range values {
		w, err := v.Reading().Float()
		if err != nil {
			return nil, fmt.Errorf("power value %s: %w", v.ID(), err)
		}
		key := v.Timestamp().UnixNano()
		if i, ok := index[key]; ok {
			out[i].measure = w
			continue
		}
		index[key] = len(out)
		out = append(out, sample{at: v.Timestamp(), measure: w})
	}
	return out, nil
}

// attribute assigns each source sample to a grid boundary and returns the
// attributed measurements keyed by boundary (UnixNano), in source order,
// together with the number of samples that fit no boundary.
func attribute(grid, sources []sample, cadence time.Duration) (map[int64][]float64, int) {
	bounds := make([]time.Time, 0, len(grid))
	for _, g := range grid {
		bounds = append(bounds, g.at)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i].Before(bounds[j]) })

	out := make(map[int64][]float64, len(bounds))
	dropped := 0
	for _, src := range sources {
		i := sort.Search(len(bounds), func(i int) bool { return !bounds[i].Before(src.at) })
		if i == len(bounds) || src.at.Before(bounds[i].Add(-cadence)) {
			dropped++
			continue
		}
		key := bounds[i].UnixNano()
		out[key] = append(out[key], src.measure)
	}
	return out, dropped
}
