package reconcile

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nerrad567/smarthome-core/internal/sensor"
)

// MaxTemperatureDifference returns the largest absolute difference between
// an inside reading and the outside reading closest to it in time, over
// [start, end]. Pairs further apart than the tolerance are ignored; of two
// equally close outside readings the earlier is used. Non-numeric readings
// are skipped. NoComparableData is returned when nothing pairs up.
func (s *Service) MaxTemperatureDifference(ctx context.Context, insideID, outsideID sensor.ID, start, end time.Time) (diff float64, err error) {
	defer func(started time.Time) { s.observe(opTemperatureDiff, started, err) }(time.Now())

	if err := checkRange(start, end); err != nil {
		return 0, err
	}

	inside, err := s.numericSeries(ctx, insideID, start, end)
	if err != nil {
		return 0, err
	}
	outside, err := s.numericSeries(ctx, outsideID, start, end)
	if err != nil {
		return 0, err
	}

	diff, matched := maxDifference(inside, outside, s.settings.Tolerance)
	s.logger.Debug("computed temperature difference",
		"inside_sensor", insideID,
		"outside_sensor", outsideID,
		"matched", matched,
		"max_difference", diff,
	)
	return diff, nil
}

// MaxTemperatureDifferenceWithWeather compares an inside sensor against the
// weather service. Each inside reading is paired with the outdoor
// temperature of the local hour containing it, as long as the reading lies
// within tolerance of that hour's start. NoComparableData is returned when
// nothing pairs up.
func (s *Service) MaxTemperatureDifferenceWithWeather(ctx context.Context, insideID sensor.ID, start, end time.Time) (diff float64, err error) {
	defer func(started time.Time) { s.observe(opWeatherTemperature, started, err) }(time.Now())

	if s.outdoor == nil {
		return 0, ErrNoWeatherSource
	}
	if err := checkRange(start, end); err != nil {
		return 0, err
	}

	inside, err := s.numericSeries(ctx, insideID, start, end)
	if err != nil {
		return 0, err
	}

	diff = NoComparableData
	hourly := make(map[int]float64)
	matched := 0
	for _, in := range inside {
		mark := hourStart(in.at, s.settings.Location)
		if absDuration(in.at.Sub(mark)) > s.settings.Tolerance {
			continue
		}

		hour := mark.Hour()
		outdoor, ok := hourly[hour]
		if !ok {
			outdoor, err = s.outdoor.TemperatureForHour(ctx, hour)
			if err != nil {
				return 0, fmt.Errorf("outdoor temperature for hour %d: %w", hour, err)
			}
			hourly[hour] = outdoor
		}

		matched++
		if d := math.Abs(in.measure - outdoor); d > diff {
			diff = d
		}
	}

	s.logger.Debug("computed temperature difference against weather",
		"inside_sensor", insideID,
		"matched", matched,
		"hours_fetched", len(hourly),
		"max_difference", diff,
	)
	return diff, nil
}

// numericSeries returns the sensor's parseable readings within [start, end]
// ordered by timestamp. Unparseable readings are logged and dropped.
func (s *Service) numericSeries(ctx context.Context, id sensor.ID, start, end time.Time) ([]sample, error) {
	sn, err := s.sensors.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up sensor %s: %w", id, err)
	}

	values, err := s.valuesFor(ctx, *sn, start, end)
	if err != nil {
		return nil, err
	}

	out := make([]sample, 0, len(values))
	for _, v := range values {
		ts := v.Timestamp()
		if ts.Before(start) || ts.After(end) {
			continue
		}
		f, err := v.Reading().Float()
		if err != nil {
			s.logger.Debug("skipping non-numeric reading", "sensor_id", id, "value_id", v.ID(), "error", err)
			continue
		}
		out = append(out, sample{at: ts, measure: f})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	return out, nil
}

// maxDifference pairs every inside sample with its nearest outside sample
// and returns the largest absolute difference and the number of pairs.
// outside must be sorted by time.
func maxDifference(inside, outside []sample, tolerance time.Duration) (float64, int) {
	best := NoComparableData
	matched := 0
	for _, in := range inside {
		out, ok := nearest(outside, in.at, tolerance)
		if !ok {
			continue
		}
		matched++
		if d := math.Abs(in.measure - out.measure); d > best {
			best = d
		}
	}
	return best, matched
}

// nearest returns the sample of series closest to at, within tolerance.
// On a tie the earlier sample wins; among samples sharing a timestamp the
// first in series order wins.
func nearest(series []sample, at time.Time, tolerance time.Duration) (sample, bool) {
	i := sort.Search(len(series), func(i int) bool { return !series[i].at.Before(at) })

	var (
		found bool
		best  sample
		gap   time.Duration
	)
	if i > 0 {
		prev := series[i-1].at
		j := sort.Search(i, func(k int) bool { return !series[k].at.Before(prev) })
		best, gap, found = series[j], at.Sub(prev), true
	}
	if i < len(series) {
		if g := series[i].at.Sub(at); !found || g < gap {
			best, gap, found = series[i], g, true
		}
	}
	if !found || gap > tolerance {
		return sample{}, false
	}
	return best, true
}

// hourStart returns the start of the local hour containing t.
func hourStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
