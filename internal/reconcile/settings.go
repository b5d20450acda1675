package reconcile

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
)

// Settings is the parsed reconciliation configuration.
type Settings struct {
	// GridMeterDevice is the ID or name of the grid power meter device.
	GridMeterDevice string

	// GridMeterCadence is the grid meter's sampling interval. A power sample
	// belongs to a grid bucket only if it is no older than one cadence.
	GridMeterCadence time.Duration

	// Tolerance is the largest time gap at which two readings still pair up.
	Tolerance time.Duration

	// Location is the site time zone used to derive local hours.
	Location *time.Location
}

// ParseSettings validates and converts the raw energy configuration.
func ParseSettings(energy config.EnergyConfig, timezone string) (Settings, error) {
	if strings.TrimSpace(energy.GridPowerMeterDevice) == "" {
		return Settings{}, fmt.Errorf("%w: grid_power_meter_device is required", ErrInvalidSetting)
	}

	cadence, err := parseDuration("grid_power_meter_cadence", energy.GridPowerMeterCadence)
	if err != nil {
		return Settings{}, err
	}
	if cadence <= 0 {
		return Settings{}, fmt.Errorf("%w: grid_power_meter_cadence must be positive", ErrInvalidSetting)
	}

	tolerance, err := parseDuration("tolerance", energy.Tolerance)
	if err != nil {
		return Settings{}, err
	}

	loc := time.UTC
	if timezone != "" {
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return Settings{}, fmt.Errorf("%w: timezone %q: %w", ErrInvalidSetting, timezone, err)
		}
	}

	return Settings{
		GridMeterDevice:  energy.GridPowerMeterDevice,
		GridMeterCadence: cadence,
		Tolerance:        tolerance,
		Location:         loc,
	}, nil
}

// parseDuration accepts a Go duration ("15m") or a whole number of
// milliseconds ("900000"). Negative durations are rejected.
func parseDuration(name, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidSetting, name)
	}

	var d time.Duration
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		d = time.Duration(ms) * time.Millisecond
	} else {
		d, err = time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is not a duration", ErrInvalidSetting, name, raw)
		}
	}

	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative", ErrInvalidSetting, name)
	}
	return d, nil
}
