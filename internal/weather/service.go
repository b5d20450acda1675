package weather

import (
	"context"
	"fmt"

	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/house"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
)

// Service answers weather questions for the configured house.
type Service struct {
	gateway Gateway
	houses  house.Directory
	group   string
	logger  *logging.Logger
}

// NewService creates a Service. group is the installation's group number
// sent with every request.
func NewService(gateway Gateway, houses house.Directory, group string) *Service {
	return &Service{
		gateway: gateway,
		houses:  houses,
		group:   group,
		logger:  logging.Default().With("component", "weather"),
	}
}

// SetLogger replaces the default logger.
func (s *Service) SetLogger(logger *logging.Logger) {
	s.logger = logger.With("component", "weather")
}

// TemperatureForHour returns the outdoor temperature at the house for a
// local hour.
func (s *Service) TemperatureForHour(ctx context.Context, hour int) (float64, error) {
	if err := checkHour(hour); err != nil {
		return 0, err
	}
	at, err := s.coordinate(ctx)
	if err != nil {
		return 0, err
	}

	r, err := s.gateway.InstantaneousTemperature(ctx, s.group, at, hour)
	if err != nil {
		return 0, fmt.Errorf("temperature for hour %d: %w", hour, err)
	}
	s.logger.Debug("fetched outdoor temperature", "hour", hour, "measurement", r.Measurement, "unit", r.Unit)
	return r.Measurement, nil
}

// SunriseSunsetHour returns the hour of sunrise or sunset at the house.
func (s *Service) SunriseSunsetHour(ctx context.Context, event string) (float64, error) {
	e, err := ParseEvent(event)
	if err != nil {
		return 0, err
	}
	at, err := s.coordinate(ctx)
	if err != nil {
		return 0, err
	}

	r, err := s.gateway.SunriseSunset(ctx, s.group, at, e)
	if err != nil {
		return 0, fmt.Errorf("%s hour: %w", e, err)
	}
	return r.Measurement, nil
}

// WindForHour returns the wind reading at the house for a local hour.
func (s *Service) WindForHour(ctx context.Context, hour int) (Reading, error) {
	if err := checkHour(hour); err != nil {
		return Reading{}, err
	}
	at, err := s.coordinate(ctx)
	if err != nil {
		return Reading{}, err
	}

	r, err := s.gateway.InstantaneousWind(ctx, s.group, at, hour)
	if err != nil {
		return Reading{}, fmt.Errorf("wind for hour %d: %w", hour, err)
	}
	return r, nil
}

// MaxWindBetween returns the strongest wind between two local hours,
// inclusive. startHour must not be after endHour.
func (s *Service) MaxWindBetween(ctx context.Context, startHour, endHour int) (Reading, error) {
	if err := checkHour(startHour); err != nil {
		return Reading{}, err
	}
	if err := checkHour(endHour); err != nil {
		return Reading{}, err
	}
	if startHour > endHour {
		return Reading{}, fmt.Errorf("%w: start hour %d is after end hour %d", ErrInvalidHour, startHour, endHour)
	}
	at, err := s.coordinate(ctx)
	if err != nil {
		return Reading{}, err
	}

	r, err := s.gateway.MaximumWind(ctx, s.group, at, startHour, endHour)
	if err != nil {
		return Reading{}, fmt.Errorf("maximum wind for hours %d-%d: %w", startHour, endHour, err)
	}
	return r, nil
}

// coordinate resolves the house position. A missing house or a house
// without a location both report house.ErrNoHouseConfigured.
func (s *Service) coordinate(ctx context.Context) (geo.Coordinate, error) {
	h, err := house.First(ctx, s.houses)
	if err != nil {
		return geo.Coordinate{}, fmt.Errorf("resolving house: %w", err)
	}
	if h.Location == nil {
		return geo.Coordinate{}, fmt.Errorf("%w: %w: %s", house.ErrNoHouseConfigured, house.ErrNoLocation, h.ID)
	}
	return h.Location.Coordinate, nil
}

func checkHour(hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("%w: got %d", ErrInvalidHour, hour)
	}
	return nil
}
