package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/metrics"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
	"github.com/nerrad567/smarthome-core/internal/weather"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Reconciler answers the reconciliation queries.
type Reconciler interface {
	AllMeasurementsForDeviceBetween(ctx context.Context, deviceID sensor.DeviceID, start, end time.Time) (map[sensor.FunctionalityID][]value.Reading, error)
	LastMeasurement(ctx context.Context, deviceID sensor.DeviceID, functionalityID sensor.FunctionalityID) (string, error)
	PeakPowerConsumption(ctx context.Context, start, end time.Time) (float64, error)
	MaxTemperatureDifference(ctx context.Context, insideID, outsideID sensor.ID, start, end time.Time) (float64, error)
	MaxTemperatureDifferenceWithWeather(ctx context.Context, insideID sensor.ID, start, end time.Time) (float64, error)
}

// WeatherReader answers the weather lookups for the configured house.
type WeatherReader interface {
	TemperatureForHour(ctx context.Context, hour int) (float64, error)
	SunriseSunsetHour(ctx context.Context, event string) (float64, error)
	WindForHour(ctx context.Context, hour int) (weather.Reading, error)
	MaxWindBetween(ctx context.Context, startHour, endHour int) (weather.Reading, error)
}

// DeviceLookup resolves devices so unknown IDs can be reported as 404.
type DeviceLookup interface {
	GetDevice(ctx context.Context, id sensor.DeviceID) (*sensor.Device, error)
}

// EventPublisher publishes core events, normally the MQTT client.
type EventPublisher interface {
	PublishJSON(topic string, v any) error
}

// HealthChecker is implemented by every infrastructure component.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.APIConfig
	Logger     *logging.Logger
	Reconciler Reconciler
	Devices    DeviceLookup
	Weather    WeatherReader    // optional; weather routes answer 503 without it
	Events     EventPublisher   // optional; peak results are not published without it
	Metrics    *metrics.Metrics // optional; /metrics is not mounted without it
	Health     map[string]HealthChecker
	Version    string
}

// Server is the HTTP API server for Smart Home Core.
//
// The server is created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	reconciler Reconciler
	devices    DeviceLookup
	weather    WeatherReader
	events     EventPublisher
	metrics    *metrics.Metrics
	health     map[string]HealthChecker
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Reconciler == nil {
		return nil, fmt.Errorf("reconciler is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device lookup is required")
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		reconciler: deps.Reconciler,
		devices:    deps.Devices,
		weather:    deps.Weather,
		events:     deps.Events,
		metrics:    deps.Metrics,
		health:     deps.Health,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background goroutine.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		s.logger.Info("API server starting", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
