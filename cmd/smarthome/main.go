// Smart Home Core - sensor value reconciliation service
//
// This is the main entry point for the Smart Home Core application. It
// ingests sensor values from MQTT into SQLite, mirrors them to InfluxDB
// when enabled, and serves the reconciliation and weather queries over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/smarthome-core/internal/api"
	"github.com/nerrad567/smarthome-core/internal/functionality"
	"github.com/nerrad567/smarthome-core/internal/geo"
	"github.com/nerrad567/smarthome-core/internal/house"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/config"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/database"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/logging"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/metrics"
	"github.com/nerrad567/smarthome-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/smarthome-core/internal/ingest"
	"github.com/nerrad567/smarthome-core/internal/reconcile"
	"github.com/nerrad567/smarthome-core/internal/sensor"
	"github.com/nerrad567/smarthome-core/internal/value"
	"github.com/nerrad567/smarthome-core/internal/weather"
	"github.com/nerrad567/smarthome-core/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Smart Home Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Settings and routing table are checked before any connection is made.
	settings, err := reconcile.ParseSettings(cfg.Energy, cfg.Site.Timezone)
	if err != nil {
		return fmt.Errorf("parsing energy settings: %w", err)
	}
	table, err := functionality.FromConfig(cfg.Functionalities)
	if err != nil {
		return fmt.Errorf("building functionality table: %w", err)
	}
	log.Info("functionality table loaded", "functionalities", table.Len())

	db, err := database.Open(ctx, database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	houses := house.NewSQLiteRepository(db.DB)
	if seedErr := seedHouse(ctx, houses, cfg.Site); seedErr != nil {
		return fmt.Errorf("storing site house: %w", seedErr)
	}

	directory := sensor.NewSQLiteDirectory(db.DB)
	instant := value.NewSQLiteInstantStore(db.DB)
	interval := value.NewSQLiteIntervalStore(db.DB)
	located := value.NewSQLiteInstantLocationStore(db.DB)

	m := metrics.New()

	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			stats := influxClient.Stats()
			log.Info("closing InfluxDB connection",
				"measurement", stats.Measurement,
				"points_queued", stats.Queued,
				"batches_failed", stats.Failed,
			)
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
			"measurement", influxClient.Stats().Measurement,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Weather service (optional)
	var weatherSvc *weather.Service
	if cfg.Weather.URL != "" {
		gateway := weather.NewHTTPGateway(cfg.Weather.URL, cfg.GetWeatherTimeout())
		weatherSvc = weather.NewService(gateway, houses, cfg.Weather.GroupNumber)
		weatherSvc.SetLogger(log)
		log.Info("weather service configured", "url", cfg.Weather.URL)
	} else {
		log.Info("weather service not configured")
	}

	reconcileDeps := reconcile.Deps{
		Sensors:  directory,
		Table:    table,
		Stores:   value.Stores{Instant: instant, Interval: interval, InstantLocation: located},
		Settings: settings,
		Logger:   log,
		Metrics:  m,
	}
	if weatherSvc != nil {
		reconcileDeps.Outdoor = weatherSvc
	}
	reconciler, err := reconcile.New(reconcileDeps)
	if err != nil {
		return fmt.Errorf("creating reconciler: %w", err)
	}

	if cfg.Ingest.Enabled {
		pipeline, pipeErr := startIngest(ctx, cfg, directory, table, ingest.Writers{
			Instant:         instant,
			Interval:        interval,
			InstantLocation: located,
		}, influxClient, mqttClient, m, log)
		if pipeErr != nil {
			return fmt.Errorf("starting ingest: %w", pipeErr)
		}
		defer func() {
			log.Info("stopping ingest")
			if stopErr := pipeline.Stop(mqttClient); stopErr != nil {
				log.Error("error stopping ingest", "error", stopErr)
			}
		}()
	} else {
		log.Info("ingest disabled")
	}

	checks := map[string]api.HealthChecker{
		"database": db,
		"mqtt":     mqttClient,
	}
	if influxClient != nil {
		checks["influxdb"] = influxClient
	}

	apiDeps := api.Deps{
		Config:     cfg.API,
		Logger:     log,
		Reconciler: reconciler,
		Devices:    directory,
		Events:     mqttClient,
		Metrics:    m,
		Health:     checks,
		Version:    version,
	}
	if weatherSvc != nil {
		apiDeps.Weather = weatherSvc
	}
	server, err := api.New(apiDeps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	log.Info("Smart Home Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SMARTHOME_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SMARTHOME_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// seedHouse stores the configured site as the monitored house.
func seedHouse(ctx context.Context, repo *house.SQLiteRepository, site config.SiteConfig) error {
	h := &house.House{ID: site.ID, Name: site.Name}
	if site.HasLocation() {
		coord, err := geo.NewCoordinate(*site.Latitude, *site.Longitude)
		if err != nil {
			return err
		}
		h.Location = &house.Location{Address: site.Address, Coordinate: coord}
	}
	return repo.Save(ctx, h)
}

// startIngest subscribes the ingest pipeline to sensor value topics.
func startIngest(
	ctx context.Context,
	cfg *config.Config,
	directory *sensor.SQLiteDirectory,
	table *functionality.Table,
	writers ingest.Writers,
	influxClient *influxdb.Client,
	mqttClient *mqtt.Client,
	m *metrics.Metrics,
	log *logging.Logger,
) (*ingest.Pipeline, error) {
	deps := ingest.Deps{
		Sensors:   directory,
		Registrar: directory,
		Table:     table,
		Writers:   writers,
		Metrics:   m,
		Logger:    log,
	}
	if influxClient != nil {
		deps.Mirror = influxClient
	}

	pipeline, err := ingest.New(deps)
	if err != nil {
		return nil, err
	}
	if err := pipeline.Start(ctx, mqttClient, cfg.Ingest.Topic, byte(cfg.MQTT.QoS)); err != nil {
		return nil, err
	}
	return pipeline, nil
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when InfluxDB is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
