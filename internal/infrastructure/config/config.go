package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Smart Home Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site            SiteConfig            `yaml:"site"`
	Database        DatabaseConfig        `yaml:"database"`
	MQTT            MQTTConfig            `yaml:"mqtt"`
	API             APIConfig             `yaml:"api"`
	InfluxDB        InfluxDBConfig        `yaml:"influxdb"`
	Logging         LoggingConfig         `yaml:"logging"`
	Weather         WeatherConfig         `yaml:"weather"`
	Energy          EnergyConfig          `yaml:"energy"`
	Ingest          IngestConfig          `yaml:"ingest"`
	Functionalities []FunctionalityConfig `yaml:"functionalities"`
}

// SiteConfig contains site-specific information.
//
// The site is stored as the monitored house on startup. Latitude and
// Longitude must be set together; without them weather lookups fail.
type SiteConfig struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Timezone  string   `yaml:"timezone"`
	Address   string   `yaml:"address"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
}

// HasLocation reports whether both coordinates are set.
func (s SiteConfig) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`

	// Measurement names the series mirrored values are written to.
	Measurement string `yaml:"measurement"`
	// Tags are added to every mirrored point, e.g. site: home.
	Tags map[string]string `yaml:"tags"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// WeatherConfig points at the external weather service.
//
// GroupNumber identifies this installation to the service; it is sent
// with every request alongside the house coordinates.
type WeatherConfig struct {
	URL         string `yaml:"url"`
	GroupNumber string `yaml:"group_number"`
	Timeout     int    `yaml:"timeout"`
}

// EnergyConfig holds the raw settings used by value reconciliation.
//
// The durations are kept as strings here and parsed once when the
// reconciler is built, so a bad value fails startup rather than a request.
// Both Go durations ("15m") and bare millisecond counts ("900000") are accepted.
type EnergyConfig struct {
	GridPowerMeterDevice  string `yaml:"grid_power_meter_device"`
	GridPowerMeterCadence string `yaml:"grid_power_meter_cadence"`
	Tolerance             string `yaml:"tolerance"`
}

// IngestConfig controls the MQTT ingestion pipeline.
type IngestConfig struct {
	Enabled bool   `yaml:"enabled"`
	Topic   string `yaml:"topic"`
}

// FunctionalityConfig is one row of the functionality routing table.
type FunctionalityConfig struct {
	ID      string `yaml:"id"`
	Variant string `yaml:"variant"` // instant, interval, instant_location
	Unit    string `yaml:"unit"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SMARTHOME_SECTION_KEY
// For example: SMARTHOME_DATABASE_PATH, SMARTHOME_WEATHER_URL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:       "home-001",
			Name:     "Smart Home",
			Timezone: "UTC",
		},
		Database: DatabaseConfig{
			Path:        "./data/smarthome.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "smarthome-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		API: APIConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
			Measurement:   "sensor_values",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Weather: WeatherConfig{
			Timeout: 10,
		},
		Energy: EnergyConfig{
			GridPowerMeterDevice:  "Grid Power Meter",
			GridPowerMeterCadence: "15m",
			Tolerance:             "5m",
		},
		Ingest: IngestConfig{
			Enabled: true,
			Topic:   "smarthome/sensor/+/value",
		},
		Functionalities: DefaultFunctionalities(),
	}
}

// DefaultFunctionalities returns the built-in routing table.
func DefaultFunctionalities() []FunctionalityConfig {
	return []FunctionalityConfig{
		{ID: "TemperatureCelsius", Variant: "instant", Unit: "°C"},
		{ID: "HumidityPercentage", Variant: "instant", Unit: "%"},
		{ID: "DewPointCelsius", Variant: "instant", Unit: "°C"},
		{ID: "BinaryStatus", Variant: "instant", Unit: "*"},
		{ID: "Scale", Variant: "instant", Unit: "*"},
		{ID: "Sunrise", Variant: "instant", Unit: "h"},
		{ID: "Sunset", Variant: "instant", Unit: "h"},
		{ID: "SpecificTimePowerConsumption", Variant: "instant", Unit: "W"},
		{ID: "PowerAverage", Variant: "interval", Unit: "W"},
		{ID: "ElectricEnergyConsumption", Variant: "interval", Unit: "kWh"},
		{ID: "WindSpeedAndDirection", Variant: "instant_location", Unit: "km/h;°"},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SMARTHOME_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("SMARTHOME_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("SMARTHOME_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("SMARTHOME_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("SMARTHOME_API_HOST"); v != "" {
		cfg.API.Host = v
	}

	if v := os.Getenv("SMARTHOME_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	if v := os.Getenv("SMARTHOME_WEATHER_URL"); v != "" {
		cfg.Weather.URL = v
	}
}

// Validate checks the configuration for errors.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}
	if c.Site.Timezone != "" {
		if _, err := time.LoadLocation(c.Site.Timezone); err != nil {
			errs = append(errs, fmt.Sprintf("site.timezone %q is not a known location", c.Site.Timezone))
		}
	}
	if (c.Site.Latitude == nil) != (c.Site.Longitude == nil) {
		errs = append(errs, "site.latitude and site.longitude must be set together")
	}

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.Ingest.Enabled && c.Ingest.Topic == "" {
		errs = append(errs, "ingest.topic is required when ingest is enabled")
	}

	errs = append(errs, validateFunctionalities(c.Functionalities)...)

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func validateFunctionalities(entries []FunctionalityConfig) []string {
	var errs []string
	seen := make(map[string]bool, len(entries))
	for i, f := range entries {
		if strings.TrimSpace(f.ID) == "" {
			errs = append(errs, fmt.Sprintf("functionalities[%d].id is required", i))
			continue
		}
		if seen[f.ID] {
			errs = append(errs, fmt.Sprintf("functionalities[%d]: duplicate id %q", i, f.ID))
		}
		seen[f.ID] = true
		switch f.Variant {
		case "instant", "interval", "instant_location":
		default:
			errs = append(errs, fmt.Sprintf("functionalities[%d]: unknown variant %q", i, f.Variant))
		}
	}
	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}

// GetWeatherTimeout returns the weather client timeout as a Duration.
func (c *Config) GetWeatherTimeout() time.Duration {
	return time.Duration(c.Weather.Timeout) * time.Second
}
