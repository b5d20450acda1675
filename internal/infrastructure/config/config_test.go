package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
site:
  id: "test-home"
  timezone: "Europe/Brussels"
  address: "Rue de la Loi 16, Brussels"
  latitude: 50.8466
  longitude: 4.3528
database:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
api:
  host: "0.0.0.0"
  port: 8080
weather:
  url: "http://weather.local"
  group_number: "7"
energy:
  grid_power_meter_device: "Main Meter"
  grid_power_meter_cadence: "900000"
  tolerance: "300000"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-home" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-home")
	}
	if !cfg.Site.HasLocation() || *cfg.Site.Latitude != 50.8466 {
		t.Errorf("Site location = %v/%v, want 50.8466/4.3528", cfg.Site.Latitude, cfg.Site.Longitude)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.Weather.GroupNumber != "7" {
		t.Errorf("Weather.GroupNumber = %q, want %q", cfg.Weather.GroupNumber, "7")
	}
	if cfg.Energy.GridPowerMeterDevice != "Main Meter" {
		t.Errorf("Energy.GridPowerMeterDevice = %q, want %q", cfg.Energy.GridPowerMeterDevice, "Main Meter")
	}
	if cfg.Energy.GridPowerMeterCadence != "900000" {
		t.Errorf("Energy.GridPowerMeterCadence = %q, want %q", cfg.Energy.GridPowerMeterCadence, "900000")
	}

	// Routing table falls back to the built-in defaults.
	if len(cfg.Functionalities) != len(DefaultFunctionalities()) {
		t.Errorf("len(Functionalities) = %d, want %d", len(cfg.Functionalities), len(DefaultFunctionalities()))
	}
}

func TestLoad_CustomFunctionalities(t *testing.T) {
	content := `
site:
  id: "test-home"
database:
  path: "/tmp/test.db"
api:
  port: 8080
functionalities:
  - id: "TemperatureCelsius"
    variant: "instant"
    unit: "°C"
  - id: "PowerAverage"
    variant: "interval"
    unit: "W"
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Functionalities) != 2 {
		t.Fatalf("len(Functionalities) = %d, want 2", len(cfg.Functionalities))
	}
	if cfg.Functionalities[1].Variant != "interval" {
		t.Errorf("Functionalities[1].Variant = %q, want interval", cfg.Functionalities[1].Variant)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
database:
  path: "/tmp/test.db"
api:
  port: 8080
`
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Site:            SiteConfig{ID: "home-001", Timezone: "UTC"},
			Database:        DatabaseConfig{Path: "/data/smarthome.db"},
			MQTT:            MQTTConfig{QoS: 1},
			API:             APIConfig{Port: 8080},
			Functionalities: DefaultFunctionalities(),
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing site ID", mutate: func(c *Config) { c.Site.ID = "" }, wantErr: "site.id"},
		{name: "unknown timezone", mutate: func(c *Config) { c.Site.Timezone = "Mars/Olympus" }, wantErr: "site.timezone"},
		{
			name: "latitude without longitude",
			mutate: func(c *Config) {
				lat := 50.85
				c.Site.Latitude = &lat
			},
			wantErr: "site.latitude",
		},
		{name: "missing database path", mutate: func(c *Config) { c.Database.Path = "" }, wantErr: "database.path"},
		{name: "invalid QoS", mutate: func(c *Config) { c.MQTT.QoS = 3 }, wantErr: "mqtt.qos"},
		{name: "invalid port low", mutate: func(c *Config) { c.API.Port = 0 }, wantErr: "api.port"},
		{name: "invalid port high", mutate: func(c *Config) { c.API.Port = 70000 }, wantErr: "api.port"},
		{
			name:    "influxdb enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: "influxdb.url",
		},
		{
			name: "influxdb enabled without bucket",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
			},
			wantErr: "influxdb.bucket",
		},
		{
			name:    "ingest enabled without topic",
			mutate:  func(c *Config) { c.Ingest.Enabled = true },
			wantErr: "ingest.topic",
		},
		{
			name: "duplicate functionality",
			mutate: func(c *Config) {
				c.Functionalities = append(c.Functionalities, FunctionalityConfig{ID: "TemperatureCelsius", Variant: "instant"})
			},
			wantErr: "duplicate id",
		},
		{
			name: "unknown variant",
			mutate: func(c *Config) {
				c.Functionalities = []FunctionalityConfig{{ID: "Odd", Variant: "periodic"}}
			},
			wantErr: "unknown variant",
		},
		{
			name: "blank functionality id",
			mutate: func(c *Config) {
				c.Functionalities = []FunctionalityConfig{{ID: " ", Variant: "instant"}}
			},
			wantErr: "functionalities[0].id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() error = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_ReportsAllProblems(t *testing.T) {
	cfg := &Config{API: APIConfig{Port: 0}, MQTT: MQTTConfig{QoS: 5}}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() error = nil, want error")
	}
	for _, want := range []string{"site.id", "database.path", "mqtt.qos", "api.port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q missing %q", err, want)
		}
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		API: APIConfig{
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		Weather: WeatherConfig{Timeout: 7},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetWeatherTimeout().Seconds(); got != 7 {
		t.Errorf("GetWeatherTimeout() = %v, want 7", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("SMARTHOME_DATABASE_PATH", "/custom/path.db")
	t.Setenv("SMARTHOME_MQTT_HOST", "mqtt.example.com")
	t.Setenv("SMARTHOME_MQTT_USERNAME", "testuser")
	t.Setenv("SMARTHOME_MQTT_PASSWORD", "testpass")
	t.Setenv("SMARTHOME_API_HOST", "192.168.1.1")
	t.Setenv("SMARTHOME_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("SMARTHOME_WEATHER_URL", "http://weather.example.com")

	applyEnvOverrides(cfg)

	checks := []struct {
		field, got, want string
	}{
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"API.Host", cfg.API.Host, "192.168.1.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Weather.URL", cfg.Weather.URL, "http://weather.example.com"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}
	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("defaultConfig API.Port = %d, want 8080", cfg.API.Port)
	}
	if cfg.Energy.GridPowerMeterCadence == "" || cfg.Energy.Tolerance == "" {
		t.Error("defaultConfig should carry energy cadence and tolerance")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig should validate, got %v", err)
	}
}
