package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
ingest:
  date_format: "%Y-%m-%d %H:%M:%S"
  encoding: "windows-1252"
render:
  format: "html"
  output: "out/chart.html"
database:
  enabled: true
  path: "/tmp/test.db"
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
influxdb:
  enabled: true
  url: "http://influx:8086"
  org: "lab"
  bucket: "sensors"
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

	if cfg.Ingest.DateFormat != "%Y-%m-%d %H:%M:%S" {
		t.Errorf("Ingest.DateFormat = %q", cfg.Ingest.DateFormat)
	}

	if cfg.Ingest.Encoding != "windows-1252" {
		t.Errorf("Ingest.Encoding = %q, want %q", cfg.Ingest.Encoding, "windows-1252")
	}

	if cfg.Render.Format != "html" || cfg.Render.Output != "out/chart.html" {
		t.Errorf("Render = %+v", cfg.Render)
	}

	// Unset keys keep their defaults
	if cfg.Render.Width != 1200 {
		t.Errorf("Render.Width = %d, want default 1200", cfg.Render.Width)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}

	if cfg.InfluxDB.Measurement != "hwlog" {
		t.Errorf("InfluxDB.Measurement = %q, want default hwlog", cfg.InfluxDB.Measurement)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Setenv("HWLOG_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Ingest.Encoding != "iso-8859-1" {
		t.Errorf("Ingest.Encoding = %q, want iso-8859-1", cfg.Ingest.Encoding)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
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
render:
  format: "gif"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for render.format gif, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing date format",
			mutate:  func(c *Config) { c.Ingest.DateFormat = "" },
			wantErr: true,
		},
		{
			name:    "missing encoding",
			mutate:  func(c *Config) { c.Ingest.Encoding = "" },
			wantErr: true,
		},
		{
			name:    "render none",
			mutate:  func(c *Config) { c.Render.Format = "NONE" },
			wantErr: false,
		},
		{
			name:    "negative height",
			mutate:  func(c *Config) { c.Render.Height = -1 },
			wantErr: true,
		},
		{
			name: "database enabled without path",
			mutate: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name:    "database disabled without path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: false,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "mqtt port out of range",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.Broker.Port = 70000
			},
			wantErr: true,
		},
		{
			name:    "influxdb enabled without org",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{
			name: "tsdb enabled without url",
			mutate: func(c *Config) {
				c.TSDB.Enabled = true
				c.TSDB.URL = ""
			},
			wantErr: true,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Ingest.DateFormat = ""
	cfg.MQTT.QoS = 9

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error")
	}
	msg := err.Error()
	if !strings.HasPrefix(msg, "configuration errors: ") || !strings.Contains(msg, "; ") {
		t.Errorf("Validate() error = %q, want joined configuration errors", msg)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := Default()

	// Set environment variables
	t.Setenv("HWLOG_DATE_FORMAT", "%d/%m/%Y %H:%M:%S")
	t.Setenv("HWLOG_ENCODING", "utf-8")
	t.Setenv("HWLOG_RENDER_FORMAT", "svg")
	t.Setenv("HWLOG_DATABASE_PATH", "/custom/path.db")
	t.Setenv("HWLOG_MQTT_HOST", "mqtt.example.com")
	t.Setenv("HWLOG_MQTT_PORT", "8883")
	t.Setenv("HWLOG_MQTT_USERNAME", "testuser")
	t.Setenv("HWLOG_MQTT_PASSWORD", "testpass")
	t.Setenv("HWLOG_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("HWLOG_TSDB_URL", "http://vm:8428")
	t.Setenv("HWLOG_LOG_LEVEL", "warn")

	applyEnvOverrides(cfg)

	checks := []struct {
		name string
		got  string
		want string
	}{
		{"Ingest.DateFormat", cfg.Ingest.DateFormat, "%d/%m/%Y %H:%M:%S"},
		{"Ingest.Encoding", cfg.Ingest.Encoding, "utf-8"},
		{"Render.Format", cfg.Render.Format, "svg"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"TSDB.URL", cfg.TSDB.URL, "http://vm:8428"},
		{"Logging.Level", cfg.Logging.Level, "warn"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}

	if cfg.MQTT.Broker.Port != 8883 {
		t.Errorf("MQTT.Broker.Port = %d, want 8883", cfg.MQTT.Broker.Port)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Ingest.DateFormat != "%d.%m.%Y %H:%M:%S" {
		t.Errorf("Default Ingest.DateFormat = %q", cfg.Ingest.DateFormat)
	}

	if cfg.Database.Path == "" {
		t.Error("Default should have non-empty Database.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("Default MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.Database.Enabled || cfg.MQTT.Enabled || cfg.InfluxDB.Enabled || cfg.TSDB.Enabled {
		t.Error("Default should disable every sink")
	}
}
