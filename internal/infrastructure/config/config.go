package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for hwlog.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Ingest   IngestConfig   `yaml:"ingest"`
	Render   RenderConfig   `yaml:"render"`
	Database DatabaseConfig `yaml:"database"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	TSDB     TSDBConfig     `yaml:"tsdb"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// IngestConfig contains sensor log parsing settings.
type IngestConfig struct {
	// DateFormat is the strftime-style pattern for "Date Time" cells.
	DateFormat string `yaml:"date_format"`

	// Encoding is the IANA name of the fixed text encoding of logs and layouts.
	Encoding string `yaml:"encoding"`
}

// RenderConfig contains chart output settings.
type RenderConfig struct {
	Format string `yaml:"format"`
	Output string `yaml:"output"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled bool             `yaml:"enabled"`
	Broker  MQTTBrokerConfig `yaml:"broker"`
	Auth    MQTTAuthConfig   `yaml:"auth"`
	QoS     int              `yaml:"qos"`
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

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	Token       string `yaml:"token"`
	Org         string `yaml:"org"`
	Bucket      string `yaml:"bucket"`
	BatchSize   int    `yaml:"batch_size"`
	Measurement string `yaml:"measurement"`
}

// TSDBConfig contains VictoriaMetrics export settings.
type TSDBConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	BatchSize   int    `yaml:"batch_size"`
	Measurement string `yaml:"measurement"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment overrides.
//
// An empty path skips the file and starts from defaults. Environment
// variables take precedence over file values and follow the pattern
// HWLOG_SECTION_KEY, for example HWLOG_DATABASE_PATH or HWLOG_LOG_LEVEL.
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with sensible defaults.
// Every optional sink is disabled.
func Default() *Config {
	return &Config{
		Ingest: IngestConfig{
			DateFormat: "%d.%m.%Y %H:%M:%S",
			Encoding:   "iso-8859-1",
		},
		Render: RenderConfig{
			Format: "png",
			Width:  1200,
			Height: 400,
		},
		Database: DatabaseConfig{
			Path:        "./data/hwlog.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "hwlog",
			},
			QoS: 1,
		},
		InfluxDB: InfluxDBConfig{
			URL:         "http://localhost:8086",
			BatchSize:   1000,
			Measurement: "hwlog",
		},
		TSDB: TSDBConfig{
			URL:         "http://localhost:8428",
			BatchSize:   1000,
			Measurement: "hwlog",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: HWLOG_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Ingest
	if v := os.Getenv("HWLOG_DATE_FORMAT"); v != "" {
		cfg.Ingest.DateFormat = v
	}
	if v := os.Getenv("HWLOG_ENCODING"); v != "" {
		cfg.Ingest.Encoding = v
	}

	// Render
	if v := os.Getenv("HWLOG_RENDER_FORMAT"); v != "" {
		cfg.Render.Format = v
	}

	// Database
	if v := os.Getenv("HWLOG_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("HWLOG_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HWLOG_MQTT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.MQTT.Broker.Port = port
		}
	}
	if v := os.Getenv("HWLOG_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HWLOG_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("HWLOG_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// TSDB
	if v := os.Getenv("HWLOG_TSDB_URL"); v != "" {
		cfg.TSDB.URL = v
	}

	// Logging
	if v := os.Getenv("HWLOG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Ingest validation
	if c.Ingest.DateFormat == "" {
		errs = append(errs, "ingest.date_format is required")
	}
	if c.Ingest.Encoding == "" {
		errs = append(errs, "ingest.encoding is required")
	}

	// Render validation
	switch strings.ToLower(c.Render.Format) {
	case "png", "html", "svg", "none":
	default:
		errs = append(errs, "render.format must be png, html, svg, or none")
	}
	if c.Render.Width < 0 || c.Render.Height < 0 {
		errs = append(errs, "render.width and render.height must not be negative")
	}

	// Database validation
	if c.Database.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when database is enabled")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && (c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535) {
		errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
	}

	// InfluxDB validation
	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" || c.InfluxDB.Org == "" || c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.url, influxdb.org and influxdb.bucket are required when influxdb is enabled")
		}
	}

	// TSDB validation
	if c.TSDB.Enabled && c.TSDB.URL == "" {
		errs = append(errs, "tsdb.url is required when tsdb is enabled")
	}

	// Logging validation
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
