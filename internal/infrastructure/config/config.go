package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported watermark storage backends.
const (
	HistoryBackendFile   = "file"
	HistoryBackendSQLite = "sqlite"
)

// Config is the root configuration structure for the Gruenbeck collector.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Device   DeviceConfig   `yaml:"device"`
	History  HistoryConfig  `yaml:"history"`
	Poll     PollConfig     `yaml:"poll"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	TSDB     TSDBConfig     `yaml:"tsdb"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DeviceConfig contains the water softener connection settings.
type DeviceConfig struct {
	// Host is the appliance address, inserted into http://<host>/mux_http.
	Host string `yaml:"host"`

	// Retry is the total number of fetch attempts per poll cycle.
	// Default: 1
	Retry int `yaml:"retry"`

	// RetryBackoff is the pause between failed attempts (in seconds).
	// Default: 3
	RetryBackoff int `yaml:"retry_backoff"`

	// Timeout bounds a single HTTP attempt (in seconds).
	// Default: 10
	Timeout int `yaml:"timeout"`
}

// HistoryConfig contains settings for the reported-day watermark.
type HistoryConfig struct {
	// Enabled requests 14 days of readings and back-fills missing days.
	// It is switched off at startup if StateDir is not writable.
	Enabled bool `yaml:"enabled"`

	// StateDir holds the watermark file (history.dat) or database (history.db).
	// Default: /var/run/gruenbeck
	StateDir string `yaml:"state_dir"`

	// Backend selects the watermark store: "file" or "sqlite".
	Backend string `yaml:"backend"`
}

// PollConfig controls how often the collector invokes a poll cycle.
type PollConfig struct {
	// Interval between cycle invocations (in seconds).
	Interval int `yaml:"interval"`

	// MaxSuspend caps the back-off applied after failed cycles (in seconds).
	// Default: 86400 (one day)
	MaxSuspend int `yaml:"max_suspend"`
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
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
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
}

// TSDBConfig contains VictoriaMetrics connection settings.
type TSDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// MetricsConfig contains the Prometheus self-metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: GRUENBECK_SECTION_KEY
// For example: GRUENBECK_DEVICE_HOST, GRUENBECK_DEVICE_RETRY
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Retry:        1,
			RetryBackoff: 3,
			Timeout:      10,
		},
		History: HistoryConfig{
			Enabled:  true,
			StateDir: "/var/run/gruenbeck",
			Backend:  HistoryBackendFile,
		},
		Poll: PollConfig{
			Interval:   60,
			MaxSuspend: 86400,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "gruenbeck-collector",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Metrics: MetricsConfig{
			Listen: ":9105",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: GRUENBECK_SECTION_KEY
func applyEnvOverrides(cfg *Config) error {
	// Device
	if v := os.Getenv("GRUENBECK_DEVICE_HOST"); v != "" {
		cfg.Device.Host = v
	}
	if v := os.Getenv("GRUENBECK_DEVICE_RETRY"); v != "" {
		retry, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing GRUENBECK_DEVICE_RETRY: %w", err)
		}
		cfg.Device.Retry = retry
	}

	// History
	if v := os.Getenv("GRUENBECK_HISTORY_DIR"); v != "" {
		cfg.History.StateDir = v
	}

	// MQTT
	if v := os.Getenv("GRUENBECK_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("GRUENBECK_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("GRUENBECK_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("GRUENBECK_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}

	// TSDB
	if v := os.Getenv("GRUENBECK_TSDB_URL"); v != "" {
		cfg.TSDB.URL = v
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Device.Host) == "" {
		errs = append(errs, "device.host is required (set GRUENBECK_DEVICE_HOST environment variable)")
	}
	if c.Device.Retry < 1 {
		errs = append(errs, "device.retry must be at least 1")
	}
	if c.Device.RetryBackoff < 0 {
		errs = append(errs, "device.retry_backoff must not be negative")
	}
	if c.Device.Timeout < 1 {
		errs = append(errs, "device.timeout must be at least 1 second")
	}

	switch c.History.Backend {
	case HistoryBackendFile, HistoryBackendSQLite:
	default:
		errs = append(errs, fmt.Sprintf("history.backend must be %q or %q", HistoryBackendFile, HistoryBackendSQLite))
	}
	if c.History.Enabled && c.History.StateDir == "" {
		errs = append(errs, "history.state_dir is required when history is enabled")
	}

	if c.Poll.Interval < 1 {
		errs = append(errs, "poll.interval must be at least 1 second")
	}
	if c.Poll.MaxSuspend < c.Poll.Interval {
		errs = append(errs, "poll.max_suspend must not be shorter than poll.interval")
	}

	if c.MQTT.Enabled && (c.MQTT.QoS < 0 || c.MQTT.QoS > 2) {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.InfluxDB.Enabled && c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required when influxdb is enabled")
	}
	if c.TSDB.Enabled && c.TSDB.URL == "" {
		errs = append(errs, "tsdb.url is required when tsdb is enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Listen == "" {
		errs = append(errs, "metrics.listen is required when metrics are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// DeviceURL returns the appliance query endpoint.
func (c *Config) DeviceURL() string {
	return "http://" + c.Device.Host + "/mux_http"
}

// GetRetryBackoff returns the pause between failed fetch attempts as a Duration.
func (c *Config) GetRetryBackoff() time.Duration {
	return time.Duration(c.Device.RetryBackoff) * time.Second
}

// GetDeviceTimeout returns the per-attempt HTTP timeout as a Duration.
func (c *Config) GetDeviceTimeout() time.Duration {
	return time.Duration(c.Device.Timeout) * time.Second
}

// GetPollInterval returns the host invocation interval as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Poll.Interval) * time.Second
}

// GetMaxSuspend returns the failure back-off cap as a Duration.
func (c *Config) GetMaxSuspend() time.Duration {
	return time.Duration(c.Poll.MaxSuspend) * time.Second
}
