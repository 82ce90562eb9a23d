package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for envsense-core.
// All configuration may be loaded from YAML and overridden by environment variables.
type Config struct {
	API       APIConfig       `yaml:"api"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Generator GeneratorConfig `yaml:"generator"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// InfluxDBConfig contains the time-series backend settings.
//
// The same credentials are used by the line-protocol write client and by
// the query reader behind the GET endpoints.
type InfluxDBConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`

	// WriteTimeout bounds a single write request, in seconds.
	WriteTimeout int `yaml:"write_timeout"`

	// QueryEnabled turns on the Flux reader used by GET /{sensor}.
	QueryEnabled bool `yaml:"query_enabled"`

	// QueryRange is how far back the reader looks, in minutes.
	QueryRange int `yaml:"query_range"`
}

// GeneratorConfig controls the synthetic reading generator.
type GeneratorConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval between ticks, in seconds.
	Interval int `yaml:"interval"`

	// Seed for the pseudo-random source. 0 selects a seed from the wall clock.
	Seed uint64 `yaml:"seed"`
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

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load builds the configuration.
//
// The loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values, when path is non-empty
//  3. Environment variables
//
// Parameters:
//   - path: Path to the YAML configuration file, or "" for defaults only
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read or parsed, or validation fails
func Load(path string) (*Config, error) {
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

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config with the documented defaults.
func Default() *Config {
	return &Config{
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
			URL:          "http://influxdb:8086",
			Token:        "my-super-secret-token",
			Org:          "iot-org",
			Bucket:       "iot-data",
			WriteTimeout: 5,
			QueryRange:   60,
		},
		Generator: GeneratorConfig{
			Enabled:  true,
			Interval: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "envsense-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// The backend variables keep the INFLUXDB_* names used by existing deployments.
func applyEnvOverrides(cfg *Config) error {
	// InfluxDB
	if v := os.Getenv("INFLUXDB_URL"); v != "" {
		cfg.InfluxDB.URL = v
	}
	if v := os.Getenv("INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
	if v := os.Getenv("INFLUXDB_ORG"); v != "" {
		cfg.InfluxDB.Org = v
	}
	if v := os.Getenv("INFLUXDB_BUCKET"); v != "" {
		cfg.InfluxDB.Bucket = v
	}

	// API
	if v := os.Getenv("ENVSENSE_API_HOST"); v != "" {
		cfg.API.Host = v
	}
	if v := os.Getenv("ENVSENSE_API_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENVSENSE_API_PORT: %w", err)
		}
		cfg.API.Port = port
	}

	// MQTT
	if v := os.Getenv("ENVSENSE_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("ENVSENSE_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("ENVSENSE_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Generator
	if v := os.Getenv("ENVSENSE_GENERATOR_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ENVSENSE_GENERATOR_ENABLED: %w", err)
		}
		cfg.Generator.Enabled = enabled
	}
	if v := os.Getenv("ENVSENSE_GENERATOR_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("ENVSENSE_GENERATOR_SEED: %w", err)
		}
		cfg.Generator.Seed = seed
	}

	// Logging
	if v := os.Getenv("ENVSENSE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Every problem is collected so a single run reports all of them.
func (c *Config) Validate() error {
	var errs []string

	// API validation
	if c.API.Port < 1 || c.API.Port > 65535 {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	// InfluxDB validation
	if c.InfluxDB.URL == "" {
		errs = append(errs, "influxdb.url is required")
	} else if u, err := url.Parse(c.InfluxDB.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, "influxdb.url must be an absolute http(s) URL")
	}
	if c.InfluxDB.Org == "" {
		errs = append(errs, "influxdb.org is required")
	}
	if c.InfluxDB.Bucket == "" {
		errs = append(errs, "influxdb.bucket is required")
	}
	if c.InfluxDB.WriteTimeout < 0 {
		errs = append(errs, "influxdb.write_timeout must not be negative")
	}

	// Generator validation
	if c.Generator.Enabled && c.Generator.Interval <= 0 {
		errs = append(errs, "generator.interval must be positive when the generator is enabled")
	}

	// MQTT validation
	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required when mqtt is enabled")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
	}

	if len(errs) > 0 {
		return errors.New("configuration errors: " + strings.Join(errs, "; "))
	}

	return nil
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c APIConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c APIConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c APIConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}

// GetGeneratorInterval returns the generator tick interval as a Duration.
func (c *Config) GetGeneratorInterval() time.Duration {
	return time.Duration(c.Generator.Interval) * time.Second
}

// GetWriteTimeout returns the per-write timeout as a Duration.
func (c InfluxDBConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// TokenPrefix returns the first five characters of the backend token
// followed by an ellipsis, for logging.
func (c InfluxDBConfig) TokenPrefix() string {
	const visible = 5
	if len(c.Token) <= visible {
		return strings.Repeat("*", len(c.Token))
	}
	return c.Token[:visible] + "..."
}
