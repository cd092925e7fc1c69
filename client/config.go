// Package client provides the HTTP client for the remote tabular-database
// API and the persistence bridge (Table) that connects it to model
// instances. Everything network-facing lives here; the core packages stay
// pure.
package client

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	// envAPIKey overrides Config.APIKey when set, so credentials can stay
	// out of config files.
	envAPIKey = "GRIDBASE_API_KEY"

	defaultBaseURL      = "https://api.airtable.com/v0"
	defaultTimeout      = Duration(30 * time.Second)
	defaultPageSize     = 100
	defaultMaxBodyBytes = 10 << 20
	// The API allows 5 requests per second per base; batch helpers pace
	// their sub-requests to stay under it.
	defaultRatePerSec = 5
)

// Duration is a time.Duration that unmarshals from YAML duration strings
// like "30s". Bare integers are accepted as nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var n int64
	if err := value.Decode(&n); err == nil {
		*d = Duration(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the client configuration, loadable from YAML.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	BaseID       string        `yaml:"base_id"`
	Timeout      Duration      `yaml:"timeout"`
	PageSize     int           `yaml:"page_size"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	RatePerSec   int           `yaml:"rate_per_sec"`
	Logging      LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Load reads, expands, and validates a YAML config file. Environment
// variables in the file are expanded, and GRIDBASE_API_KEY overrides the
// api_key value when set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if key := os.Getenv(envAPIKey); key != "" {
		cfg.APIKey = key
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.PageSize == 0 {
		c.PageSize = defaultPageSize
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.RatePerSec == 0 {
		c.RatePerSec = defaultRatePerSec
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required (or set %s)", envAPIKey)
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100, got %d", c.PageSize)
	}
	if c.RatePerSec < 1 {
		return fmt.Errorf("rate_per_sec must be positive, got %d", c.RatePerSec)
	}
	return nil
}

// NewLogger builds a zerolog.Logger from the logging configuration.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
	if cfg.Format == "console" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger
}
