// Package config loads runcat configuration from .runcat.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	rcerrors "github.com/runcat-io/runcat/internal/errors"
)

// Config is the complete runcat configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

// CatalogConfig names the run files a catalog is built from.
type CatalogConfig struct {
	// Name labels the catalog for display.
	Name string `yaml:"name"`
	// Paths are the glob patterns matched against run files. ** is
	// supported for recursive matching.
	Paths []string `yaml:"paths"`
	// Encoding is the run file wire format: "jsonl" or "msgpack".
	Encoding string `yaml:"encoding"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level"`
	// File is the log file path. Empty logs to stderr only.
	File string `yaml:"file"`
}

// WatchConfig tunes the watch command. Durations are strings like "500ms".
type WatchConfig struct {
	// Debounce coalesces filesystem event bursts before a refresh.
	Debounce string `yaml:"debounce"`
	// PollInterval is the safety-net refresh period for events the
	// filesystem watcher misses ("0" disables polling).
	PollInterval string `yaml:"poll_interval"`
}

// DebounceDuration parses the debounce window. Call Validate first.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, _ := time.ParseDuration(w.Debounce)
	return d
}

// PollIntervalDuration parses the poll interval. Call Validate first.
func (w WatchConfig) PollIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(w.PollInterval)
	return d
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Name:     "catalog",
			Encoding: "jsonl",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Watch: WatchConfig{
			Debounce:     "500ms",
			PollInterval: "30s",
		},
	}
}

// Load reads .runcat.yaml (or .runcat.yml) from dir, merged over defaults.
// A missing file is fine; the defaults are returned.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ".runcat.yaml")
	if _, err := os.Stat(path); err != nil {
		path = filepath.Join(dir, ".runcat.yml")
		if _, err := os.Stat(path); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, rcerrors.Wrap(rcerrors.ErrCodeConfigNotFound, err).
			WithDetail("path", path)
	}
	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, rcerrors.Wrap(rcerrors.ErrCodeConfigInvalid, err).
			WithDetail("path", path).
			WithSuggestion("check the YAML syntax of " + path)
	}
	cfg.mergeWith(&parsed)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Catalog.Name != "" {
		c.Catalog.Name = other.Catalog.Name
	}
	if len(other.Catalog.Paths) > 0 {
		c.Catalog.Paths = other.Catalog.Paths
	}
	if other.Catalog.Encoding != "" {
		c.Catalog.Encoding = other.Catalog.Encoding
	}
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
	if other.Watch.PollInterval != "" {
		c.Watch.PollInterval = other.Watch.PollInterval
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	switch c.Catalog.Encoding {
	case "jsonl", "msgpack":
	default:
		return rcerrors.New(rcerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("catalog.encoding must be 'jsonl' or 'msgpack', got %q", c.Catalog.Encoding), nil)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return rcerrors.New(rcerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("logging.level must be 'debug', 'info', 'warn', or 'error', got %q", c.Logging.Level), nil)
	}
	if err := validDuration("watch.debounce", c.Watch.Debounce); err != nil {
		return err
	}
	if err := validDuration("watch.poll_interval", c.Watch.PollInterval); err != nil {
		return err
	}
	return nil
}

func validDuration(field, value string) error {
	d, err := time.ParseDuration(value)
	if err != nil {
		return rcerrors.New(rcerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("%s is not a duration: %q", field, value), err)
	}
	if d < 0 {
		return rcerrors.New(rcerrors.ErrCodeConfigInvalid,
			fmt.Sprintf("%s must be non-negative, got %s", field, d), nil)
	}
	return nil
}
