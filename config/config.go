// Package config handles worker configuration from an optional TOML file.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/debba/tabularis-csv-plugin/domain/model"
)

// EnvConfigPath names the environment variable that points at the config
// file when the --config flag is not given.
const EnvConfigPath = "TABULARIS_CSV_CONFIG"

// Defaults.
const (
	defaultSniffLines = 64
	defaultSampleRows = 1000
	defaultPageSize   = 100
	defaultLogLevel   = "info"
)

// Config holds the worker tuning knobs. All fields have working defaults;
// the config file is optional.
type Config struct {
	// SniffLines is the number of lines sampled for delimiter detection.
	SniffLines int `toml:"sniff_lines"`
	// SampleRows caps the rows examined per column for type inference.
	SampleRows int `toml:"sample_rows"`
	// DefaultPageSize applies when execute_query omits page_size.
	DefaultPageSize int `toml:"default_page_size"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SniffLines:      defaultSniffLines,
		SampleRows:      defaultSampleRows,
		DefaultPageSize: defaultPageSize,
		LogLevel:        defaultLogLevel,
	}
}

// Load reads the TOML file at path over the defaults. An empty path falls
// back to TABULARIS_CSV_CONFIG; no file at all is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.SniffLines < 1 {
		return fmt.Errorf("sniff_lines must be positive, got %d", c.SniffLines)
	}
	if c.SampleRows < 1 {
		return fmt.Errorf("sample_rows must be positive, got %d", c.SampleRows)
	}
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("default_page_size must be positive, got %d", c.DefaultPageSize)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseOptions returns the file parsing knobs for the table loader.
func (c *Config) ParseOptions() model.ParseOptions {
	return model.ParseOptions{
		SniffLines: c.SniffLines,
		SampleRows: c.SampleRows,
	}
}

// SlogLevel maps the configured level name to a slog level.
func (c *Config) SlogLevel() slog.Level {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", name)
	}
}
