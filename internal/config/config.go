// Package config loads the rentiq runtime settings.
//
// Values are resolved in three layers: built-in defaults, then an optional
// YAML file named by RENTIQ_CONFIG, then individual environment variables.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime settings of the rentiq binary.
type Config struct {
	Port         string `yaml:"port"`
	DatabasePath string `yaml:"database_path"`
	// EndingMonths is the look-ahead window of the scheduled expiry scan.
	EndingMonths int `yaml:"ending_window_months"`
	// ScanInterval disables the scheduled scan when zero.
	ScanInterval time.Duration `yaml:"expiry_scan_interval"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Port:         "8080",
		DatabasePath: "rentiq.db",
		EndingMonths: 3,
		ScanInterval: 24 * time.Hour,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load resolves the configuration from defaults, the RENTIQ_CONFIG file and
// the environment.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("RENTIQ_CONFIG"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("ENDING_WINDOW_MONTHS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing ENDING_WINDOW_MONTHS: %w", err)
		}
		c.EndingMonths = n
	}
	if v := os.Getenv("EXPIRY_SCAN_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing EXPIRY_SCAN_INTERVAL: %w", err)
		}
		c.ScanInterval = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	if c.EndingMonths < 1 {
		return fmt.Errorf("ending window must be at least 1 month, got %d", c.EndingMonths)
	}
	if c.ScanInterval < 0 {
		return fmt.Errorf("expiry scan interval must not be negative, got %s", c.ScanInterval)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// NewLogger builds the slog logger described by the configuration.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
