package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all halflife process configuration. User-facing settings
// (limit, half-life, bedtime) are not here; they live in the database.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Analyzer AnalyzerConfig `yaml:"analyzer"`
	Log      LogConfig      `yaml:"log"`
	Tracker  TrackerConfig  `yaml:"tracker"`
}

type ServerConfig struct {
	Bind string `yaml:"bind"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AnalyzerConfig struct {
	Provider          string `yaml:"provider"` // "gemini", "anthropic", "none"
	Model             string `yaml:"model"`
	APIKey            string `yaml:"api_key"`
	BaseURL           string `yaml:"base_url"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

type TrackerConfig struct {
	RefreshSeconds int    `yaml:"refresh_seconds"`
	Timezone       string `yaml:"timezone"` // IANA name; empty means the system zone
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37778,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Analyzer: AnalyzerConfig{
			Provider:          "gemini",
			TimeoutSeconds:    20,
			RequestsPerMinute: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Tracker: TrackerConfig{
			RefreshSeconds: 60,
		},
	}
}

// DefaultPath returns ~/.halflife/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".halflife", "config.yaml"), nil
}

// Load overlays the YAML file at path onto the defaults, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills in database path and analyzer credentials from the
// environment. A key already set in the config file is left alone, and
// Gemini is preferred when both keys are exported.
func (c *Config) applyEnv() {
	if p := os.Getenv("HALFLIFE_DB"); p != "" {
		c.Database.Path = p
	}
	if c.Analyzer.APIKey != "" {
		return
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Analyzer.Provider = "gemini"
		c.Analyzer.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.Analyzer.Provider = "anthropic"
		c.Analyzer.APIKey = key
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}

// AnalyzerTimeout returns the per-request deadline for image analysis.
func (c *Config) AnalyzerTimeout() time.Duration {
	if c.Analyzer.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.Analyzer.TimeoutSeconds) * time.Second
}

// RefreshInterval returns how often the live level is recomputed.
func (c *Config) RefreshInterval() time.Duration {
	if c.Tracker.RefreshSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.Tracker.RefreshSeconds) * time.Second
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Tracker.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Tracker.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Tracker.Timezone, err)
	}
	return loc, nil
}
