package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete tradechain configuration.
type Config struct {
	Database DatabaseConfig `json:"database" yaml:"database"`
	Linking  LinkingConfig  `json:"linking" yaml:"linking"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// DatabaseConfig locates the SQLite journal file.
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LinkingConfig tunes chain construction.
type LinkingConfig struct {
	// WindowDays caps the gap between a chain member and a continuation
	// order.
	WindowDays int `json:"window_days" yaml:"window_days"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `json:"level" yaml:"level"` // "debug", "info", "warn", "error"
}

// Window returns the linking window as a duration.
func (l LinkingConfig) Window() time.Duration {
	return time.Duration(l.WindowDays) * 24 * time.Hour
}

// LoadFromFile loads configuration from a file (JSON or YAML based on content)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if (len(path) > 5 && path[len(path)-5:] == ".yaml") || (len(path) > 4 && path[len(path)-4:] == ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Linking.WindowDays <= 0 {
		return fmt.Errorf("linking.window_days must be positive")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "./tradechain.db",
		},
		Linking: LinkingConfig{
			WindowDays: 30,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
