// Package config loads the pope server's runtime configuration: fan-out,
// logging, and the oracle comparison cache size. It reads a YAML file
// with viper, decodes it with mapstructure, and validates the result
// with go-playground/validator.
package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the pope server's configuration.
type Config struct {
	// Fanout is the tree's l parameter: leaf cap and max pivots per
	// internal node.
	Fanout int `mapstructure:"fanout" validate:"required,gt=0"`

	// CacheSize bounds the oracle comparison cache (0 disables it).
	CacheSize int `mapstructure:"cache_size" validate:"gte=0"`

	Logging LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls the server's logging.Logger.
type LoggingConfig struct {
	// Level "info" or "debug" (case-insensitive) turns Info logging on;
	// anything else leaves Info logging off.
	Level string `mapstructure:"level"`

	// Trace is a comma-separated list of trace subsystems to enable, or
	// "all". Empty disables tracing.
	Trace string `mapstructure:"trace"`
}

// Default returns a Config with fan-out 64, a 4096-entry comparison
// cache, and logging off.
func Default() *Config {
	return &Config{
		Fanout:    64,
		CacheSize: 4096,
	}
}

// ParseFile reads filename (YAML, TOML, JSON, or any other format viper
// supports, picked up from its extension) into a validated Config.
func ParseFile(filename string) (*Config, error) {
	file := viper.New()
	file.SetConfigFile(filename)

	if err := file.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", filename, err)
	}

	cfg := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      cfg,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("config: building decoder: %w", err)
	}
	if err := decoder.Decode(file.AllSettings()); err != nil {
		return nil, fmt.Errorf("config: decoding %s: %w", filename, err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: validating %s: %w", filename, err)
	}

	return cfg, nil
}
