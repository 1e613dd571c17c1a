// Package config loads CLI settings from schemaformula.yaml and
// SCHEMAFORMULA_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the CLI configuration.
type Config struct {
	Lang     string `mapstructure:"lang"`
	LogLevel string `mapstructure:"log_level"`
	Color    string `mapstructure:"color"`
}

// Load reads schemaformula.yaml from dir (the working directory when dir is
// empty). A missing file leaves the defaults in place.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("lang", "en")
	v.SetDefault("log_level", "warn")
	v.SetDefault("color", ColorAuto)

	v.SetConfigName("schemaformula")
	v.SetConfigType("yaml")
	if dir == "" {
		dir = "."
	}
	v.AddConfigPath(dir)

	v.SetEnvPrefix("SCHEMAFORMULA")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	cfg.Lang = strings.ToLower(cfg.Lang)
	switch cfg.Lang {
	case "en", "ja":
	default:
		return fmt.Errorf("lang must be en or ja, got: %s", cfg.Lang)
	}
	switch cfg.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("color must be auto, always or never, got: %s", cfg.Color)
	}
	return nil
}
