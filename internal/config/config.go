package config

import (
	"time"

	"github.com/caarlos0/env/v11"

	"phddash/internal/errors"
)

// DefaultSourceURL is the published TSV of doctorate recipients by year
const DefaultSourceURL = "https://raw.githubusercontent.com/oena/oena.github.io/master/assets/tsv/cleaned_US_phds_awarded_by_year.tsv"

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Data   DataConfig
	S3     S3Config
	Slider SliderConfig
	Debug  DebugConfig
	Log    LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string `env:"PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`
}

// DataConfig controls where the dataset comes from and how long it is kept
type DataConfig struct {
	SourceURL    string        `env:"DATA_SOURCE_URL"`
	FetchTimeout time.Duration `env:"FETCH_TIMEOUT" envDefault:"30s"`
	// CacheTTL of zero keeps the loaded table for the process lifetime.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"0s"`
}

// S3Config is only consulted for s3:// source URLs
type S3Config struct {
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`
}

// SliderConfig bounds the Year slider
type SliderConfig struct {
	Min     int `env:"YEAR_MIN" envDefault:"1958"`
	Max     int `env:"YEAR_MAX" envDefault:"2000"`
	Default int `env:"YEAR_DEFAULT" envDefault:"2017"`
}

// DebugConfig holds the pprof / metrics side server settings
type DebugConfig struct {
	Port    string `env:"DEBUG_PORT" envDefault:"6060"`
	Enabled bool   `env:"DEBUG_ENABLED" envDefault:"true"`
}

// LogConfig sets the verbosity of the leveled loggers
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"INFO"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(errors.ConfigInvalid(err.Error()), "failed to parse environment")
	}
	if cfg.Data.SourceURL == "" {
		cfg.Data.SourceURL = DefaultSourceURL
	}

	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	if cfg.Data.SourceURL == "" {
		return errors.ConfigInvalid("DATA_SOURCE_URL is required")
	}
	if cfg.Data.FetchTimeout <= 0 {
		return errors.ConfigInvalid("FETCH_TIMEOUT must be positive")
	}
	if cfg.Data.CacheTTL < 0 {
		return errors.ConfigInvalid("CACHE_TTL must not be negative")
	}
	if cfg.Slider.Min > cfg.Slider.Max {
		return errors.ConfigInvalid("YEAR_MIN must not exceed YEAR_MAX")
	}
	return nil
}
