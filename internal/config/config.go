// Package config loads localfeed configuration.
//
// Precedence (highest to lowest):
//  1. Environment variables with the LOCALFEED_ prefix
//  2. YAML config file
//  3. Built-in defaults
//
// Environment variables map to keys by dropping the prefix and splitting the
// section off at the first underscore:
//
//	LOCALFEED_SERVER_ADDR     -> server.addr
//	LOCALFEED_FETCH_CACHE_TTL -> fetch.cache_ttl
//	LOCALFEED_DATABASE_PATH   -> database.path
package config

import (
	"fmt"
	"time"

	"github.com/dtnitsch/localfeed/models"
	"github.com/dtnitsch/localfeed/pkg/logging"
	"github.com/dtnitsch/localfeed/pkg/mixer"
	"github.com/dtnitsch/localfeed/pkg/validation"
)

// Config is the full localfeed configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Logging  logging.Config `koanf:"logging"`
	Server   ServerConfig   `koanf:"server"`
	Fetch    FetchConfig    `koanf:"fetch"`
	Mix      MixConfig      `koanf:"mix"`
	Remote   RemoteConfig   `koanf:"remote"`
}

type DatabaseConfig struct {
	// Path to the sqlite file. Empty puts it next to the binary.
	Path string `koanf:"path"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	RateLimit       int           `koanf:"rate_limit" validate:"gte=0"` // requests per minute per client IP, 0 disables
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gte=0"`
}

type FetchConfig struct {
	Workers   int           `koanf:"workers" validate:"gte=1,lte=64"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
	CacheDir  string        `koanf:"cache_dir"`
	CacheTTL  time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

type MixConfig struct {
	DefaultN int    `koanf:"default_n" validate:"gte=1"`
	MaxN     int    `koanf:"max_n" validate:"gtefield=DefaultN"`
	Mode     string `koanf:"mode" validate:"omitempty,oneof=text tags hybrid"`
	// Window bounds how old an item may be to take part in a mix. Zero means
	// no bound.
	Window time.Duration `koanf:"window" validate:"gte=0"`
	// Weights overrides tier weights per specificity level, e.g.
	// weights.region.region = 70. Levels not listed keep their defaults.
	Weights map[string]map[string]int `koanf:"weights"`
}

type RemoteConfig struct {
	// URL of another localfeed server holding the canonical preferences.
	// Empty keeps preferences local only.
	URL         string        `koanf:"url" validate:"omitempty,url"`
	Timeout     time.Duration `koanf:"timeout" validate:"gte=0"`
	MaxFailures uint32        `koanf:"max_failures"`
	OpenTimeout time.Duration `koanf:"open_timeout" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Logging: logging.DefaultConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			RateLimit:       120,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Fetch: FetchConfig{
			Workers:   4,
			Timeout:   15 * time.Second,
			UserAgent: "localfeed/1.0",
			CacheDir:  ".localfeed/cache",
			CacheTTL:  time.Hour,
		},
		Mix: MixConfig{
			DefaultN: 20,
			MaxN:     200,
			Mode:     string(mixer.MatchHybrid),
			Window:   72 * time.Hour,
		},
		Remote: RemoteConfig{
			Timeout:     5 * time.Second,
			MaxFailures: 5,
			OpenTimeout: 30 * time.Second,
		},
	}
}

// Validate checks field rules and the mix weights.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if _, err := c.Mix.Configs(); err != nil {
		return err
	}
	return nil
}

// Configs parses Weights into mixer configs and validates each one.
func (m MixConfig) Configs() (map[models.Specificity]models.MixConfig, error) {
	out := make(map[models.Specificity]models.MixConfig, len(m.Weights))
	for level, weights := range m.Weights {
		s, err := models.ParseSpecificity(level)
		if err != nil {
			return nil, fmt.Errorf("mix.weights: %w", err)
		}

		cfg := make(models.MixConfig, len(weights))
		for name, w := range weights {
			tier, err := models.ParseTier(name)
			if err != nil {
				return nil, fmt.Errorf("mix.weights.%s: %w", level, err)
			}
			cfg[tier] = w
		}

		if err := mixer.ValidateConfig(s, cfg); err != nil {
			return nil, fmt.Errorf("mix.weights: %w", err)
		}
		out[s] = cfg
	}
	return out, nil
}
