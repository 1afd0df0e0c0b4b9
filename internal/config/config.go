// Package config loads analysis settings from an optional config file,
// environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all tunable analysis and cache settings.
type Config struct {
	Cache  CacheConfig  `mapstructure:"cache"`
	Fights FightsConfig `mapstructure:"fights"`
}

// CacheConfig controls the parsed-replay cache.
type CacheConfig struct {
	Path    string `mapstructure:"path"`    // SQLite database file
	TTLDays int    `mapstructure:"ttlDays"` // entry lifetime in days
}

// FightsConfig controls fight detection.
type FightsConfig struct {
	Window             float64 `mapstructure:"window"`             // max seconds between deaths in one fight
	TeamfightThreshold int     `mapstructure:"teamfightThreshold"` // deaths needed for a teamfight
	GapThreshold       float64 `mapstructure:"gapThreshold"`       // max seconds between connected events
	Lookback           float64 `mapstructure:"lookback"`           // seconds searched before a reference time
	Lookahead          float64 `mapstructure:"lookahead"`          // seconds searched after a reference time
	HitWindow          float64 `mapstructure:"hitWindow"`          // cast-to-effect correlation window
}

// TTL returns the cache entry lifetime as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLDays) * 24 * time.Hour
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{
			Path:    defaultCachePath(),
			TTLDays: 7,
		},
		Fights: FightsConfig{
			Window:             15,
			TeamfightThreshold: 3,
			GapThreshold:       3,
			Lookback:           30,
			Lookahead:          2,
			HitWindow:          2,
		},
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "dotafights", "replays.db")
}

// Load reads configuration from the given file, or from
// $XDG_CONFIG_HOME/dotafights/config.yaml when path is empty. Environment
// variables with the DOTAFIGHTS_ prefix override file values. A missing
// file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("cache.path", def.Cache.Path)
	v.SetDefault("cache.ttlDays", def.Cache.TTLDays)
	v.SetDefault("fights.window", def.Fights.Window)
	v.SetDefault("fights.teamfightThreshold", def.Fights.TeamfightThreshold)
	v.SetDefault("fights.gapThreshold", def.Fights.GapThreshold)
	v.SetDefault("fights.lookback", def.Fights.Lookback)
	v.SetDefault("fights.lookahead", def.Fights.Lookahead)
	v.SetDefault("fights.hitWindow", def.Fights.HitWindow)

	v.SetEnvPrefix("DOTAFIGHTS")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "dotafights"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && (errors.As(err, &notFound) || os.IsNotExist(err)) {
			return def, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings that would break detection.
func (c *Config) Validate() error {
	if c.Cache.TTLDays <= 0 {
		return fmt.Errorf("cache.ttlDays must be positive, got %d", c.Cache.TTLDays)
	}
	if c.Fights.Window <= 0 {
		return fmt.Errorf("fights.window must be positive, got %v", c.Fights.Window)
	}
	if c.Fights.TeamfightThreshold < 2 {
		return fmt.Errorf("fights.teamfightThreshold must be at least 2, got %d", c.Fights.TeamfightThreshold)
	}
	if c.Fights.GapThreshold <= 0 {
		return fmt.Errorf("fights.gapThreshold must be positive, got %v", c.Fights.GapThreshold)
	}
	return nil
}
