// Package config handles configuration loading for NiftyScan.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Scan     ScanConfig     `mapstructure:"scan"     yaml:"scan"`
	Universe UniverseConfig `mapstructure:"universe" yaml:"universe"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// ScanConfig holds scan pipeline settings.
type ScanConfig struct {
	Workers int    `mapstructure:"workers" yaml:"workers"` // worker pool width, clamped to 1–20
	Preset  string `mapstructure:"preset"  yaml:"preset"`  // "tolerant" or "strict"
	SortBy  string `mapstructure:"sort_by" yaml:"sort_by"` // tie-break: "peg" or "roe"
	Debug   bool   `mapstructure:"debug"   yaml:"debug"`   // show per-ticker error table
}

// UniverseConfig holds sector universe fetch settings.
type UniverseConfig struct {
	CacheTTLSec int `mapstructure:"cache_ttl" yaml:"cache_ttl"` // seconds
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "console" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.niftyscan/config.yaml (home directory)
//  3. /etc/niftyscan/config.yaml (system)
//
// Environment variables override config file values.
// Format: NIFTYSCAN_<SECTION>_<KEY>, e.g., NIFTYSCAN_SCAN_WORKERS.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".niftyscan"))
	v.AddConfigPath("/etc/niftyscan")

	v.SetEnvPrefix("NIFTYSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("NIFTYSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Scan defaults. The provider penalizes high concurrency, so the worker
	// pool stays single-digit by default.
	v.SetDefault("scan.workers", 5)
	v.SetDefault("scan.preset", "tolerant")
	v.SetDefault("scan.sort_by", "peg")
	v.SetDefault("scan.debug", false)

	// Universe defaults. Sector composition changes rarely; 10 minutes.
	v.SetDefault("universe.cache_ttl", 600)

	// Logging defaults.
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
