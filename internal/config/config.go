// Package config provides configuration management for tradelens.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	apperrors "tradelens/internal/errors"
)

// Config holds all application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DataConfig holds input and storage locations.
type DataConfig struct {
	SourceDir string `mapstructure:"source_dir"` // where trade CSVs are dropped
	DBPath    string `mapstructure:"db_path"`
}

// AnalysisConfig holds engine tuning.
type AnalysisConfig struct {
	Workers int `mapstructure:"workers"` // 0 or 1 = sequential
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `mapstructure:"level"` // debug, info, warn, error
	FileEnabled bool   `mapstructure:"file_enabled"`
	FilePath    string `mapstructure:"file_path"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	Color bool `mapstructure:"color"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradelens"
	}
	return filepath.Join(home, ".config", "tradelens")
}

// ConfigPath returns the path of the config file inside configDir. An empty
// configDir means the default directory.
func ConfigPath(configDir string) string {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}
	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the specified directory. If configDir is
// empty, uses the default config directory. A missing config file is not an
// error: a template is written for the next edit and defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if err := createTemplateConfig(configDir); err != nil {
				return nil, err
			}
		} else {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)
	expandPaths(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("data.source_dir", "~/trades")
	v.SetDefault("data.db_path", filepath.Join(configDir, "tradelens.db"))
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file_enabled", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "tradelens.log"))
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("ui.color", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADELENS_SOURCE_DIR"); v != "" {
		cfg.Data.SourceDir = v
	}
	if v := os.Getenv("TRADELENS_DB_PATH"); v != "" {
		cfg.Data.DBPath = v
	}
	if v := os.Getenv("TRADELENS_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func expandPaths(cfg *Config) {
	cfg.Data.SourceDir = expandHome(cfg.Data.SourceDir)
	cfg.Data.DBPath = expandHome(cfg.Data.DBPath)
	cfg.Logging.FilePath = expandHome(cfg.Logging.FilePath)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", apperrors.ErrConfigInvalid, c.Analysis.Workers)
	}

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid log level %q (must be debug, info, warn or error)", apperrors.ErrConfigInvalid, c.Logging.Level)
	}

	if c.Logging.MaxSizeMB < 0 {
		return fmt.Errorf("%w: max_size_mb must be non-negative", apperrors.ErrConfigInvalid)
	}
	if c.Logging.MaxBackups < 0 {
		return fmt.Errorf("%w: max_backups must be non-negative", apperrors.ErrConfigInvalid)
	}
	if c.Logging.MaxAgeDays < 0 {
		return fmt.Errorf("%w: max_age_days must be non-negative", apperrors.ErrConfigInvalid)
	}

	return nil
}
