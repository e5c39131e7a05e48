// Package config provides configuration management for the journal.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"tradejournal/internal/analytics"
	apperrors "tradejournal/internal/errors"
	"tradejournal/internal/logging"
	"tradejournal/internal/store"
)

// FileName is the config file name without extension.
const FileName = "config"

// Config holds all application configuration.
type Config struct {
	Journal JournalConfig `mapstructure:"journal"`
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`

	// Dir is the directory the config was loaded from.
	Dir string `mapstructure:"-"`
}

// JournalConfig holds journal storage and analytics settings.
type JournalConfig struct {
	ValuePerR float64 `mapstructure:"value_per_r"`
	DataDir   string  `mapstructure:"data_dir"`
	Store     string  `mapstructure:"store"`    // "json", "sqlite"
	Timezone  string  `mapstructure:"timezone"` // IANA name, "Local" or empty
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// ServerConfig holds the local API server configuration.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/tradejournal"
	}
	return filepath.Join(home, ".config", "tradejournal")
}

// Default returns the configuration used when no file sets a value.
func Default(configDir string) *Config {
	logCfg := logging.DefaultLogConfig()
	return &Config{
		Journal: JournalConfig{
			ValuePerR: analytics.DefaultValuePerR,
			DataDir:   filepath.Join(configDir, "data"),
			Store:     store.BackendJSON,
			Timezone:  "Local",
		},
		Logging: LoggingConfig{
			Level:      logCfg.Level,
			Console:    false,
			File:       true,
			FilePath:   filepath.Join(configDir, "logs", "journal.log"),
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8420",
		},
		Dir: configDir,
	}
}

// Load reads config.toml from configDir, creating a template when it does
// not exist, then applies .env and environment overrides.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	// .env files never override variables already set.
	_ = godotenv.Load(filepath.Join(configDir, ".env"))
	_ = godotenv.Load()

	cfg := Default(configDir)

	if err := loadConfigFile(configDir, FileName, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	cfg.Journal.DataDir = expandHome(cfg.Journal.DataDir)
	cfg.Logging.FilePath = expandHome(cfg.Logging.FilePath)
	cfg.Dir = configDir

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, target)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateConfig(configDir, name); err != nil {
			return err
		}
	}

	return v.Unmarshal(target)
}

// setDefaults registers every field of cfg so that keys missing from the
// file keep their default values.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("journal.value_per_r", cfg.Journal.ValuePerR)
	v.SetDefault("journal.data_dir", cfg.Journal.DataDir)
	v.SetDefault("journal.store", cfg.Journal.Store)
	v.SetDefault("journal.timezone", cfg.Journal.Timezone)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.file_path", cfg.Logging.FilePath)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)

	v.SetDefault("server.addr", cfg.Server.Addr)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("TJ_VALUE_PER_R"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return apperrors.Wrapf(apperrors.ErrConfigInvalid, "TJ_VALUE_PER_R=%q", v)
		}
		cfg.Journal.ValuePerR = f
	}
	if v := os.Getenv("TJ_DATA_DIR"); v != "" {
		cfg.Journal.DataDir = v
	}
	if v := os.Getenv("TJ_STORE"); v != "" {
		cfg.Journal.Store = v
	}
	if v := os.Getenv("TJ_TIMEZONE"); v != "" {
		cfg.Journal.Timezone = v
	}
	if v := os.Getenv("TJ_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Journal.Store != store.BackendJSON && c.Journal.Store != store.BackendSQLite {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "store must be %q or %q, got %q",
			store.BackendJSON, store.BackendSQLite, c.Journal.Store)
	}
	if math.IsNaN(c.Journal.ValuePerR) || math.IsInf(c.Journal.ValuePerR, 0) {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "value_per_r must be a finite number")
	}
	if c.Journal.DataDir == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "data_dir is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "unknown log level %q", c.Logging.Level)
	}
	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAge < 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "log rotation limits must be non-negative")
	}
	return nil
}

// Location resolves the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Journal.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Journal.Timezone)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrConfigInvalid, "timezone %q", c.Journal.Timezone)
	}
	return loc, nil
}

// Params returns the analytics parameters for this configuration.
func (c *Config) Params() analytics.Params {
	loc, err := c.Location()
	if err != nil {
		loc = time.Local
	}
	return analytics.Params{ValuePerR: c.Journal.ValuePerR, Location: loc}
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}

// Path returns the config file path.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, FileName+".toml")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
