// Package config loads the eddyscan configuration using viper.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ruuvi/ble"
)

// EnvPrefix is prepended to environment overrides, e.g. EDDYSCAN_LOG_LEVEL.
const EnvPrefix = "EDDYSCAN"

// Config is the top-level configuration.
type Config struct {
	Backend    string        `mapstructure:"backend"` // native | dummy | auto
	Device     int           `mapstructure:"device"`
	Sudo       bool          `mapstructure:"sudo"`
	Reset      bool          `mapstructure:"reset"`
	Duplicates bool          `mapstructure:"duplicates"`
	Passive    bool          `mapstructure:"passive"`
	Timeout    time.Duration `mapstructure:"timeout"`
	Cache      CacheConfig   `mapstructure:"cache"`
	Log        LogConfig     `mapstructure:"log"`
}

// CacheConfig configures the sighting cache. An empty File disables it.
type CacheConfig struct {
	File string `mapstructure:"file"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string        `mapstructure:"level"`
	File  LogFileConfig `mapstructure:"file"`
}

// LogFileConfig configures a rotated log file. An empty Path logs to stderr.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// Load reads the configuration file at path, if any, applies environment
// overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "auto")
	v.SetDefault("device", 0)
	v.SetDefault("sudo", true)
	v.SetDefault("reset", true)
	v.SetDefault("duplicates", true)
	v.SetDefault("passive", false)
	v.SetDefault("timeout", "10s")

	v.SetDefault("cache.file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.path", "")
	v.SetDefault("log.file.max_size_mb", 10)
	v.SetDefault("log.file.max_backups", 3)
	v.SetDefault("log.file.max_age_days", 28)
	v.SetDefault("log.file.compress", false)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Backend) {
	case "auto", "native", "dummy":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Device < 0 {
		return fmt.Errorf("invalid device %d", c.Device)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("negative timeout %v", c.Timeout)
	}
	return nil
}

// Options turns the capture settings into session options.
func (c *Config) Options() []ble.Option {
	return []ble.Option{
		ble.OptDevice(c.Device),
		ble.OptSudo(c.Sudo),
		ble.OptReset(c.Reset),
		ble.OptDuplicates(c.Duplicates),
		ble.OptPassive(c.Passive),
	}
}

// Writer returns where log output should go: a rotated file when configured,
// stderr otherwise.
func (c *LogConfig) Writer() io.Writer {
	if c.File.Path == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   c.File.Path,
		MaxSize:    c.File.MaxSizeMB,
		MaxBackups: c.File.MaxBackups,
		MaxAge:     c.File.MaxAgeDays,
		Compress:   c.File.Compress,
	}
}

// Apply configures the package logger.
func (c *LogConfig) Apply() error {
	if err := ble.SetLogLevel(c.Level); err != nil {
		return err
	}
	return ble.SetLogOutput(c.Writer())
}
