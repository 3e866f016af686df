// Package config loads adhquery settings from a YAML file and ADHQUERY_
// environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvPrefix is prepended to environment variable overrides, e.g.
// ADHQUERY_STORE_PATH for store.path.
const EnvPrefix = "ADHQUERY"

// Config holds all application configuration
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Reports   ReportsConfig   `mapstructure:"reports"`
	Templates TemplatesConfig `mapstructure:"templates"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

type StoreConfig struct {
	Path        string `mapstructure:"path"`
	TablePrefix string `mapstructure:"table_prefix"`
}

// ReportsConfig points at extra report definitions, loaded on top of the
// built-in reports.
type ReportsConfig struct {
	Dir string `mapstructure:"dir"`
}

// TemplatesConfig points at extra query templates, loaded on top of the
// embedded ones.
type TemplatesConfig struct {
	Dir string `mapstructure:"dir"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		Log:   LogConfig{Level: "info"},
		Store: StoreConfig{Path: "adhquery.db"},
	}
}

// Load reads configuration from path, or from adhquery.yaml in the current
// directory when path is empty. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("adhquery")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := GetDefaults()
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.development", defaults.Log.Development)
	v.SetDefault("store.path", defaults.Store.Path)
	v.SetDefault("store.table_prefix", defaults.Store.TablePrefix)
	v.SetDefault("reports.dir", defaults.Reports.Dir)
	v.SetDefault("templates.dir", defaults.Templates.Dir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs error
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("log.level: %w", err))
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		errs = multierr.Append(errs, fmt.Errorf("store.path cannot be empty"))
	}
	if strings.ContainsAny(c.Store.TablePrefix, "\"` ") {
		errs = multierr.Append(errs, fmt.Errorf("store.table_prefix %q contains invalid characters", c.Store.TablePrefix))
	}
	return errs
}

// NewLogger builds the application logger described by cfg.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	config := zap.NewProductionConfig()
	if cfg.Log.Development {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(level)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	return config.Build()
}
