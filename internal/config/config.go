package config

import (
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/thoreinstein/dreamctl/internal/descriptor"
	"github.com/thoreinstein/dreamctl/internal/logging"
	"github.com/thoreinstein/dreamctl/internal/paths"
)

// AppName is the application name used for config file naming.
const AppName = "dreamctl"

// Config represents the top-level configuration structure.
type Config struct {
	Version   int    `mapstructure:"version" yaml:"version"`
	DreamRoot string `mapstructure:"dream_root" yaml:"dream_root"`
	ParseMode string `mapstructure:"parse_mode" yaml:"parse_mode"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns a configuration with the built-in defaults.
func Default() *Config {
	return &Config{
		Version:   1,
		ParseMode: string(descriptor.ModeStrict),
		LogFormat: string(logging.FormatText),
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths (in order of precedence)
	viper.AddConfigPath(".")
	viper.AddConfigPath(filepath.Join(paths.ConfigHome(), AppName))

	viper.SetEnvPrefix("DREAMCTL")
	viper.AutomaticEnv()

	viper.SetDefault("version", 1)
	viper.SetDefault("parse_mode", string(descriptor.ModeStrict))
	viper.SetDefault("log_format", string(logging.FormatText))
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file.
// If path is empty, it searches in the default locations and falls back to
// defaults when no file is found.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			if path != "" {
				return nil, errors.Wrapf(err, "config file not found at %s", path)
			}
			// Implicit load without a file uses defaults.
		} else {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Wrap(errors.Join(errs...), "invalid configuration")
	}

	return &cfg, nil
}

// Mode returns the descriptor parse mode the configuration selects.
func (c *Config) Mode() descriptor.Mode {
	mode, err := descriptor.ParseMode(c.ParseMode)
	if err != nil {
		return descriptor.ModeStrict
	}
	return mode
}

// Format returns the log format the configuration selects.
func (c *Config) Format() logging.Format {
	if f, ok := logging.ParseFormat(c.LogFormat); ok {
		return f
	}
	return logging.FormatText
}
