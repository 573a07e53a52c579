// Package config provides configuration loading and validation for pyprune.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidLogLevel    = errors.New("invalid logging level")
	ErrInvalidLogFormat   = errors.New("invalid logging format")
	ErrInvalidMaxFileSize = errors.New("invalid max_file_size")
)

// Default configuration values.
const (
	defaultMaxFileSize = "1MB"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
)

// defaultExcludes are directory names never worth scanning.
var defaultExcludes = []string{
	".git", "__pycache__", ".venv", "venv", ".tox", ".mypy_cache",
	".pytest_cache", "node_modules", ".eggs", "*.egg-info", "build", "dist",
}

// Config holds all configuration for pyprune.
type Config struct {
	Aggressive  bool          `mapstructure:"aggressive"`
	Diff        bool          `mapstructure:"diff"`
	Exclude     []string      `mapstructure:"exclude"`
	MaxFileSize string        `mapstructure:"max_file_size"`
	Logging     LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables. An empty
// configPath searches for .pyprune.yaml in the working directory; a missing
// config file is not an error.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".pyprune")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
	}

	viperCfg.SetEnvPrefix("PYPRUNE")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	} else {
		schemaErr := validateSchema(viperCfg.AllSettings())
		if schemaErr != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", viperCfg.ConfigFileUsed(), schemaErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validate(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("aggressive", false)
	viperCfg.SetDefault("diff", false)
	viperCfg.SetDefault("exclude", defaultExcludes)
	viperCfg.SetDefault("max_file_size", defaultMaxFileSize)
	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", defaultLogFormat)
}

// validate checks semantic constraints the schema cannot express.
func validate(config *Config) error {
	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %s", ErrInvalidLogFormat, config.Logging.Format)
	}

	_, err := humanize.ParseBytes(config.MaxFileSize)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidMaxFileSize, config.MaxFileSize)
	}

	return nil
}

// MaxFileSizeBytes returns the parsed max_file_size limit in bytes.
func (c *Config) MaxFileSizeBytes() int64 {
	size, err := humanize.ParseBytes(c.MaxFileSize)
	if err != nil {
		return 0
	}

	return int64(size)
}
