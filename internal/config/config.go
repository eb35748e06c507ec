// Package config loads application configuration from environment
// variables with an optional YAML file overlay. File values win over
// environment values; both win over struct-tag defaults.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "finstmt/internal/errors"
)

// envPrefix namespaces every environment variable, e.g. FINSTMT_PATHS_DATA_DIR.
const envPrefix = "FINSTMT"

// Config represents the complete application configuration
type Config struct {
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Defaults DefaultsConfig `yaml:"defaults" envconfig:"DEFAULTS"`
	Detect   DetectConfig   `yaml:"detect" envconfig:"DETECT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir       string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	OutputDir     string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"out"`
	TemplatesFile string `yaml:"templates_file" envconfig:"TEMPLATES_FILE" default:"data/templates.json"`
}

// DefaultsConfig holds fallbacks applied when a template or request does
// not specify them.
type DefaultsConfig struct {
	Currency string `yaml:"currency" envconfig:"CURRENCY" default:"USD"`
	Locale   string `yaml:"locale" envconfig:"LOCALE" default:"en"`
}

// DetectConfig bounds the structure detector's scans.
type DetectConfig struct {
	MaxHeaderScanRows int `yaml:"max_header_scan_rows" envconfig:"MAX_HEADER_SCAN_ROWS" default:"10"`
	MaxColumns        int `yaml:"max_columns" envconfig:"MAX_COLUMNS" default:"0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text"`
}

// Load loads configuration from environment variables and, when present,
// the config file at path (empty path means FINSTMT_CONFIG or
// "finstmt.yml").
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(envPrefix + "_CONFIG")
	}
	if path == "" {
		path = "finstmt.yml"
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	// Keys present in the file override environment and defaults;
	// absent keys keep whatever envconfig resolved.
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to parse config file", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, apperrors.NewConfigError("failed to read config file", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log level %q", c.Logging.Level), nil)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return apperrors.NewConfigError(fmt.Sprintf("invalid log format %q", c.Logging.Format), nil)
	}
	if len(c.Defaults.Currency) != 3 {
		return apperrors.NewConfigError(fmt.Sprintf("invalid default currency %q", c.Defaults.Currency), nil)
	}
	if c.Detect.MaxHeaderScanRows <= 0 {
		return apperrors.NewConfigError("max_header_scan_rows must be positive", nil)
	}
	return nil
}
