package dispatch

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/opkernel/logging"
)

// Config defines tuning parameters for the Registry.
//
// Values come from DefaultConfig, then an optional YAML file, then
// environment variables (see LoadConfig).
//
// Example:
//
//	cfg := Config{
//	    AllowOverride:     true,
//	    WarmupConcurrency: 8,
//	}
type Config struct {
	// AllowOverride lets a registration replace an existing kernel for the
	// same operator and dispatch key. When false the second registration
	// fails with ErrDuplicateKernel.
	AllowOverride bool `yaml:"allow_override" env:"OPKERNEL_ALLOW_OVERRIDE"`

	// WarmupOnRegister materializes deferred kernels during Register instead
	// of on their first call.
	WarmupOnRegister bool `yaml:"warmup_on_register" env:"OPKERNEL_WARMUP_ON_REGISTER"`

	// WarmupConcurrency bounds how many deferred constructors Warmup runs at
	// once. Zero means no limit.
	WarmupConcurrency int `yaml:"warmup_concurrency" env:"OPKERNEL_WARMUP_CONCURRENCY"`

	// LogLevel and LogFormat configure the logger built by the opkernel
	// package; the registry itself only receives a Logger. LogFormat is one
	// of json, text (both slog) or zap.
	LogLevel  string `yaml:"log_level" env:"OPKERNEL_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"OPKERNEL_LOG_FORMAT"`
}

// DefaultConfig provides the default registry configuration:
//   - AllowOverride: false (duplicate registrations are errors)
//   - WarmupOnRegister: false (deferred kernels stay deferred)
//   - WarmupConcurrency: 4
//   - LogLevel: info, LogFormat: json
var DefaultConfig = Config{
	AllowOverride:     false,
	WarmupOnRegister:  false,
	WarmupConcurrency: 4,
	LogLevel:          "info",
	LogFormat:         "json",
}

// LoadConfig reads configuration from a YAML file and applies environment
// overrides. An empty path or a missing file yields the defaults plus
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field ranges and the log settings.
func (c Config) Validate() error {
	if c.WarmupConcurrency < 0 {
		return fmt.Errorf("warmup_concurrency must not be negative, got %d", c.WarmupConcurrency)
	}
	if _, err := logging.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	switch c.LogFormat {
	case "", "json", "text", "zap":
	default:
		return fmt.Errorf("invalid log_format %q, want json, text or zap", c.LogFormat)
	}
	return nil
}
