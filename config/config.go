package config

import (
	"fmt"
	"time"

	"github.com/kbukum/typedflow/logger"
	"github.com/kbukum/typedflow/observability"
	"github.com/kbukum/typedflow/validation"
)

// Empty-fold policies.
const (
	EmptyFoldError  = "error"
	EmptyFoldAbsent = "absent"
)

// Config is the configuration for a process that builds and runs flows.
type Config struct {
	Name        string          `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string          `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version     string          `yaml:"version" mapstructure:"version"`
	Logging     logger.Config   `yaml:"logging" mapstructure:"logging"`
	Engine      EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Telemetry   TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Catalog     CatalogConfig   `yaml:"catalog" mapstructure:"catalog"`
}

// EngineConfig controls how flows run.
type EngineConfig struct {
	// EmptyFold decides what a fold without an initial value does when it
	// receives no items: "error" fails the run, "absent" omits the output.
	EmptyFold string `yaml:"empty_fold" mapstructure:"empty_fold" validate:"oneof=error absent"`
	// Tracing opens a span per run.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics records run counters and durations.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
}

// TelemetryConfig configures the OTLP exporters used when tracing or metrics
// are enabled.
type TelemetryConfig struct {
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// CatalogConfig locates YAML flow definitions.
type CatalogConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	if c.Engine.EmptyFold == "" {
		c.Engine.EmptyFold = EmptyFoldError
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	if c.Telemetry.Interval == 0 {
		c.Telemetry.Interval = 15 * time.Second
	}
	if c.Catalog.Dir == "" {
		c.Catalog.Dir = "flows"
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}

// TracerConfig returns the tracer settings for this configuration.
func (c *Config) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// MeterConfig returns the meter settings for this configuration.
func (c *Config) MeterConfig() observability.MeterConfig {
	return observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		Interval:       c.Telemetry.Interval,
	}
}

// Load resolves, reads, defaults and validates the configuration for name.
func Load(name string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(name, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
