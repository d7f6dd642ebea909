package observability

import (
	"fmt"
	"time"
)

// Config configures the OTLP exporters.
type Config struct {
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	// Insecure allows plain-HTTP export (for development).
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Metrics  MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
	Tracing  TracingConfig `yaml:"tracing" mapstructure:"tracing"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Interval is the metric export interval.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// TracingConfig configures trace export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SampleRate is the sampling rate (0.0 to 1.0).
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.Metrics.Interval <= 0 {
		c.Metrics.Interval = 15 * time.Second
	}
	if c.Tracing.Enabled && c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if (c.Metrics.Enabled || c.Tracing.Enabled) && c.Endpoint == "" {
		return fmt.Errorf("observability.endpoint is required when export is enabled")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("observability.tracing.sample_rate must be between 0 and 1 (got: %v)", c.Tracing.SampleRate)
	}
	return nil
}

// Enabled reports whether any exporter is configured.
func (c *Config) Enabled() bool {
	return c.Metrics.Enabled || c.Tracing.Enabled
}
