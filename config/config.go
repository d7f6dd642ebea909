package config

import (
	"fmt"
	"time"

	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
	"github.com/kbukum/iockit/validation"
	"github.com/kbukum/iockit/version"
)

// DefaultShutdownTimeout bounds Close when ContainerConfig.ShutdownTimeout is unset.
const DefaultShutdownTimeout = 30 * time.Second

// Config contains the configuration every container application needs.
// Projects extend this by embedding it in their own config structs.
//
// Example:
//
//	type MyConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Database DBConfig `yaml:"database" mapstructure:"database"`
//	}
type Config struct {
	Name          string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version       string               `yaml:"version" mapstructure:"version"`
	Debug         bool                 `yaml:"debug" mapstructure:"debug"`
	Container     ContainerConfig      `yaml:"container" mapstructure:"container"`
	Logging       logger.Config        `yaml:"logging" mapstructure:"logging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ContainerConfig holds the container policy switches.
type ContainerConfig struct {
	// AllowCircularReferences lets singletons in creation expose an early
	// reference to break a cycle.
	AllowCircularReferences bool `yaml:"allow_circular_references" mapstructure:"allow_circular_references"`
	// AllowRawInjectionDespiteWrapping accepts a singleton whose early
	// reference was injected before a hook replaced it.
	AllowRawInjectionDespiteWrapping bool `yaml:"allow_raw_injection_despite_wrapping" mapstructure:"allow_raw_injection_despite_wrapping"`
	// AllowDefinitionOverriding lets a later registration replace an earlier
	// one with the same name.
	AllowDefinitionOverriding bool          `yaml:"allow_definition_overriding" mapstructure:"allow_definition_overriding"`
	ShutdownTimeout           time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout" validate:"min=0"`
	RegisterShutdownHook      bool          `yaml:"register_shutdown_hook" mapstructure:"register_shutdown_hook"`
}

// DefaultContainerConfig returns the container policy used when nothing is
// configured.
func DefaultContainerConfig() ContainerConfig {
	return ContainerConfig{
		AllowCircularReferences:   true,
		AllowDefinitionOverriding: true,
		ShutdownTimeout:           DefaultShutdownTimeout,
	}
}

// Default returns a Config with defaults applied for the named service.
func Default(name string) *Config {
	c := &Config{Name: name, Container: DefaultContainerConfig()}
	c.ApplyDefaults()
	return c
}

// GetConfig returns the base Config. When embedded in a larger struct the
// method is promoted, so the embedding struct exposes its base config.
func (c *Config) GetConfig() *Config {
	return c
}

// ApplyDefaults applies default values to the base configuration.
// Override this in embedding structs and call c.Config.ApplyDefaults() first.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Version == "" {
		c.Version = version.Get().Short()
	}
	if c.Container.ShutdownTimeout == 0 {
		c.Container.ShutdownTimeout = DefaultShutdownTimeout
	}
	c.Logging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates the base configuration fields.
// Override this in embedding structs and call c.Config.Validate() first.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}
