package bootstrap

import (
	"time"

	"github.com/kbukum/iockit/di"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
)

// Option configures the App during creation.
// Options are non-generic so they can be used with any config type.
type Option func(*appOptions)

// appOptions collects all option values before applying to App.
type appOptions struct {
	logger          *logger.Logger
	container       *di.Container
	instrumentation *observability.Instrumentation
	gracefulTimeout *time.Duration
}

// resolveOptions applies all options and returns the collected values.
func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets a custom logger for the application.
// If not set, the logger is initialized from the config's Logging field.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
// Defaults to the container's shutdown timeout.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainer uses c instead of building a container from the config.
func WithContainer(c *di.Container) Option {
	return func(o *appOptions) {
		o.container = c
	}
}

// WithInstrumentation uses inst instead of the exporters configured under
// Observability.
func WithInstrumentation(inst *observability.Instrumentation) Option {
	return func(o *appOptions) {
		o.instrumentation = inst
	}
}
