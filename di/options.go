package di

import (
	"github.com/kbukum/iockit/config"
	"github.com/kbukum/iockit/logger"
	"github.com/kbukum/iockit/observability"
)

// Option configures a Container.
type Option func(*options)

type options struct {
	cfg             config.ContainerConfig
	log             *logger.Logger
	instrumentation *observability.Instrumentation
}

func defaultOptions() *options {
	return &options{cfg: config.DefaultContainerConfig()}
}

// WithConfig sets the container policy.
func WithConfig(cfg config.ContainerConfig) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger. Defaults to the global logger tagged
// component=container.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithInstrumentation sets the tracer and metrics used for refresh, close
// and instance creation. Defaults to no-op instrumentation.
func WithInstrumentation(inst *observability.Instrumentation) Option {
	return func(o *options) { o.instrumentation = inst }
}
