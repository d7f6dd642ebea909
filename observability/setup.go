package observability

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// Resource describes the process exporting telemetry.
type Resource struct {
	Service     string
	Version     string
	Environment string
}

func (r Resource) build() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			semconv.ServiceName(r.Service),
			semconv.ServiceVersion(r.Version),
			attribute.String("environment", r.Environment),
		),
	)
}

// Providers holds the SDK providers Setup installed. Nil fields were not
// enabled.
type Providers struct {
	Meter  *sdkmetric.MeterProvider
	Tracer *sdktrace.TracerProvider
}

// Setup installs the exporters enabled in cfg.
func Setup(ctx context.Context, res Resource, cfg Config) (*Providers, error) {
	p := &Providers{}
	if !cfg.Enabled() {
		return p, nil
	}

	r, err := res.build()
	if err != nil {
		return nil, err
	}
	if cfg.Metrics.Enabled {
		if p.Meter, err = InitMeter(ctx, r, cfg); err != nil {
			return nil, err
		}
	}
	if cfg.Tracing.Enabled {
		if p.Tracer, err = InitTracer(ctx, r, cfg); err != nil {
			_ = p.Shutdown(ctx)
			return nil, err
		}
	}
	return p, nil
}

// Shutdown flushes and stops every installed provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Tracer != nil {
		errs = append(errs, p.Tracer.Shutdown(ctx))
	}
	if p.Meter != nil {
		errs = append(errs, p.Meter.Shutdown(ctx))
	}
	return errors.Join(errs...)
}

// Instrumentation builds container instrumentation on the installed
// providers, falling back to the global ones for those not enabled.
func (p *Providers) Instrumentation() (*Instrumentation, error) {
	var tp trace.TracerProvider = otel.GetTracerProvider()
	var mp metric.MeterProvider = otel.GetMeterProvider()
	if p.Tracer != nil {
		tp = p.Tracer
	}
	if p.Meter != nil {
		mp = p.Meter
	}
	return NewInstrumentation(tp, mp)
}
