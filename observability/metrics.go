package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricInstancesCreated = "iockit.instances.created"
	MetricCreationDuration = "iockit.instance.creation.duration"
	MetricInstancesDestroy = "iockit.instances.destroyed"
	MetricResolveErrors    = "iockit.resolve.errors"
	MetricGenerations      = "iockit.generations"
)

// Metrics holds the container's metric instruments.
type Metrics struct {
	created     metric.Int64Counter
	duration    metric.Float64Histogram
	destroyed   metric.Int64Counter
	errors      metric.Int64Counter
	generations metric.Int64UpDownCounter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	created, err := meter.Int64Counter(MetricInstancesCreated,
		metric.WithDescription("Managed instances created, by scope and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricInstancesCreated, err)
	}

	duration, err := meter.Float64Histogram(MetricCreationDuration,
		metric.WithDescription("Duration of managed instance creation in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricCreationDuration, err)
	}

	destroyed, err := meter.Int64Counter(MetricInstancesDestroy,
		metric.WithDescription("Managed instances destroyed, by scope"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricInstancesDestroy, err)
	}

	errs, err := meter.Int64Counter(MetricResolveErrors,
		metric.WithDescription("Failed resolutions by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricResolveErrors, err)
	}

	generations, err := meter.Int64UpDownCounter(MetricGenerations,
		metric.WithDescription("Active container generations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricGenerations, err)
	}

	return &Metrics{
		created:     created,
		duration:    duration,
		destroyed:   destroyed,
		errors:      errs,
		generations: generations,
	}, nil
}

// RecordCreated records one finished creation.
func (m *Metrics) RecordCreated(ctx context.Context, scope, status string, d time.Duration) {
	m.created.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String(AttrStatus, status),
	))
	m.duration.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("scope", scope),
	))
}

// RecordDestroyed records n destroyed instances.
func (m *Metrics) RecordDestroyed(ctx context.Context, scope string, n int) {
	if n <= 0 {
		return
	}
	m.destroyed.Add(ctx, int64(n), metric.WithAttributes(attribute.String("scope", scope)))
}

// RecordResolveError records a failed resolution.
func (m *Metrics) RecordResolveError(ctx context.Context, code string) {
	m.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", code)))
}

// GenerationStarted increments the active generation gauge.
func (m *Metrics) GenerationStarted(ctx context.Context) {
	m.generations.Add(ctx, 1)
}

// GenerationEnded decrements the active generation gauge.
func (m *Metrics) GenerationEnded(ctx context.Context) {
	m.generations.Add(ctx, -1)
}
