package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	apperrors "github.com/kbukum/iockit/errors"
)

// Instrumentation bundles the container's tracer and metrics.
type Instrumentation struct {
	tracer  trace.Tracer
	metrics *Metrics
}

// NewInstrumentation creates instruments on the given providers.
func NewInstrumentation(tp trace.TracerProvider, mp metric.MeterProvider) (*Instrumentation, error) {
	metrics, err := NewMetrics(mp.Meter(InstrumentationName))
	if err != nil {
		return nil, err
	}
	return &Instrumentation{
		tracer:  tp.Tracer(InstrumentationName),
		metrics: metrics,
	}, nil
}

// Noop returns instrumentation that records nothing.
func Noop() *Instrumentation {
	inst, _ := NewInstrumentation(tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	return inst
}

// Metrics returns the metric instruments.
func (i *Instrumentation) Metrics() *Metrics { return i.metrics }

// Operation is one traced and measured container operation.
type Operation struct {
	ctx   context.Context
	span  trace.Span
	start time.Time
	scope string
	inst  *Instrumentation
	kind  string
}

// StartCreate starts the span for creating one managed instance.
func (i *Instrumentation) StartCreate(ctx context.Context, name, scope string) (context.Context, *Operation) {
	ctx, span := i.tracer.Start(ctx, SpanCreate, trace.WithAttributes(
		attribute.String(AttrBean, name),
		attribute.String(AttrScope, scope),
	))
	return ctx, &Operation{ctx: ctx, span: span, start: time.Now(), scope: scope, inst: i, kind: SpanCreate}
}

// StartRefresh starts the span for building a generation.
func (i *Instrumentation) StartRefresh(ctx context.Context, generation string) (context.Context, *Operation) {
	ctx, span := i.tracer.Start(ctx, SpanRefresh, trace.WithAttributes(
		attribute.String(AttrGeneration, generation),
	))
	return ctx, &Operation{ctx: ctx, span: span, start: time.Now(), inst: i, kind: SpanRefresh}
}

// StartClose starts the span for tearing a generation down.
func (i *Instrumentation) StartClose(ctx context.Context, generation string) (context.Context, *Operation) {
	ctx, span := i.tracer.Start(ctx, SpanClose, trace.WithAttributes(
		attribute.String(AttrGeneration, generation),
	))
	return ctx, &Operation{ctx: ctx, span: span, start: time.Now(), inst: i, kind: SpanClose}
}

// Duration returns the time since the operation started.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.start)
}

// End finishes the span and records the outcome.
func (op *Operation) End(err error) {
	status := "ok"
	if err != nil {
		status = "error"
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		if appErr, ok := apperrors.AsAppError(err); ok {
			op.span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
		}
	}
	op.span.SetAttributes(attribute.String(AttrStatus, status))
	op.span.End()

	if op.kind == SpanCreate {
		op.inst.metrics.RecordCreated(op.ctx, op.scope, status, op.Duration())
	}
}

// RecordResolveError records a failed top-level resolution.
func (i *Instrumentation) RecordResolveError(ctx context.Context, err error) {
	code := "UNKNOWN"
	if appErr, ok := apperrors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	i.metrics.RecordResolveError(ctx, code)
}
