// Package observability provides OpenTelemetry tracing and metrics for the
// container.
//
// Setup installs OTLP/HTTP exporters for metrics and traces when enabled in
// Config. Without it the global otel providers stay no-ops and every
// instrument below is free.
//
//	providers, err := observability.Setup(ctx, observability.Resource{Service: "billing"}, cfg)
//	defer providers.Shutdown(ctx)
//
// Instrumentation wraps the container's own instruments:
//
//	inst, _ := observability.NewInstrumentation(otel.GetTracerProvider(), otel.GetMeterProvider())
//	ctx, op := inst.StartCreate(ctx, "repository", "singleton")
//	defer op.End(err)
//
// ServiceHealth aggregates component health for probes and the startup summary.
package observability
