// Package observability provides OpenTelemetry tracing and metrics for flow
// runs.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("etl"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("etl"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("etl"))
//	f = f.With(flow.WithMetrics(metrics), flow.WithTracing(true))
//
// Each run is wrapped in a RunContext, which opens a "flow.run" span and
// records flow.runs, flow.run.duration, flow.items and flow.errors.
package observability
