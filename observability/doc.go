// Package observability wires OpenTelemetry tracing and metrics.
//
// Tracing and metrics export over OTLP/HTTP when enabled. When disabled the
// global no-op providers stay in place and every helper here is safe to call.
//
//	shutdown, err := observability.Setup(ctx, cfg)
//	defer shutdown(context.Background())
//
//	ctx, span := observability.StartSpan(ctx, "mediagen.prodia")
//	defer span.End()
package observability
