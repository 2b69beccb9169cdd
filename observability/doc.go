// Package observability provides OpenTelemetry tracing and metrics for tool
// runs, plus the health report served by the API.
//
// Setup wires both exporters from configuration and returns the run
// instruments; with telemetry disabled everything records to no-op providers:
//
//	metrics, shutdown, err := observability.Setup(ctx, cfg.Telemetry, "edlflash", version.Version, cfg.Environment)
//	defer shutdown(context.Background())
//
// Spans and attributes:
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanToolRun)
//	defer span.End()
//	observability.SetSpanAttribute(ctx, observability.AttrLabel, "Send loader")
package observability
