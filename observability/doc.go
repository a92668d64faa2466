// Package observability wires OpenTelemetry tracing and metrics into the
// stores.
//
// Every store operation runs through an Instrumenter, which opens a
// "db.query" span and records operation count, latency and errors:
//
//	inst := observability.NewInstrumenter("session-store", nil, nil)
//	err := inst.Do(ctx, "session.get", func(ctx context.Context) error { ... })
//
// The CLI exports both signals over OTLP/HTTP:
//
//	shutdown, err := observability.Setup(ctx, cfg, log)
//	defer shutdown(ctx)
package observability
