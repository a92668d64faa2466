package observability

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/cassandrastore/errors"
	"github.com/kbukum/cassandrastore/logger"
)

func newTestInstrumenter(t *testing.T) (*Instrumenter, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})
	return NewInstrumenter("session-store", tp, mp), exporter, reader
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	return total
}

func TestInstrumenter_Success(t *testing.T) {
	inst, exporter, reader := newTestInstrumenter(t)

	err := inst.Do(context.Background(), "session.get", func(ctx context.Context) error {
		return nil
	}, attribute.String(AttrConsistency, "QUORUM"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != SpanDBQuery {
		t.Errorf("expected span %q, got %q", SpanDBQuery, spans[0].Name)
	}
	found := map[string]string{}
	for _, a := range spans[0].Attributes {
		found[string(a.Key)] = a.Value.Emit()
	}
	if found[AttrDBOperation] != "session.get" || found[AttrDBSystem] != "cassandra" || found[AttrConsistency] != "QUORUM" {
		t.Errorf("unexpected attributes %v", found)
	}
	if found[AttrStatus] != "ok" {
		t.Errorf("expected status ok, got %q", found[AttrStatus])
	}

	if got := sumOf(t, reader, "operation.total"); got != 1 {
		t.Errorf("expected operation.total=1, got %d", got)
	}
	if got := sumOf(t, reader, "error.total"); got != 0 {
		t.Errorf("expected error.total=0, got %d", got)
	}
}

func TestInstrumenter_ErrorPassesThrough(t *testing.T) {
	inst, exporter, reader := newTestInstrumenter(t)

	want := errors.TransientStorage("session.set", "INSERT", fmt.Errorf("unavailable"))
	got := inst.Do(context.Background(), "session.set", func(ctx context.Context) error {
		return want
	})
	if got != want {
		t.Fatalf("expected the same error back, got %v", got)
	}

	span := exporter.GetSpans()[0]
	if span.Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", span.Status.Code)
	}
	var code string
	for _, a := range span.Attributes {
		if string(a.Key) == AttrErrorCode {
			code = a.Value.AsString()
		}
	}
	if code != string(errors.ErrCodeTransientStorage) {
		t.Errorf("expected error code attribute, got %q", code)
	}
	if n := sumOf(t, reader, "error.total"); n != 1 {
		t.Errorf("expected error.total=1, got %d", n)
	}
}

func TestInstrumenter_PlainErrorIsInternal(t *testing.T) {
	inst, exporter, _ := newTestInstrumenter(t)
	_ = inst.Do(context.Background(), "x", func(ctx context.Context) error { return fmt.Errorf("boom") })
	for _, a := range exporter.GetSpans()[0].Attributes {
		if string(a.Key) == AttrErrorCode && a.Value.AsString() != string(errors.ErrCodeInternal) {
			t.Errorf("expected INTERNAL_ERROR, got %q", a.Value.AsString())
		}
	}
}

func TestInstrumenter_ChildSpanContext(t *testing.T) {
	inst, exporter, _ := newTestInstrumenter(t)
	var inner context.Context
	_ = inst.Do(context.Background(), "metadata.get_feed", func(ctx context.Context) error {
		inner = ctx
		return nil
	})
	sc := exporter.GetSpans()[0].SpanContext
	if got := trace.SpanContextFromContext(inner); got.SpanID() != sc.SpanID() {
		t.Error("fn should receive the span context")
	}
}

func TestInstrumenter_CacheLookup(t *testing.T) {
	inst, _, reader := newTestInstrumenter(t)
	ctx := context.Background()
	inst.CacheLookup(ctx, false)
	inst.CacheLookup(ctx, true)
	inst.CacheLookup(ctx, true)
	if n := sumOf(t, reader, "cache.lookups"); n != 3 {
		t.Errorf("expected 3 cache lookups, got %d", n)
	}
}

func TestNewInstrumenter_GlobalProviders(t *testing.T) {
	inst := NewInstrumenter("metadata-store", nil, nil)
	if err := inst.Do(context.Background(), "noop", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewMetrics_Noop(t *testing.T) {
	m, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	ctx := context.Background()
	m.RecordOperation(ctx, "c", "op", "ok", time.Millisecond)
	m.RecordError(ctx, "TRANSIENT_STORAGE", "c")
	m.RecordCache(ctx, "c", true)
}

func TestSetSpanAttribute(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer tp.Shutdown(context.Background())

	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	SetSpanAttribute(ctx, "feed", "edugain")
	SetSpanAttribute(ctx, "rows", 3)
	SetSpanAttribute(ctx, "ttl", int64(60))
	SetSpanAttribute(ctx, "cached", true)
	SetSpanAttribute(ctx, "ignored", 1.5)
	span.End()

	attrs := exporter.GetSpans()[0].Attributes
	if len(attrs) != 4 {
		t.Errorf("expected 4 attributes, got %d: %v", len(attrs), attrs)
	}

	// no span in context is a no-op
	SetSpanAttribute(context.Background(), "k", "v")
}

func TestConfigDefaultsAndValidate(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" || cfg.SampleRate != 1.0 || cfg.MetricInterval != 15*time.Second {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled config should validate: %v", err)
	}

	cfg.Enabled = true
	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for sample_rate > 1")
	}
	cfg.SampleRate = 0.5
	cfg.Endpoint = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing endpoint")
	}
}

func TestSetupDisabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{}, logger.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestSetupEnabled(t *testing.T) {
	prevTP, prevMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	defer func() {
		otel.SetTracerProvider(prevTP)
		otel.SetMeterProvider(prevMP)
	}()

	cfg := Config{Enabled: true, Endpoint: "127.0.0.1:1", Insecure: true, SampleRate: 0.5}
	shutdown, err := Setup(context.Background(), cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if _, ok := otel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Error("expected the SDK tracer provider to be installed")
	}

	// Nothing listens on the endpoint; only check that shutdown returns.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = shutdown(ctx)
}
