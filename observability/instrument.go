package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/cassandrastore/errors"
)

// Instrumenter traces and meters the operations of one component.
type Instrumenter struct {
	component string
	tracer    trace.Tracer
	metrics   *Metrics
}

// NewInstrumenter builds an Instrumenter for component. Nil providers fall
// back to the global ones, which are no-ops until InitTracer/InitMeter run.
// If the meter rejects an instrument, metrics are skipped and spans still work.
func NewInstrumenter(component string, tp trace.TracerProvider, mp metric.MeterProvider) *Instrumenter {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	m, err := NewMetrics(mp.Meter(instrumentationName))
	if err != nil {
		m = nil
	}
	return &Instrumenter{
		component: component,
		tracer:    tp.Tracer(instrumentationName),
		metrics:   m,
	}
}

// Do runs fn inside a "db.query" span tagged with operation and records its
// outcome. The error returned by fn is passed through unchanged.
func (i *Instrumenter) Do(ctx context.Context, operation string, fn func(ctx context.Context) error, attrs ...attribute.KeyValue) error {
	start := time.Now()
	ctx, span := i.tracer.Start(ctx, SpanDBQuery,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrDBSystem, dbSystemCassandra),
			attribute.String(AttrDBOperation, operation),
			attribute.String(AttrComponent, i.component),
		),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	err := fn(ctx)
	status := "ok"
	if err != nil {
		status = "error"
		code := string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorCode, code))
		if i.metrics != nil {
			i.metrics.RecordError(ctx, code, i.component)
		}
	}
	span.SetAttributes(attribute.String(AttrStatus, status))

	if i.metrics != nil {
		i.metrics.RecordOperation(ctx, i.component, operation, status, time.Since(start))
	}
	return err
}

// CacheLookup records a cache hit or miss for this component.
func (i *Instrumenter) CacheLookup(ctx context.Context, hit bool) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.Bool("cache.hit", hit))
	if i.metrics != nil {
		i.metrics.RecordCache(ctx, i.component, hit)
	}
}
