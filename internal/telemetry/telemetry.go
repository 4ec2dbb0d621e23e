// Package telemetry wraps OpenTelemetry tracing and metrics behind the
// narrow surface the runtime needs, mirroring the teacher's clue-backed
// Tracer/Metrics wrappers but scoped to ABP's own instrumentation names.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/agentbackplane/abp"

// Span is the narrow span surface callers need: ending it and recording a
// terminal error.
type Span interface {
	End()
	RecordError(err error)
}

// Tracer starts spans against the global OTEL TracerProvider. Configure the
// provider process-wide before constructing a Tracer.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer bound to the module's instrumentation name.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(instrumentationName)}
}

// Start begins a span named name, returning the derived context and span
// handle.
func (t *Tracer) Start(ctx context.Context, name string) (context.Context, Span) {
	newCtx, span := t.tracer.Start(ctx, name)
	return newCtx, otelSpan{span: span}
}

type otelSpan struct{ span trace.Span }

func (s otelSpan) End() { s.span.End() }

func (s otelSpan) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
}

// Metrics records counters and durations against the global OTEL
// MeterProvider.
type Metrics struct {
	meter metric.Meter
}

// NewMetrics returns a Metrics recorder bound to the module's
// instrumentation name.
func NewMetrics() *Metrics {
	return &Metrics{meter: otel.Meter(instrumentationName)}
}

// IncCounter increments the named counter by value, tagged with the given
// attribute key-value pairs (k1, v1, k2, v2, ...).
func (m *Metrics) IncCounter(name string, value float64, tags ...string) {
	counter, err := m.meter.Float64Counter(name)
	if err != nil {
		return
	}
	counter.Add(context.Background(), value, metric.WithAttributes(tagsToAttrs(tags)...))
}

// RecordDuration records a duration histogram.
func (m *Metrics) RecordDuration(name string, d time.Duration, tags ...string) {
	histogram, err := m.meter.Float64Histogram(name)
	if err != nil {
		return
	}
	histogram.Record(context.Background(), d.Seconds(), metric.WithAttributes(tagsToAttrs(tags)...))
}

func tagsToAttrs(tags []string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(tags)/2)
	for i := 0; i+1 < len(tags); i += 2 {
		attrs = append(attrs, attribute.String(tags[i], tags[i+1]))
	}
	return attrs
}
