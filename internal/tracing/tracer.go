// Package tracing exports intersection activity as OpenTelemetry spans.
package tracing

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/junction/internal/intersection"
)

const instrumentationName = "github.com/flemzord/junction/internal/tracing"

// Span names.
const (
	SpanRun      = "simulation.run"
	SpanPassage  = "intersection.passage"
	SpanRotation = "intersection.rotation"
)

// Tracer turns intersection events into spans parented to a run span.
type Tracer struct {
	tracer trace.Tracer

	mu      sync.Mutex
	runCtx  context.Context
	runSpan trace.Span
}

// Compile-time interface check.
var _ intersection.Observer = (*Tracer)(nil)

// NewTracer creates a Tracer using spans from provider.
func NewTracer(provider trace.TracerProvider) *Tracer {
	return &Tracer{
		tracer: provider.Tracer(instrumentationName),
		runCtx: context.Background(),
	}
}

// BeginRun opens the run span that later events are attached to.
func (t *Tracer) BeginRun(runID string) {
	ctx, span := t.tracer.Start(context.Background(), SpanRun,
		trace.WithAttributes(attribute.String("run.id", runID)))

	t.mu.Lock()
	t.runCtx, t.runSpan = ctx, span
	t.mu.Unlock()
}

// EndRun closes the run span, if any.
func (t *Tracer) EndRun() {
	t.mu.Lock()
	span := t.runSpan
	t.runSpan = nil
	t.runCtx = context.Background()
	t.mu.Unlock()

	if span != nil {
		span.End()
	}
}

func (t *Tracer) parent() context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runCtx
}

// OnRotation implements intersection.Observer.
func (t *Tracer) OnRotation(ev intersection.RotationEvent) {
	_, span := t.tracer.Start(t.parent(), SpanRotation,
		trace.WithTimestamp(ev.At),
		trace.WithAttributes(
			attribute.Int("rotation.seq", ev.Seq),
			attribute.String("rotation.direction", ev.Direction.String()),
			attribute.String("rotation.previous", ev.Previous.String()),
			attribute.String("rotation.reason", string(ev.Reason)),
		))
	span.End(trace.WithTimestamp(ev.At))
}

// OnPassage implements intersection.Observer. The span covers the time
// from registration to grant.
func (t *Tracer) OnPassage(ev intersection.PassageEvent) {
	v := ev.Vehicle
	_, span := t.tracer.Start(t.parent(), SpanPassage,
		trace.WithTimestamp(ev.Registered),
		trace.WithAttributes(
			attribute.Int("vehicle.id", v.ID),
			attribute.String("vehicle.arrival", v.Arrival.String()),
			attribute.String("vehicle.departure", v.Departure.String()),
			attribute.Bool("vehicle.broken_down", v.BrokenDown),
			attribute.Bool("vehicle.congested", v.Congested),
			attribute.Int("vehicle.waited_seconds", v.WaitedSeconds),
			attribute.Int("intersection.occupancy", ev.Occupancy),
		))
	if v.Congested {
		span.AddEvent("congestion", trace.WithTimestamp(ev.Granted))
	}
	if !v.Passed {
		span.SetStatus(codes.Error, "vehicle did not pass")
	}
	span.End(trace.WithTimestamp(ev.Granted))
}
