package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	ScenarioKey   = attribute.Key("crankbench.scenario")
	RunIDKey      = attribute.Key("crankbench.run_id")
	TaskCountKey  = attribute.Key("crankbench.task_count")
	WorkSizeKey   = attribute.Key("crankbench.work_size")
	UnitKey       = attribute.Key("crankbench.unit")
	BytesKey      = attribute.Key("crankbench.bytes")
	PriceUSDKey   = attribute.Key("crankbench.price_usd")
	PrimesKey     = attribute.Key("crankbench.primes")
	RangeStartKey = attribute.Key("crankbench.range_start")
	RangeEndKey   = attribute.Key("crankbench.range_end")
	RecordsKey    = attribute.Key("crankbench.records")
	FailuresKey   = attribute.Key("crankbench.failures")
)

// StartScenarioSpan opens the root span for one scenario run. An empty runID
// is left off the span.
func StartScenarioSpan(ctx context.Context, tracer trace.Tracer, scenario, runID string, taskCount, workSize int) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		ScenarioKey.String(scenario),
		TaskCountKey.Int(taskCount),
		WorkSizeKey.Int(workSize),
	}
	if runID != "" {
		attrs = append(attrs, RunIDKey.String(runID))
	}
	return tracer.Start(ctx, "scenario "+scenario, trace.WithAttributes(attrs...))
}

// StartUnitSpan opens a child span for a single work unit.
func StartUnitSpan(ctx context.Context, tracer trace.Tracer, scenario string, unit int) (context.Context, trace.Span) {
	return tracer.Start(ctx, scenario+" unit", trace.WithAttributes(
		ScenarioKey.String(scenario),
		UnitKey.Int(unit),
	))
}

// EndSpan attaches attrs, sets the status from err and ends span.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	switch err {
	case nil:
		span.SetStatus(codes.Ok, "")
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InjectHTTPHeaders writes the W3C trace context of ctx into headers.
func InjectHTTPHeaders(ctx context.Context, headers http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
