// ABOUTME: OpenTelemetry tracing and latency metrics for provider calls
// ABOUTME: Uses the global providers, which are no-ops until an SDK is installed
package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/harper/guia/internal/llm"

type instruments struct {
	tracer   trace.Tracer
	duration metric.Float64Histogram
}

func newInstruments() (*instruments, error) {
	duration, err := otel.Meter(instrumentationName).Float64Histogram(
		"guia.llm.duration",
		metric.WithDescription("Latency of embedding and chat calls to the model provider"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &instruments{
		tracer:   otel.Tracer(instrumentationName),
		duration: duration,
	}, nil
}

// start opens a span for op and returns a func that records latency and ends it
func (in *instruments) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := in.tracer.Start(ctx, "llm."+op, trace.WithAttributes(attrs...))
	began := time.Now()

	return ctx, func(err error) {
		in.duration.Record(ctx, time.Since(began).Seconds(), metric.WithAttributes(
			attribute.String("op", op),
			attribute.Bool("error", err != nil),
		))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
