package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartOpSpan starts a new span for a single I/O operation.
func StartOpSpan(ctx context.Context, tracer trace.Tracer, op string, offset, size int64) (context.Context, trace.Span) {
	ctx, span := tracer.Start(ctx, "io "+op,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	span.SetAttributes(
		attribute.String("io.operation", op),
		attribute.Int64("io.offset", offset),
		attribute.Int64("io.size", size),
	)
	return ctx, span
}

// EndSpan finishes a span, recording error status if applicable.
func EndSpan(span trace.Span, err error, attrs ...attribute.KeyValue) {
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
