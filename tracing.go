package whoops

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// recordSpan marks the span of ctx as failed with the details of event.
func recordSpan(ctx context.Context, event *Event) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("exception.type", event.Type()),
		attribute.String("exception.message", event.Message()),
		attribute.String("whoops.event_id", event.ID),
	}
	if event.Panic {
		attrs = append(attrs, attribute.Bool("exception.escaped", true))
	}

	span.SetStatus(codes.Error, event.Message())
	span.SetAttributes(attrs...)
	span.RecordError(event.Err)
}
