package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/anams/page-server"

// Span attribute keys for the page server domain.
var (
	AttrDocumentID = attribute.Key("pageserver.document.id")
	AttrLocation   = attribute.Key("pageserver.document.location")
	AttrOutcome    = attribute.Key("pageserver.resolve.outcome")
	AttrBackend    = attribute.Key("pageserver.storage.backend")
	AttrRegistry   = attribute.Key("pageserver.registry.mode")
	AttrModel      = attribute.Key("pageserver.model.key")
	AttrClass      = attribute.Key("pageserver.model.class")
)

// Tracer returns the project-wide OTel tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan creates a new span with the given name and optional attributes.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := Tracer().Start(ctx, name)
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
	return ctx, span
}

// SetSpanError records an error on the span and sets its status to Error.
func SetSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanOK sets the span status to OK.
func SetSpanOK(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}
