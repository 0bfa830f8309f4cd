package client

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

func (c *Client) startSpan(ctx context.Context, name string, d Descriptor) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", d.Method),
			attribute.String("path", d.Path),
		),
	)
}

func endSpan(span trace.Span, err error) {
	if err == nil {
		return
	}

	if e, ok := AsError(err); ok {
		span.SetAttributes(attribute.String("error.kind", e.Kind.String()), attribute.Int("http.status", e.Status))
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
