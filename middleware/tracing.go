package middleware

import (
	"context"

	"github.com/lestrrat-go/cloudstack"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/lestrrat-go/cloudstack"

// Tracing starts a client span for every call. A nil tp uses the global
// tracer provider.
func Tracing(tp trace.TracerProvider) cloudstack.Middleware {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)

	return cloudstack.Func(func(next cloudstack.Handler) cloudstack.HandlerFunc {
		return func(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
			ctx, span := tracer.Start(ctx, "cloudstack "+env.EndpointName,
				trace.WithSpanKind(trace.SpanKindClient),
				trace.WithAttributes(
					attribute.String("cloudstack.command", env.EndpointName),
					attribute.String("cloudstack.request_id", env.ID),
				),
			)
			defer span.End()

			res, err := next.Call(ctx, env)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}

			span.SetAttributes(
				attribute.Int("http.response.status_code", res.Status()),
				attribute.String("http.response.content_type", res.ContentType()),
			)
			return res, nil
		}
	})
}
