package middleware

import (
	"context"
	"time"

	"github.com/lestrrat-go/cloudstack"
	"github.com/rs/zerolog"
)

// Log field names.
const (
	FieldCommand     = "command"
	FieldRequestID   = "request_id"
	FieldStatus      = "status"
	FieldContentType = "content_type"
	FieldDuration    = "duration"
	FieldComponent   = "component"
)

// Logging logs one event per call. Successful calls are logged at debug
// level, failures at error level. Parameter values are never logged since
// they may carry secrets.
func Logging(l zerolog.Logger) cloudstack.Middleware {
	logger := l.With().Str(FieldComponent, "cloudstack").Logger()
	return cloudstack.Func(func(next cloudstack.Handler) cloudstack.HandlerFunc {
		return func(ctx context.Context, env *cloudstack.Environment) (*cloudstack.Response, error) {
			start := time.Now()
			res, err := next.Call(ctx, env)

			var event *zerolog.Event
			if err != nil {
				event = logger.Error().Err(err)
			} else {
				event = logger.Debug().
					Int(FieldStatus, res.Status()).
					Str(FieldContentType, res.ContentType())
			}
			event.
				Str(FieldCommand, env.EndpointName).
				Str(FieldRequestID, env.ID).
				Strs("params", env.Params.Keys()).
				Dur(FieldDuration, time.Since(start)).
				Msg("cloudstack call")
			return res, err
		}
	})
}
