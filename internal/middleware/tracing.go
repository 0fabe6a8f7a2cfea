package middleware

import (
	"context"

	"github.com/keshon/slashbot/pkg/cmd"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/keshon/slashbot/internal/middleware"

// WithTracing opens a span per command. The span ends when the handler
// calls done, which may be after the handler returned.
func WithTracing(tp trace.TracerProvider) cmd.Middleware {
	tracer := tp.Tracer(tracerName)
	return func(next cmd.Handler) cmd.Handler {
		return func(ctx context.Context, inv *cmd.Invocation, done cmd.Done) {
			req := inv.Request
			ctx, span := tracer.Start(ctx, "command "+inv.Command,
				trace.WithAttributes(
					attribute.String("slashbot.transport", req.Transport),
					attribute.String("slashbot.channel_id", req.ChannelID),
					attribute.String("slashbot.request_id", req.RequestID),
					attribute.Int("slashbot.tokens", len(inv.Tokens)),
				),
			)
			next(ctx, inv, func(resp *cmd.Response, err error) {
				if err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, err.Error())
				}
				span.End()
				done(resp, err)
			})
		}
	}
}
