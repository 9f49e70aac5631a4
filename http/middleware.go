package http

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const HeaderRequestID = "X-Request-Id"

type requestIDKey struct{}

// RecoverMiddleware turns a panicking handler into an ErrHandlerPanic
// failure, answered with a 500.
func RecoverMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(req *Request, res *Response) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
				}
			}()

			return next(req, res)
		}
	}
}

// RequestIDMiddleware reuses the X-Request-Id of the request or generates
// a new one, and echoes it on the response.
func RequestIDMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(req *Request, res *Response) error {
			id, ok := req.Header(HeaderRequestID)
			if !ok || id == "" {
				id = uuid.NewString()
			}

			req.SetContext(context.WithValue(req.Context(), requestIDKey{}, id))
			res.WithHeader(HeaderRequestID, id)

			return next(req, res)
		}
	}
}

func RequestIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// TracingMiddleware starts a server span per request, continuing a trace
// propagated in the request headers.
func TracingMiddleware(tracer trace.Tracer) Middleware {
	return func(next Handler) Handler {
		return func(req *Request, res *Response) error {
			ctx := otel.GetTextMapPropagator().Extract(req.Context(), headerCarrier{req: req})

			name := req.method
			if req.route != "" {
				name += " " + req.route
			}

			ctx, span := tracer.Start(ctx, name,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					attribute.String("http.request.method", req.method),
					attribute.String("url.path", req.path),
					attribute.String("http.route", req.route),
				))
			defer span.End()

			req.SetContext(ctx)

			err := next(req, res)
			if err == nil {
				err = res.err
			}

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.SetAttributes(attribute.Int("http.response.status_code", StatusInternalServerError))
				return err
			}

			span.SetAttributes(attribute.Int("http.response.status_code", res.code))
			if res.code >= StatusInternalServerError {
				span.SetStatus(codes.Error, res.reason)
			}
			return nil
		}
	}
}

// headerCarrier reads propagation fields from request headers. Injecting
// is not supported.
type headerCarrier struct {
	req *Request
}

var _ propagation.TextMapCarrier = headerCarrier{}

func (c headerCarrier) Get(key string) string {
	v, _ := c.req.Header(key)
	return v
}

func (c headerCarrier) Set(key, value string) {}

func (c headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.req.headers))
	for _, h := range c.req.headers {
		keys = append(keys, string(h.Name))
	}
	return keys
}

// AccessLogMiddleware writes one line per request to logger.
func AccessLogMiddleware(logger zerolog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(req *Request, res *Response) error {
			start := time.Now()

			err := next(req, res)

			status := res.code
			event := logger.Info()
			if err != nil || res.err != nil {
				status = StatusInternalServerError
				event = logger.Error()
				if err != nil {
					event = event.Err(err)
				} else {
					event = event.Err(res.err)
				}
			}

			if id, ok := RequestIDFromContext(req.Context()); ok {
				event = event.Str("request_id", id)
			}

			event.
				Str("method", req.method).
				Str("path", req.path).
				Int("status", status).
				Int("bytes", res.bodyLen()).
				Dur("duration", time.Since(start)).
				Msg("request")

			return err
		}
	}
}
