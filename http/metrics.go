package http

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/freekieb7/nano/http"

type serverMetrics struct {
	activeConns  metric.Int64UpDownCounter
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	decodeErrors metric.Int64Counter
}

func newServerMetrics(provider metric.MeterProvider) (*serverMetrics, error) {
	meter := provider.Meter(instrumentationName)

	activeConns, err := meter.Int64UpDownCounter("http.server.connections.active",
		metric.WithDescription("Number of open client connections"),
		metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of requests answered"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Time spent decoding, handling and encoding a request"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	decodeErrors, err := meter.Int64Counter("http.server.decode.errors",
		metric.WithDescription("Number of malformed request heads"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	return &serverMetrics{
		activeConns:  activeConns,
		requests:     requests,
		duration:     duration,
		decodeErrors: decodeErrors,
	}, nil
}

func (m *serverMetrics) connOpened() {
	m.activeConns.Add(context.Background(), 1)
}

func (m *serverMetrics) connClosed() {
	m.activeConns.Add(context.Background(), -1)
}

func (m *serverMetrics) decodeFailed() {
	m.decodeErrors.Add(context.Background(), 1)
}

func (m *serverMetrics) requestDone(ctx context.Context, method string, status int, start time.Time) {
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.Int("http.response.status_code", status),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, time.Since(start).Seconds(), attrs)
}
