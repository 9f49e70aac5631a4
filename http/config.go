package http

import (
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Engine selects how connections are driven.
type Engine uint8

const (
	// EngineGoroutine serves every connection on its own goroutine.
	EngineGoroutine Engine = iota
	// EngineEventLoop serves connections on a fixed set of gnet event
	// loops.
	EngineEventLoop
)

func (e Engine) String() string {
	switch e {
	case EngineGoroutine:
		return "goroutine"
	case EngineEventLoop:
		return "eventloop"
	default:
		return "unknown"
	}
}

// ParseEngine maps a flag value to an Engine.
func ParseEngine(s string) (Engine, bool) {
	switch s {
	case "goroutine", "":
		return EngineGoroutine, true
	case "eventloop", "gnet":
		return EngineEventLoop, true
	}
	return EngineGoroutine, false
}

type Config struct {
	// Name is sent in the Server header of every response.
	Name       string
	Engine     Engine
	EventLoops int
	ReusePort  bool

	Logger        *slog.Logger
	MeterProvider metric.MeterProvider
}

func DefaultConfig() Config {
	return Config{
		Name:       DefaultServerName,
		Engine:     EngineGoroutine,
		EventLoops: runtime.NumCPU(),
	}
}

type Option func(*Config)

func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

func WithEngine(engine Engine) Option {
	return func(c *Config) {
		c.Engine = engine
	}
}

// WithEventLoops sets the number of event loops used by EngineEventLoop.
// Values below one are ignored.
func WithEventLoops(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.EventLoops = n
		}
	}
}

func WithReusePort(enabled bool) Option {
	return func(c *Config) {
		c.ReusePort = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(c *Config) {
		c.MeterProvider = provider
	}
}

func (c *Config) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Config) meterProvider() metric.MeterProvider {
	if c.MeterProvider == nil {
		return otel.GetMeterProvider()
	}
	return c.MeterProvider
}
