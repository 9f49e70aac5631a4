package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/freekieb7/nano/http"
	"github.com/freekieb7/nano/telemetry"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const name = "github.com/freekieb7/nano/example"

var (
	tracer = otel.Tracer(name)
	meter  = otel.Meter(name)
)

type settings struct {
	Theme    string `json:"theme"`
	Language string `json:"language"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() (err error) {
	addr := flag.String("addr", "0.0.0.0:8080", "address to listen on")
	engine := flag.String("engine", "goroutine", "connection engine: goroutine or eventloop")
	loops := flag.Int("loops", 8, "event loops used by the eventloop engine")
	reusePort := flag.Bool("reuseport", false, "set SO_REUSEPORT on the listener")
	withOtel := flag.Bool("otel", false, "export traces, metrics and logs over OTLP/gRPC")
	flag.Parse()

	eng, ok := http.ParseEngine(*engine)
	if !ok {
		return errors.New("unknown engine " + strconv.Quote(*engine))
	}

	// Handle SIGINT (CTRL+C) gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if *withOtel {
		var shutdown telemetry.ShutdownFunc
		shutdown, err = telemetry.Setup(ctx, "nano-example")
		if err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, shutdown(context.Background()))
		}()

		// Re-resolve now that the global providers are installed.
		tracer = otel.Tracer(name)
		meter = otel.Meter(name)
		logger = otelslog.NewLogger(name)
	}

	rollCnt, err := meter.Int64Counter("dice.rolls",
		metric.WithDescription("The number of rolls by roll value"),
		metric.WithUnit("{roll}"))
	if err != nil {
		return err
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	accessLog := zerolog.New(os.Stdout).With().Timestamp().Logger()

	router := http.NewRouter()
	router.Use(
		http.RecoverMiddleware(),
		http.RequestIDMiddleware(),
		http.TracingMiddleware(tracer),
		http.AccessLogMiddleware(accessLog),
	)

	router.GET("/", func(req *http.Request, res *http.Response) error {
		return res.WithText("Hello, World!")
	})

	router.GET("/user/:id", func(req *http.Request, res *http.Response) error {
		return res.WithText("User " + req.Param("id"))
	})

	router.GET("/product/:name", func(req *http.Request, res *http.Response) error {
		return res.JSON(map[string]string{
			"product": req.Param("name"),
			"color":   req.Query("color"),
		})
	})

	router.POST("/test", func(req *http.Request, res *http.Response) error {
		body, err := req.Text()
		if err != nil {
			return err
		}
		return res.WithText("Received: " + body)
	})

	router.POST("/settings", func(req *http.Request, res *http.Response) error {
		var s settings
		if err := req.JSON(&s); err != nil {
			res.WithStatus(http.StatusBadRequest, "")
			return res.JSON(map[string]string{"error": err.Error()})
		}
		logger.InfoContext(req.Context(), "settings updated", "theme", s.Theme, "language", s.Language)
		return res.JSON(s)
	})

	router.GET("/roll", func(req *http.Request, res *http.Response) error {
		ctx, span := tracer.Start(req.Context(), "roll")
		defer span.End()

		roll := 1 + rand.Intn(6)
		logger.InfoContext(ctx, "Anonymous player is rolling the dice", "result", roll)

		rollValueAttr := attribute.Int("roll.value", roll)
		span.SetAttributes(rollValueAttr)
		rollCnt.Add(ctx, 1, metric.WithAttributes(rollValueAttr))

		return res.WithText(strconv.Itoa(roll) + "\n")
	})

	router.Group("/static", func(group *http.Router) {
		group.GET("/*", func(req *http.Request, res *http.Response) error {
			return res.WithText("static " + req.Path())
		})
	})

	server := http.NewServer(router,
		http.WithName("nano"),
		http.WithEngine(eng),
		http.WithEventLoops(*loops),
		http.WithReusePort(*reusePort),
		http.WithLogger(logger),
		http.WithMeterProvider(otel.GetMeterProvider()),
	)

	serverErrorChannel := make(chan error, 1)
	go func() {
		serverErrorChannel <- server.ListenAndServe(*addr)
	}()

	// Wait for interruption.
	select {
	case err := <-serverErrorChannel:
		return err
	case <-ctx.Done():
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-serverErrorChannel; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
