package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v3"
	"go.opentelemetry.io/otel/metric/noop"
)

type Server struct {
	Router *Router

	config  Config
	logger  *slog.Logger
	metrics *serverMetrics
	pool    *connPool
	conns   *xsync.MapOf[*conn, io.Closer]

	initOnce sync.Once
	routes   *routeTable

	mu       sync.Mutex
	listener net.Listener
	loop     *eventLoop
	closed   atomic.Bool
}

func NewServer(router *Router, opts ...Option) *Server {
	config := DefaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	if config.Name == "" {
		config.Name = DefaultServerName
	}

	s := &Server{
		Router: router,
		config: config,
		logger: config.logger(),
		conns:  xsync.NewMapOf[*conn, io.Closer](),
	}

	metrics, err := newServerMetrics(config.meterProvider())
	if err != nil {
		s.logger.Warn("metrics disabled", "error", err)
		metrics, _ = newServerMetrics(noop.NewMeterProvider())
	}
	s.metrics = metrics
	s.pool = newConnPool(s)

	return s
}

func (s *Server) Config() Config {
	return s.config
}

// init freezes the router. Routes registered afterwards panic.
func (s *Server) init() {
	s.initOnce.Do(func() {
		if s.Router == nil {
			s.Router = NewRouter()
		}
		s.routes = s.Router.freeze()
	})
}

// ListenAndServe listens on the TCP address addr and serves it with the
// configured engine. It blocks until the server is shut down or the
// listener fails.
func (s *Server) ListenAndServe(addr string) error {
	if s.config.Engine == EngineEventLoop {
		return s.serveEventLoop(addr)
	}

	listener, err := listen(context.Background(), addr, s.config.ReusePort)
	if err != nil {
		return err
	}
	return s.Serve(listener)
}

// Serve accepts connections on l and serves each on its own goroutine.
// It always returns a non-nil error; ErrServerClosed after Shutdown.
func (s *Server) Serve(l net.Listener) error {
	s.init()

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		l.Close()
		return ErrServerClosed
	}
	s.listener = l
	s.mu.Unlock()

	s.logger.Info("server listening", "addr", l.Addr().String(), "engine", EngineGoroutine.String())

	var tempDelay time.Duration
	for {
		nc, err := l.Accept()
		if err != nil {
			if s.closed.Load() {
				return ErrServerClosed
			}

			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				if tempDelay == 0 {
					tempDelay = 5 * time.Millisecond
				} else {
					tempDelay *= 2
				}
				if tempDelay > time.Second {
					tempDelay = time.Second
				}
				s.logger.Warn("accept failed, retrying", "error", err, "delay", tempDelay)
				time.Sleep(tempDelay)
				continue
			}
			return err
		}
		tempDelay = 0

		go s.ServeConn(nc)
	}
}

// ServeConn serves a single connection until the peer goes away or a
// malformed request arrives, then closes it.
func (s *Server) ServeConn(nc net.Conn) {
	s.init()

	c := s.pool.acquire()
	s.conns.Store(c, nc)
	s.metrics.connOpened()

	defer func() {
		nc.Close()
		s.conns.Delete(c)
		s.metrics.connClosed()
		s.pool.release(c)
	}()

	if s.closed.Load() {
		return
	}

	if err := c.serveNetConn(nc); err != nil && !isClosedConnError(err) {
		s.logger.Debug("connection closed", "remote", nc.RemoteAddr().String(), "error", err)
	}
}

// ActiveConns returns the number of connections being served.
func (s *Server) ActiveConns() int {
	return s.conns.Size()
}

// Shutdown stops accepting connections and closes every open one. In
// flight requests are not waited for.
func (s *Server) Shutdown(ctx context.Context) error {
	s.closed.Store(true)

	s.mu.Lock()
	listener := s.listener
	loop := s.loop
	s.mu.Unlock()

	var err error
	if listener != nil {
		if cerr := listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}

	s.conns.Range(func(_ *conn, closer io.Closer) bool {
		closer.Close()
		return true
	})

	if loop != nil {
		if serr := loop.stop(ctx); serr != nil && err == nil {
			err = serr
		}
	}

	return err
}
