package http

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/panjf2000/gnet/v2"
	gerrors "github.com/panjf2000/gnet/v2/pkg/errors"
)

// eventLoop drives connections on gnet's fixed pool of event loops. Reads
// come out of gnet's inbound buffer and responses go to its outbound
// buffer, so no loop ever blocks on a single socket.
type eventLoop struct {
	gnet.BuiltinEventEngine

	srv    *Server
	engine gnet.Engine
	booted atomic.Bool
}

func (s *Server) serveEventLoop(addr string) error {
	s.init()

	loop := &eventLoop{srv: s}

	s.mu.Lock()
	if s.closed.Load() {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.loop = loop
	s.mu.Unlock()

	err := gnet.Run(loop, "tcp://"+addr,
		gnet.WithMulticore(true),
		gnet.WithNumEventLoop(s.config.EventLoops),
		gnet.WithReusePort(s.config.ReusePort),
		gnet.WithTCPNoDelay(gnet.TCPNoDelay),
	)
	if s.closed.Load() {
		return ErrServerClosed
	}
	return err
}

func (l *eventLoop) stop(ctx context.Context) error {
	if !l.booted.Load() {
		return nil
	}
	err := l.engine.Stop(ctx)
	if errors.Is(err, gerrors.ErrEngineInShutdown) {
		return nil
	}
	return err
}

func (l *eventLoop) OnBoot(eng gnet.Engine) gnet.Action {
	l.engine = eng
	l.booted.Store(true)

	if l.srv.closed.Load() {
		return gnet.Shutdown
	}

	l.srv.logger.Info("server listening",
		"engine", EngineEventLoop.String(),
		"loops", l.srv.config.EventLoops)
	return gnet.None
}

func (l *eventLoop) OnOpen(gc gnet.Conn) ([]byte, gnet.Action) {
	c := l.srv.pool.acquire()
	gc.SetContext(c)

	l.srv.conns.Store(c, gc)
	l.srv.metrics.connOpened()
	return nil, gnet.None
}

func (l *eventLoop) OnTraffic(gc gnet.Conn) gnet.Action {
	c, ok := gc.Context().(*conn)
	if !ok {
		return gnet.Close
	}

	in, err := gc.Peek(-1)
	if err != nil {
		l.srv.logger.Debug("read failed", "remote", gc.RemoteAddr().String(), "error", err)
		return gnet.Close
	}

	consumed, perr := c.process(in)
	if _, err := gc.Discard(consumed); err != nil {
		return gnet.Close
	}

	if c.out.Len() > 0 {
		if _, err := gc.Write(c.out.Bytes()); err != nil {
			l.srv.logger.Debug("write failed", "remote", gc.RemoteAddr().String(), "error", err)
			return gnet.Close
		}
		c.out.Reset()
	}

	if perr != nil {
		return gnet.Close
	}
	return gnet.None
}

func (l *eventLoop) OnClose(gc gnet.Conn, err error) gnet.Action {
	if err != nil && !isClosedConnError(err) {
		l.srv.logger.Debug("connection closed", "error", err)
	}

	c, ok := gc.Context().(*conn)
	if !ok {
		return gnet.None
	}
	gc.SetContext(nil)

	l.srv.conns.Delete(c)
	l.srv.metrics.connClosed()
	l.srv.pool.release(c)
	return gnet.None
}
