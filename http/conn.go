package http

import (
	"errors"
	"io"
	"net"
	"time"
)

// conn is the per-connection state: read and write buffers, the header
// slots used by the decoder and the request/response pair handed to
// handlers. It is owned by exactly one driver at a time.
type conn struct {
	srv *Server

	in   *Buffer
	out  *Buffer
	body *Buffer

	slots [MaxHeaders]Header
	req   Request
	res   Response
}

func newConn(srv *Server) *conn {
	return &conn{
		srv:  srv,
		in:   NewBuffer(BufLen),
		out:  NewBuffer(BufLen),
		body: NewBuffer(0),
	}
}

// process decodes and answers every complete request at the front of in,
// appending the responses to c.out in arrival order. It returns how many
// bytes of in were consumed. A malformed head appends a 500 and returns
// the decode error; the connection must be closed after flushing.
func (c *conn) process(in []byte) (int, error) {
	consumed := 0
	for consumed < len(in) {
		d, ok, err := decode(in[consumed:], &c.slots)
		if err != nil {
			c.srv.metrics.decodeFailed()
			c.srv.logger.Warn("malformed request", "error", err)
			encodeError(err, c.out, c.srv.config.Name)
			return consumed, err
		}
		if !ok {
			break
		}

		c.serve(&d)
		consumed += d.len
	}
	return consumed, nil
}

// serve dispatches one decoded request and encodes its response.
func (c *conn) serve(d *decoded) {
	start := time.Now()

	c.req.reset(d)
	c.res.reset(c.body)

	handler := c.srv.routes.resolve(&c.req)

	err := handler(&c.req, &c.res)
	if err == nil {
		err = c.res.err
	}

	status := c.res.code
	if err != nil {
		c.srv.logger.Error("handler failed",
			"method", c.req.method,
			"path", c.req.path,
			"error", err)
		c.res.release()
		encodeError(err, c.out, c.srv.config.Name)
		status = StatusInternalServerError
	} else {
		encode(&c.res, c.out, c.srv.config.Name)
	}

	c.srv.metrics.requestDone(c.req.Context(), c.req.method, status, start)
	c.req.release()
}

// serveNetConn drives c over a blocking net.Conn. The runtime netpoller
// parks the goroutine while the socket is not ready.
func (c *conn) serveNetConn(nc net.Conn) error {
	for {
		if c.out.Len() > 0 {
			if _, err := nc.Write(c.out.Bytes()); err != nil {
				return err
			}
			c.out.Reset()
		}

		c.in.Reserve()
		n, err := nc.Read(c.in.Free())
		if n > 0 {
			c.in.Commit(n)

			consumed, perr := c.process(c.in.Bytes())
			c.in.Advance(consumed)
			if perr != nil {
				c.flush(nc)
				return perr
			}
		}

		if err != nil {
			c.flush(nc)
			return err
		}
	}
}

// flush writes pending responses, ignoring failures. Used on the way out.
func (c *conn) flush(nc net.Conn) {
	if c.out.Len() == 0 {
		return
	}
	_, _ = nc.Write(c.out.Bytes())
	c.out.Reset()
}

// isClosedConnError reports errors that only mean the peer or the server
// went away.
func isClosedConnError(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}
