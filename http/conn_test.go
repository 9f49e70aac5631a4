package http

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"log/slog"
	nethttp "net/http"
	"testing"

	"github.com/freekieb7/nano/http/internal/httparse"
	"github.com/freekieb7/nano/test"
)

func newTestServer(router *Router, opts ...Option) *Server {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	srv := NewServer(router, opts...)
	srv.init()
	return srv
}

func newTestConn(router *Router) *conn {
	srv := newTestServer(router)
	return srv.pool.acquire()
}

// readAll parses every response in b, in order.
func readAll(t *testing.T, b []byte) []*nethttp.Response {
	t.Helper()

	var out []*nethttp.Response
	br := bufio.NewReader(bytes.NewReader(b))
	for {
		if _, err := br.Peek(1); err == io.EOF {
			return out
		}
		resp, err := nethttp.ReadResponse(br, nil)
		if err != nil {
			t.Fatalf("invalid response stream %q: %v", b, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		out = append(out, resp)
	}
}

func bodyOf(resp *nethttp.Response) string {
	b, _ := io.ReadAll(resp.Body)
	return string(b)
}

func TestProcessPipelinedInOrder(t *testing.T) {
	router := NewRouter()
	router.GET("/a", func(req *Request, res *Response) error {
		return res.Send("first")
	})
	router.POST("/b", func(req *Request, res *Response) error {
		return res.Bytes(req.Body())
	})

	c := newTestConn(router)
	in := []byte("GET /a HTTP/1.1\r\n\r\nPOST /b HTTP/1.1\r\nContent-Length: 6\r\n\r\nsecond")

	consumed, err := c.process(in)
	test.AssertNoError(t, err)
	test.AssertEqual(t, len(in), consumed)

	responses := readAll(t, c.out.Bytes())
	test.AssertEqual(t, 2, len(responses))
	test.AssertEqual(t, "first", bodyOf(responses[0]))
	test.AssertEqual(t, "second", bodyOf(responses[1]))
}

func TestProcessPartialConsumesNothing(t *testing.T) {
	c := newTestConn(NewRouter())

	consumed, err := c.process([]byte("GET /a HTTP/1.1\r\nHost: x"))
	test.AssertNoError(t, err)
	test.AssertEqual(t, 0, consumed)
	test.AssertEqual(t, 0, c.out.Len())
}

func TestProcessStopsAtPartialTail(t *testing.T) {
	router := NewRouter()
	router.GET("/a", handlerNamed("a"))

	c := newTestConn(router)
	complete := "GET /a HTTP/1.1\r\n\r\n"

	consumed, err := c.process([]byte(complete + "GET /a HT"))
	test.AssertNoError(t, err)
	test.AssertEqual(t, len(complete), consumed)
	test.AssertEqual(t, 1, len(readAll(t, c.out.Bytes())))
}

func TestProcessNotFound(t *testing.T) {
	c := newTestConn(NewRouter())

	_, err := c.process([]byte("POST /missing HTTP/1.1\r\n\r\n"))
	test.AssertNoError(t, err)

	responses := readAll(t, c.out.Bytes())
	test.AssertEqual(t, 1, len(responses))
	test.AssertEqual(t, 404, responses[0].StatusCode)
	test.AssertEqual(t, "0", responses[0].Header.Get("Content-Length"))
	test.AssertEqual(t, "", bodyOf(responses[0]))
}

func TestProcessHandlerErrorIsPerRequest(t *testing.T) {
	router := NewRouter()
	router.GET("/fail", func(req *Request, res *Response) error {
		res.Send("partial output")
		return errors.New("disk on fire")
	})
	router.GET("/ok", handlerNamed("ok"))

	c := newTestConn(router)
	_, err := c.process([]byte("GET /fail HTTP/1.1\r\n\r\nGET /ok HTTP/1.1\r\n\r\n"))
	test.AssertNoError(t, err)

	responses := readAll(t, c.out.Bytes())
	test.AssertEqual(t, 2, len(responses))
	test.AssertEqual(t, 500, responses[0].StatusCode)
	test.AssertEqual(t, "disk on fire", bodyOf(responses[0]))
	test.AssertEqual(t, 200, responses[1].StatusCode)
	test.AssertEqual(t, "ok", bodyOf(responses[1]))
}

func TestProcessTooManyResponseHeaders(t *testing.T) {
	router := NewRouter()
	router.GET("/", func(req *Request, res *Response) error {
		for i := 0; i <= MaxHeaders; i++ {
			res.WithHeader("X-Many", "v")
		}
		return nil
	})

	c := newTestConn(router)
	_, err := c.process([]byte("GET / HTTP/1.1\r\n\r\n"))
	test.AssertNoError(t, err)

	responses := readAll(t, c.out.Bytes())
	test.AssertEqual(t, 500, responses[0].StatusCode)
	test.AssertEqual(t, ErrTooManyHeaders.Error(), bodyOf(responses[0]))
}

func TestProcessMalformedHead(t *testing.T) {
	router := NewRouter()
	router.GET("/a", handlerNamed("a"))

	c := newTestConn(router)
	complete := "GET /a HTTP/1.1\r\n\r\n"

	consumed, err := c.process([]byte(complete + "GET /a HTTP/9.9\r\n\r\n"))
	test.AssertErrorIs(t, err, httparse.ErrVersion)
	test.AssertEqual(t, len(complete), consumed)

	responses := readAll(t, c.out.Bytes())
	test.AssertEqual(t, 2, len(responses))
	test.AssertEqual(t, 200, responses[0].StatusCode)
	test.AssertEqual(t, 500, responses[1].StatusCode)
	test.AssertEqual(t, "failed to parse http request: httparse: invalid http version", bodyOf(responses[1]))
}

func TestProcessBodyDoesNotLeakAcrossRequests(t *testing.T) {
	router := NewRouter()
	router.GET("/write", func(req *Request, res *Response) error {
		_, err := io.WriteString(res.BodyWriter(), "streamed")
		return err
	})
	router.GET("/empty", func(req *Request, res *Response) error {
		return nil
	})

	c := newTestConn(router)
	_, err := c.process([]byte("GET /write HTTP/1.1\r\n\r\nGET /empty HTTP/1.1\r\n\r\n"))
	test.AssertNoError(t, err)

	responses := readAll(t, c.out.Bytes())
	test.AssertEqual(t, "streamed", bodyOf(responses[0]))
	test.AssertEqual(t, "", bodyOf(responses[1]))
}

func BenchmarkProcess(b *testing.B) {
	router := NewRouter()
	router.GET("/", func(req *Request, res *Response) error {
		return res.Send("Hello, World!")
	})

	c := newTestConn(router)
	in := []byte("GET / HTTP/1.1\r\nHost: localhost\r\n\r\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.process(in); err != nil {
			b.Fatal(err)
		}
		c.out.Reset()
	}
}
