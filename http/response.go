package http

import (
	"io"

	"github.com/goccy/go-json"
)

type bodyKind uint8

const (
	// bodyNone falls back to whatever sits in the scratch buffer.
	bodyNone bodyKind = iota
	bodyText
	bodyBytes
)

// Response collects what a handler wants to send. It is encoded once,
// right after the handler returns, and its body is released afterwards.
type Response struct {
	code     int
	reason   string
	headers  [MaxHeaders]string
	nheaders int

	kind    bodyKind
	text    string
	raw     []byte
	scratch *Buffer

	err error
}

// NewResponse returns a standalone response, useful for calling handlers
// directly.
func NewResponse() *Response {
	res := &Response{}
	res.reset(NewBuffer(0))
	return res
}

func (res *Response) reset(scratch *Buffer) {
	res.code = StatusOK
	res.reason = "Ok"
	for i := 0; i < res.nheaders; i++ {
		res.headers[i] = ""
	}
	res.nheaders = 0
	res.kind = bodyNone
	res.text = ""
	res.raw = nil
	res.scratch = scratch
	res.scratch.Reset()
	res.err = nil
}

// WithStatus sets the status line. An empty reason uses the standard
// reason phrase for code.
func (res *Response) WithStatus(code int, reason string) *Response {
	if reason == "" {
		reason = StatusText(code)
	}
	res.code = code
	res.reason = reason
	return res
}

func (res *Response) StatusCode() int {
	return res.code
}

// WithHeader adds a header line. A response holds at most MaxHeaders
// extra headers; going over fails the request with ErrTooManyHeaders.
func (res *Response) WithHeader(name, value string) *Response {
	if res.nheaders == MaxHeaders {
		if res.err == nil {
			res.err = ErrTooManyHeaders
		}
		return res
	}
	res.headers[res.nheaders] = name + ": " + value
	res.nheaders++
	return res
}

// Header returns the value of the first extra header called name.
func (res *Response) Header(name string) (string, bool) {
	for _, line := range res.headers[:res.nheaders] {
		if len(line) > len(name)+1 && line[len(name)] == ':' && equalFold([]byte(line[:len(name)]), lowerASCII(name)) {
			return line[len(name)+2:], true
		}
	}
	return "", false
}

// Send sets a text body. An empty string leaves the body absent.
func (res *Response) Send(s string) error {
	if s == "" {
		res.kind = bodyNone
		res.text = ""
		return nil
	}
	res.kind = bodyText
	res.text = s
	res.raw = nil
	return nil
}

// WithText is Send with a text/plain content type.
func (res *Response) WithText(s string) error {
	res.WithHeader("Content-Type", "text/plain; charset=utf-8")
	return res.Send(s)
}

// Bytes sets a copy of b as the body.
func (res *Response) Bytes(b []byte) error {
	if len(b) == 0 {
		res.kind = bodyNone
		res.raw = nil
		return nil
	}
	res.kind = bodyBytes
	res.raw = append([]byte(nil), b...)
	res.text = ""
	return nil
}

// JSON encodes v as the body with an application/json content type.
func (res *Response) JSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res.WithHeader("Content-Type", "application/json")
	res.kind = bodyBytes
	res.raw = b
	res.text = ""
	return nil
}

// BodyWriter returns a writer appending to the body. A body set earlier
// with Send, Bytes or JSON is moved into the writer first.
func (res *Response) BodyWriter() io.Writer {
	switch res.kind {
	case bodyText:
		res.scratch.WriteString(res.text)
	case bodyBytes:
		res.scratch.Write(res.raw)
	}
	res.kind = bodyNone
	res.text = ""
	res.raw = nil
	return res.scratch
}

func (res *Response) SetCookie(c *Cookie) *Response {
	if err := c.Valid(); err != nil {
		if res.err == nil {
			res.err = err
		}
		return res
	}
	return res.WithHeader("Set-Cookie", c.String())
}

func (res *Response) Redirect(location string, code int) error {
	res.WithStatus(code, "").WithHeader("Location", location)
	return nil
}

func (res *Response) bodyLen() int {
	switch res.kind {
	case bodyText:
		return len(res.text)
	case bodyBytes:
		return len(res.raw)
	}
	return res.scratch.Len()
}

// release drops the body so the response cannot be emitted twice.
func (res *Response) release() {
	res.kind = bodyNone
	res.text = ""
	res.raw = nil
	res.scratch.Reset()
}

// encode appends res to dst in wire format and releases its body.
func encode(res *Response, dst *Buffer, server string) {
	dst.Write(protocolHttp11)
	dst.writeInt(res.code)
	dst.WriteByte(' ')
	dst.WriteString(res.reason)
	dst.Write(headerServer)
	dst.WriteString(server)
	dst.Write(headerDate)
	dst.buf = appendDate(dst.buf)
	dst.Write(headerContentLength)
	dst.writeInt(res.bodyLen())

	for _, line := range res.headers[:res.nheaders] {
		dst.Write(crlf)
		dst.WriteString(line)
	}
	dst.Write(headEnd)

	switch res.kind {
	case bodyText:
		dst.WriteString(res.text)
	case bodyBytes:
		dst.Write(res.raw)
	default:
		dst.Write(res.scratch.Bytes())
	}

	res.release()
}

// encodeError appends a 500 whose body is the error text.
func encodeError(err error, dst *Buffer, server string) {
	msg := err.Error()

	dst.Write(statusLineServerError)
	dst.Write(headerServer)
	dst.WriteString(server)
	dst.Write(headerDate)
	dst.buf = appendDate(dst.buf)
	dst.Write(headerContentLength)
	dst.writeInt(len(msg))
	dst.Write(headEnd)
	dst.WriteString(msg)
}
