package http

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodConnect = "CONNECT"
	MethodOptions = "OPTIONS"
	MethodTrace   = "TRACE"
	// MethodAny registers a route for every method.
	MethodAny = "*"
)

// Request is the view of one decoded request handed to a handler.
//
// Headers and Body point into the connection's read buffer and are only
// valid until the handler returns. Copy them to keep them longer. The
// string accessors already return copies.
type Request struct {
	method  string
	url     string
	path    string
	version int
	headers []Header
	body    []byte

	route  string
	params map[string]string
	query  map[string]string

	ctx context.Context
}

func (req *Request) reset(d *decoded) {
	req.method = methodString(d.head.Method)
	req.url = string(d.head.Target)
	req.path = req.url
	if i := strings.IndexByte(req.url, '?'); i >= 0 {
		req.path = req.url[:i]
	}
	req.version = d.head.Version
	req.headers = d.head.Headers
	req.body = d.body
	req.route = ""
	req.params = nil
	req.query = nil
	req.ctx = nil
}

// release drops every reference into the read buffer before it is
// advanced.
func (req *Request) release() {
	req.headers = nil
	req.body = nil
	req.params = nil
	req.query = nil
	req.ctx = nil
}

func (req *Request) Method() string {
	return req.method
}

// URL returns the raw request target, query string included.
func (req *Request) URL() string {
	return req.url
}

// Path returns the request target up to the first '?'.
func (req *Request) Path() string {
	return req.path
}

// Version returns the HTTP minor version.
func (req *Request) Version() int {
	return req.version
}

// Route returns the pattern of the matched route, empty when none matched.
func (req *Request) Route() string {
	return req.route
}

// Headers returns the request headers in wire order.
func (req *Request) Headers() []Header {
	return req.headers
}

// Header returns the first value of the named header, compared without
// regard to case.
func (req *Request) Header(name string) (string, bool) {
	lower := lowerASCII(name)
	for _, h := range req.headers {
		if equalFold(h.Name, lower) {
			return string(h.Value), true
		}
	}
	return "", false
}

func (req *Request) ContentLength() int {
	return len(req.body)
}

// KeepAlive reports whether the client sent Connection: keep-alive.
func (req *Request) KeepAlive() bool {
	for _, h := range req.headers {
		if equalFold(h.Name, "connection") && equalFold(h.Value, "keep-alive") {
			return true
		}
	}
	return false
}

// Param returns the path parameter bound to :name.
func (req *Request) Param(name string) string {
	return req.params[name]
}

func (req *Request) LookupParam(name string) (string, bool) {
	v, ok := req.params[name]
	return v, ok
}

func (req *Request) Params() map[string]string {
	return req.params
}

// Query returns the query parameter name; the last occurrence wins.
func (req *Request) Query(name string) string {
	return req.query[name]
}

func (req *Request) LookupQuery(name string) (string, bool) {
	v, ok := req.query[name]
	return v, ok
}

func (req *Request) QueryParams() map[string]string {
	return req.query
}

// Body returns the raw body bytes. See the Request doc for their lifetime.
func (req *Request) Body() []byte {
	return req.body
}

// Text returns the body as a string.
func (req *Request) Text() (string, error) {
	if !utf8.Valid(req.body) {
		return "", &RequestError{Kind: KindUTF8, Err: ErrInvalidUTF8}
	}
	return string(req.body), nil
}

// JSON decodes the body into v.
func (req *Request) JSON(v any) error {
	if !utf8.Valid(req.body) {
		return &RequestError{Kind: KindUTF8, Err: ErrInvalidUTF8}
	}
	if err := json.Unmarshal(req.body, v); err != nil {
		return &RequestError{Kind: KindJSON, Err: err}
	}
	return nil
}

func (req *Request) Context() context.Context {
	if req.ctx == nil {
		return context.Background()
	}
	return req.ctx
}

func (req *Request) SetContext(ctx context.Context) {
	req.ctx = ctx
}

// Cookie returns the named cookie from the Cookie headers.
func (req *Request) Cookie(name string) (*Cookie, error) {
	for _, h := range req.headers {
		if !equalFold(h.Name, "cookie") {
			continue
		}
		if c, ok := readCookie(string(h.Value), name); ok {
			return c, nil
		}
	}
	return nil, ErrNoCookie
}

func methodString(b []byte) string {
	switch string(b) {
	case MethodGet:
		return MethodGet
	case MethodPost:
		return MethodPost
	case MethodPut:
		return MethodPut
	case MethodDelete:
		return MethodDelete
	case MethodPatch:
		return MethodPatch
	case MethodHead:
		return MethodHead
	case MethodOptions:
		return MethodOptions
	}
	return string(b)
}
