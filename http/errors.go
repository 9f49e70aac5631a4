package http

import (
	"errors"
	"fmt"
)

var (
	ErrServerClosed   = errors.New("http: server closed")
	ErrRouterFrozen   = errors.New("http: router is frozen, routes must be registered before serving")
	ErrTooManyHeaders = errors.New("http: too many response headers")
	ErrHandlerPanic   = errors.New("http: handler panicked")
	ErrInvalidUTF8    = errors.New("http: body is not valid utf-8")
	ErrNoCookie       = errors.New("http: named cookie not present")
	ErrInvalidCookie  = errors.New("http: invalid cookie format")
	ErrCookieTooLong  = errors.New("http: cookie value too long")
)

// DecodeError reports a malformed request head. It is fatal for the
// connection it occurred on.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to parse http request: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type RequestErrorKind uint8

const (
	KindUTF8 RequestErrorKind = iota + 1
	KindJSON
)

func (k RequestErrorKind) String() string {
	switch k {
	case KindUTF8:
		return "UTF-8 Error"
	case KindJSON:
		return "JSON Error"
	default:
		return "Request Error"
	}
}

// RequestError is returned by the request body accessors when the body
// cannot be read as the requested representation.
type RequestError struct {
	Kind RequestErrorKind
	Err  error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
