package http

import "github.com/freekieb7/nano/http/internal/httparse"

const (
	// BufLen is the initial capacity of every per-connection buffer.
	BufLen = 32 * 1024
	// LowWater is the spare capacity a read buffer keeps before each read.
	LowWater = 1024
	// MaxHeaders bounds both the request header slots and the extra
	// response header lines.
	MaxHeaders = 16

	DefaultServerName = "M"

	// TimeFormat is the RFC 1123 layout used by the Date header.
	TimeFormat = "Mon, 02 Jan 2006 15:04:05 GMT"
)

// Handler serves one request. A returned error is answered with a 500
// carrying the error text; the connection keeps going.
type Handler func(req *Request, res *Response) error

// Header is a request header span pointing into the connection's read
// buffer.
type Header = httparse.Header

var (
	protocolHttp11        = []byte("HTTP/1.1 ")
	headerServer          = []byte("\r\nServer: ")
	headerDate            = []byte("\r\nDate: ")
	headerContentLength   = []byte("\r\nContent-Length: ")
	crlf                  = []byte("\r\n")
	headEnd               = []byte("\r\n\r\n")
	statusLineServerError = []byte("HTTP/1.1 500 Internal Server Error")
)
