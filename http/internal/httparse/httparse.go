// Package httparse tokenizes HTTP/1.x request heads in place.
//
// ParseRequest never copies: method, target and header spans are
// sub-slices of the input buffer and stay valid only as long as the
// buffer is not modified.
package httparse

import "errors"

type Status uint8

const (
	// Partial means the buffer ends before the head does.
	Partial Status = iota
	Complete
)

var (
	ErrMethod         = errors.New("httparse: invalid method")
	ErrTarget         = errors.New("httparse: invalid request target")
	ErrVersion        = errors.New("httparse: invalid http version")
	ErrHeaderName     = errors.New("httparse: invalid header name")
	ErrHeaderValue    = errors.New("httparse: invalid header value")
	ErrNewLine        = errors.New("httparse: invalid new line")
	ErrTooManyHeaders = errors.New("httparse: too many headers")
)

type Header struct {
	Name  []byte
	Value []byte
}

type Request struct {
	Status  Status
	Method  []byte
	Target  []byte
	Version int // minor version, 0 or 1
	Headers []Header
	// Len is the size of the head including the terminating blank line.
	// Only set when Status is Complete.
	Len int
}

// ParseRequest parses the request head at the start of buf, storing
// headers into slots. It returns ErrTooManyHeaders when the head carries
// more headers than there are slots.
func ParseRequest(buf []byte, slots []Header) (Request, error) {
	var req Request
	pos := 0

	// Leading empty lines are tolerated (RFC 7230, 3.5).
	for pos < len(buf) && (buf[pos] == '\r' || buf[pos] == '\n') {
		next, ok, err := lineEnd(buf, pos)
		if err != nil || !ok {
			return req, err
		}
		pos = next
	}

	start := pos
	for {
		if pos == len(buf) {
			return req, nil
		}
		c := buf[pos]
		if c == ' ' {
			break
		}
		if !isToken(c) {
			return req, ErrMethod
		}
		pos++
	}
	if pos == start {
		return req, ErrMethod
	}
	req.Method = buf[start:pos]
	pos++

	start = pos
	for {
		if pos == len(buf) {
			return req, nil
		}
		c := buf[pos]
		if c == ' ' {
			break
		}
		if c <= 0x20 || c == 0x7f {
			return req, ErrTarget
		}
		pos++
	}
	if pos == start {
		return req, ErrTarget
	}
	req.Target = buf[start:pos]
	pos++

	const prefix = "HTTP/1."
	for i := 0; i < len(prefix); i++ {
		if pos == len(buf) {
			return req, nil
		}
		if buf[pos] != prefix[i] {
			return req, ErrVersion
		}
		pos++
	}
	if pos == len(buf) {
		return req, nil
	}
	switch buf[pos] {
	case '0':
		req.Version = 0
	case '1':
		req.Version = 1
	default:
		return req, ErrVersion
	}
	pos++
	if pos == len(buf) {
		return req, nil
	}
	if buf[pos] != '\r' && buf[pos] != '\n' {
		return req, ErrVersion
	}
	next, ok, err := lineEnd(buf, pos)
	if err != nil || !ok {
		return req, err
	}
	pos = next

	n := 0
	for {
		if pos == len(buf) {
			return req, nil
		}
		if buf[pos] == '\r' || buf[pos] == '\n' {
			next, ok, err := lineEnd(buf, pos)
			if err != nil || !ok {
				return req, err
			}
			req.Headers = slots[:n]
			req.Len = next
			req.Status = Complete
			return req, nil
		}

		start = pos
		for {
			if pos == len(buf) {
				return req, nil
			}
			c := buf[pos]
			if c == ':' {
				break
			}
			if !isToken(c) {
				return req, ErrHeaderName
			}
			pos++
		}
		if pos == start {
			return req, ErrHeaderName
		}
		name := buf[start:pos]
		pos++

		for pos < len(buf) && (buf[pos] == ' ' || buf[pos] == '\t') {
			pos++
		}

		start = pos
		for {
			if pos == len(buf) {
				return req, nil
			}
			c := buf[pos]
			if c == '\r' || c == '\n' {
				break
			}
			if (c < 0x20 && c != '\t') || c == 0x7f {
				return req, ErrHeaderValue
			}
			pos++
		}
		end := pos
		for end > start && (buf[end-1] == ' ' || buf[end-1] == '\t') {
			end--
		}

		next, ok, err := lineEnd(buf, pos)
		if err != nil || !ok {
			return req, err
		}
		pos = next

		if n == len(slots) {
			return req, ErrTooManyHeaders
		}
		slots[n] = Header{Name: name, Value: buf[start:end]}
		n++
	}
}

// lineEnd consumes a CRLF or bare LF at pos.
func lineEnd(buf []byte, pos int) (int, bool, error) {
	switch buf[pos] {
	case '\n':
		return pos + 1, true, nil
	case '\r':
		if pos+1 == len(buf) {
			return 0, false, nil
		}
		if buf[pos+1] != '\n' {
			return 0, false, ErrNewLine
		}
		return pos + 2, true, nil
	}
	return 0, false, ErrNewLine
}

func isToken(c byte) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
