package http

import "github.com/freekieb7/nano/http/internal/httparse"

// decoded is one complete request found at the front of a buffer. All
// slices alias that buffer.
type decoded struct {
	head httparse.Request
	body []byte
	// len is head plus body, the number of bytes to advance past.
	len int
}

// decode parses the request at the front of buf. It reports false with a
// nil error while the head or the declared body is still incomplete, and
// consumes nothing in that case.
func decode(buf []byte, slots *[MaxHeaders]Header) (decoded, bool, error) {
	head, err := httparse.ParseRequest(buf, slots[:])
	if err != nil {
		return decoded{}, false, &DecodeError{Err: err}
	}
	if head.Status != httparse.Complete {
		return decoded{}, false, nil
	}

	total := head.Len + contentLength(head.Headers)
	if total < head.Len || total > len(buf) {
		return decoded{}, false, nil
	}

	return decoded{
		head: head,
		body: buf[head.Len:total:total],
		len:  total,
	}, true, nil
}

// contentLength returns the first Content-Length value, or 0 when it is
// absent or not a non-negative integer.
func contentLength(headers []Header) int {
	for _, h := range headers {
		if !equalFold(h.Name, "content-length") {
			continue
		}
		n, err := atoi(h.Value)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
