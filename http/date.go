package http

import (
	"sync/atomic"
	"time"
)

type dateValue struct {
	unix int64
	text []byte
}

var (
	cachedDate atomic.Pointer[dateValue]
	nowFunc    = time.Now
)

// appendDate appends the current RFC 1123 date. The formatted value is
// shared between connections and refreshed once per second.
func appendDate(dst []byte) []byte {
	now := nowFunc()
	sec := now.Unix()

	d := cachedDate.Load()
	if d == nil || d.unix != sec {
		d = &dateValue{unix: sec, text: now.UTC().AppendFormat(nil, TimeFormat)}
		cachedDate.Store(d)
	}

	return append(dst, d.text...)
}
