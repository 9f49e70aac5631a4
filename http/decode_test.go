package http

import (
	"errors"
	"testing"

	"github.com/freekieb7/nano/http/internal/httparse"
	"github.com/freekieb7/nano/test"
)

func TestDecodeComplete(t *testing.T) {
	var slots [MaxHeaders]Header
	buf := []byte("POST /echo HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhello")

	d, ok, err := decode(buf, &slots)
	test.AssertNoError(t, err)
	test.AssertTrue(t, ok, "expected a complete request")

	test.AssertEqual(t, "POST", string(d.head.Method))
	test.AssertEqual(t, "/echo", string(d.head.Target))
	test.AssertEqual(t, 1, d.head.Version)
	test.AssertEqual(t, "hello", string(d.body))
	test.AssertEqual(t, len(buf), d.len)
}

func TestDecodePartialHead(t *testing.T) {
	var slots [MaxHeaders]Header
	full := "GET /user/42 HTTP/1.1\r\nHost: x\r\n\r\n"

	for i := 0; i < len(full); i++ {
		d, ok, err := decode([]byte(full[:i]), &slots)
		test.AssertNoError(t, err)
		test.AssertTrue(t, !ok, "expected no result for prefix "+full[:i])
		test.AssertEqual(t, 0, d.len)
	}
}

func TestDecodePartialBody(t *testing.T) {
	var slots [MaxHeaders]Header
	buf := []byte("POST / HTTP/1.1\r\nContent-Length: 10\r\n\r\nhello")

	_, ok, err := decode(buf, &slots)
	test.AssertNoError(t, err)
	test.AssertTrue(t, !ok, "a short body must be incomplete, not truncated")
}

func TestDecodePipelined(t *testing.T) {
	var slots [MaxHeaders]Header
	buf := []byte("GET /a HTTP/1.1\r\n\r\nPOST /b HTTP/1.1\r\nContent-Length: 2\r\n\r\nokGET /c HTTP/1.1\r\n")

	var targets []string
	for {
		d, ok, err := decode(buf, &slots)
		test.AssertNoError(t, err)
		if !ok {
			break
		}
		targets = append(targets, string(d.head.Target))
		buf = buf[d.len:]
	}

	test.AssertEqual(t, 2, len(targets))
	test.AssertEqual(t, "/a", targets[0])
	test.AssertEqual(t, "/b", targets[1])
	test.AssertEqual(t, "GET /c HTTP/1.1\r\n", string(buf))
}

func TestDecodeMalformed(t *testing.T) {
	var slots [MaxHeaders]Header

	_, ok, err := decode([]byte("GET / HTTP/2.0\r\n\r\n"), &slots)
	test.AssertTrue(t, !ok, "expected no request")

	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DecodeError, got %v", err)
	}
	test.AssertErrorIs(t, err, httparse.ErrVersion)
}

func TestContentLength(t *testing.T) {
	tests := []struct {
		name    string
		headers []Header
		want    int
	}{
		{"absent", nil, 0},
		{"simple", []Header{{Name: []byte("Content-Length"), Value: []byte("12")}}, 12},
		{"lowercase", []Header{{Name: []byte("content-length"), Value: []byte("3")}}, 3},
		{"negative", []Header{{Name: []byte("Content-Length"), Value: []byte("-1")}}, 0},
		{"garbage", []Header{{Name: []byte("Content-Length"), Value: []byte("abc")}}, 0},
		{"overflow", []Header{{Name: []byte("Content-Length"), Value: []byte("99999999999999999999999")}}, 0},
		{"first wins", []Header{
			{Name: []byte("Content-Length"), Value: []byte("1")},
			{Name: []byte("Content-Length"), Value: []byte("2")},
		}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.AssertEqual(t, tt.want, contentLength(tt.headers))
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	var slots [MaxHeaders]Header
	buf := []byte("GET /test HTTP/1.1\r\nAccept: text/css\r\nConnection: keep-alive\r\nContent-Length: 0\r\n\r\n")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := decode(buf, &slots); err != nil {
			b.Fatal(err)
		}
	}
}
