package http

import (
	"testing"

	"github.com/freekieb7/nano/test"
)

func TestBufferReserveGrows(t *testing.T) {
	buf := NewBuffer(0)
	buf.Reserve()

	test.AssertTrue(t, len(buf.Free()) >= LowWater, "expected at least LowWater spare bytes")
	test.AssertEqual(t, BufLen, buf.Cap())
}

func TestBufferCommitAdvance(t *testing.T) {
	buf := NewBuffer(16)
	buf.Reserve()

	n := copy(buf.Free(), "hello world")
	buf.Commit(n)
	test.AssertEqual(t, "hello world", string(buf.Bytes()))

	buf.Advance(6)
	test.AssertEqual(t, "world", string(buf.Bytes()))
	test.AssertEqual(t, 5, buf.Len())

	buf.Advance(5)
	test.AssertEqual(t, 0, buf.Len())
}

func TestBufferReserveCompacts(t *testing.T) {
	buf := NewBuffer(BufLen)
	buf.WriteString(string(make([]byte, BufLen-10)))
	buf.WriteString("tail")
	buf.Advance(BufLen - 10)

	buf.Reserve()

	test.AssertEqual(t, "tail", string(buf.Bytes()))
	test.AssertEqual(t, BufLen, buf.Cap())
}

func TestBufferNeverShrinks(t *testing.T) {
	buf := NewBuffer(0)
	buf.Write(make([]byte, 3*BufLen))
	grown := buf.Cap()

	buf.Reset()
	buf.Reserve()

	test.AssertEqual(t, grown, buf.Cap())
}

func TestBufferWriters(t *testing.T) {
	buf := NewBuffer(0)
	buf.WriteString("a")
	buf.WriteByte('b')
	buf.Write([]byte("c"))
	buf.writeInt(1024)

	test.AssertEqual(t, "abc1024", string(buf.Bytes()))
}
