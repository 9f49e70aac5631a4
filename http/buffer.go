package http

// Buffer is a growable byte buffer owned by one connection. Bytes are
// appended at the tail and consumed from the front with Advance. It never
// shrinks.
type Buffer struct {
	buf []byte
	off int
}

func NewBuffer(size int) *Buffer {
	return &Buffer{buf: make([]byte, 0, size)}
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Bytes returns the unconsumed bytes. The slice aliases the buffer and is
// invalidated by the next Reserve, Advance or write.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// Reserve guarantees at least LowWater bytes of spare capacity, first by
// compacting consumed bytes away and then by growing.
func (b *Buffer) Reserve() {
	if cap(b.buf)-len(b.buf) >= LowWater {
		return
	}

	if b.off > 0 {
		n := copy(b.buf, b.buf[b.off:])
		b.buf = b.buf[:n]
		b.off = 0
		if cap(b.buf)-len(b.buf) >= LowWater {
			return
		}
	}

	grow := BufLen
	if len(b.buf) > grow {
		grow = len(b.buf)
	}

	buf := make([]byte, len(b.buf), len(b.buf)+grow)
	copy(buf, b.buf)
	b.buf = buf
}

// Free returns the spare tail capacity for a read. Call Commit with the
// number of bytes written into it.
func (b *Buffer) Free() []byte {
	return b.buf[len(b.buf):cap(b.buf)]
}

func (b *Buffer) Commit(n int) {
	b.buf = b.buf[:len(b.buf)+n]
}

// Advance drops n bytes from the front.
func (b *Buffer) Advance(n int) {
	b.off += n
	if b.off >= len(b.buf) {
		b.buf = b.buf[:0]
		b.off = 0
	}
}

func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

func (b *Buffer) Cap() int {
	return cap(b.buf)
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *Buffer) WriteString(s string) (int, error) {
	b.buf = append(b.buf, s...)
	return len(s), nil
}

func (b *Buffer) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

func (b *Buffer) writeInt(n int) {
	b.buf = appendInt(b.buf, n)
}
