package http

import (
	"errors"
	"runtime"
	"sync/atomic"
)

// connPoolSize bounds the number of idle connection states kept for reuse.
// Must be a power of two.
const connPoolSize = 1024

// maxPooledBuffer is the largest buffer capacity returned to the pool; a
// connection that grew past it is left to the garbage collector.
const maxPooledBuffer = 4 * BufLen

var (
	ErrFull  = errors.New("ring buffer is full")
	ErrEmpty = errors.New("ring buffer is empty")
)

// connPool recycles connection states across connections.
type connPool struct {
	idle RingBuffer[*conn]
	srv  *Server
}

func newConnPool(srv *Server) *connPool {
	return &connPool{
		idle: NewRingBuffer[*conn](),
		srv:  srv,
	}
}

func (p *connPool) acquire() *conn {
	c, err := p.idle.Dequeue()
	if err != nil {
		return newConn(p.srv)
	}
	return c
}

func (p *connPool) release(c *conn) {
	if c.in.Cap() > maxPooledBuffer || c.out.Cap() > maxPooledBuffer || c.body.Cap() > maxPooledBuffer {
		return
	}
	c.in.Reset()
	c.out.Reset()
	c.body.Reset()
	c.req.release()
	_ = p.idle.Enqueue(c)
}

// RingBuffer is a bounded multi-producer multi-consumer queue. Each slot
// carries a sequence number telling producers and consumers whose turn it
// is.
type RingBuffer[T any] struct {
	buffer [connPoolSize]slot[T]
	mask   uint64
	enqPos uint64
	deqPos uint64
}

type slot[T any] struct {
	sequence uint64
	value    T
}

func NewRingBuffer[T any]() RingBuffer[T] {
	var buf [connPoolSize]slot[T]
	for i := range buf {
		buf[i].sequence = uint64(i)
	}
	return RingBuffer[T]{
		buffer: buf,
		mask:   connPoolSize - 1,
	}
}

// Enqueue adds an item, failing with ErrFull when every slot is taken.
func (q *RingBuffer[T]) Enqueue(val T) error {
	for {
		pos := atomic.LoadUint64(&q.enqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.enqPos, pos, pos+1) {
				slot.value = val
				atomic.StoreUint64(&slot.sequence, pos+1)
				return nil
			}
		} else if delta < 0 {
			return ErrFull
		} else {
			runtime.Gosched()
		}
	}
}

// Dequeue removes the oldest item, failing with ErrEmpty.
func (q *RingBuffer[T]) Dequeue() (T, error) {
	var zero T
	for {
		pos := atomic.LoadUint64(&q.deqPos)
		slot := &q.buffer[pos&q.mask]

		seq := atomic.LoadUint64(&slot.sequence)
		delta := int64(seq) - int64(pos+1)

		if delta == 0 {
			if atomic.CompareAndSwapUint64(&q.deqPos, pos, pos+1) {
				val := slot.value
				slot.value = zero
				atomic.StoreUint64(&slot.sequence, pos+q.mask+1)
				return val, nil
			}
		} else if delta < 0 {
			return zero, ErrEmpty
		} else {
			runtime.Gosched()
		}
	}
}
