// SPDX-License-Identifier: MIT
package iq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

var (
	// ErrHalted is returned by Acquire once the consumer no longer wants data.
	ErrHalted = errors.New("iq: queue halted by consumer")

	// ErrFinished is returned by Submit after Finish has been called.
	ErrFinished = errors.New("iq: acquisition already finished")
)

// Counts is a snapshot of where the pool's buffers currently are. The sum of
// all fields always equals the pool size.
type Counts struct {
	Empty    int // Waiting in the empty pool.
	Occupied int // Filled, waiting for the consumer.
	Filling  int // Held by the producer.
	Draining int // Held by the consumer.
}

// Total returns the number of buffers accounted for.
func (c Counts) Total() int {
	return c.Empty + c.Occupied + c.Filling + c.Draining
}

// Queue is the handoff between exactly one producer and one consumer. It is a
// pair of bounded channels, each with room for the whole pool, so sends never
// block and ownership of a buffer moves with its handle:
//
//	producer: Acquire -> fill -> Submit ... Finish
//	consumer: Next -> drain -> Recycle ... (Next returns false)
//
// Closing the occupied channel is the acquisition-finished signal. A receive
// on a closed, empty channel returns immediately, so the consumer can never
// miss it.
type Queue struct {
	buffers  int
	empty    chan *Buffer
	occupied chan *Buffer
	halt     chan struct{}

	finishOnce sync.Once
	haltOnce   sync.Once
	finished   atomic.Bool

	// Buffer locations. Each handoff moves one buffer between two fields
	// under mu, so the total never drifts from the pool size.
	mu     sync.Mutex
	counts Counts

	// Consumer-owned. Index is the number of occupied buffers observed on
	// wake, including the one about to be taken.
	histogram []uint64
}

// NewQueue allocates buffers instances of bufLength bytes into the empty pool.
func NewQueue(buffers, bufLength int) (*Queue, error) {
	if buffers <= 0 {
		return nil, fmt.Errorf("iq: buffer count must be positive, got %d", buffers)
	}
	if bufLength <= 0 {
		return nil, fmt.Errorf("iq: buffer length must be positive, got %d", bufLength)
	}
	if bufLength%2 != 0 {
		return nil, fmt.Errorf("%w: buffer length %d", ErrBufferAlignment, bufLength)
	}

	q := &Queue{
		buffers:   buffers,
		empty:     make(chan *Buffer, buffers),
		occupied:  make(chan *Buffer, buffers),
		halt:      make(chan struct{}),
		histogram: make([]uint64, buffers+1),
		counts:    Counts{Empty: buffers},
	}
	for range buffers {
		q.empty <- NewBuffer(bufLength)
	}
	return q, nil
}

// Size returns the number of buffers in the pool.
func (q *Queue) Size() int { return q.buffers }

// move shifts one buffer from one location to another.
func (q *Queue) move(from, to *int) {
	q.mu.Lock()
	*from--
	*to++
	q.mu.Unlock()
}

// --- Producer side ---

// Acquire takes a buffer from the empty pool, blocking while the pool is
// exhausted. This is where a slow consumer stalls the producer.
func (q *Queue) Acquire(ctx context.Context) (*Buffer, error) {
	select {
	case <-q.halt:
		return nil, ErrHalted
	default:
	}

	select {
	case b := <-q.empty:
		q.move(&q.counts.Empty, &q.counts.Filling)
		b.reset()
		return b, nil
	case <-q.halt:
		return nil, ErrHalted
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Submit hands a filled buffer to the consumer.
func (q *Queue) Submit(b *Buffer) error {
	if b.Len()%2 != 0 {
		return fmt.Errorf("%w: %d bytes", ErrBufferAlignment, b.Len())
	}
	if q.finished.Load() {
		return ErrFinished
	}
	q.move(&q.counts.Filling, &q.counts.Occupied)
	q.occupied <- b
	return nil
}

// Discard returns a buffer the producer acquired but will not submit.
func (q *Queue) Discard(b *Buffer) {
	q.move(&q.counts.Filling, &q.counts.Empty)
	q.empty <- b
}

// Finish marks acquisition as finished. The consumer drains what is already
// queued and then stops. Safe to call more than once, but only from the
// producer goroutine (or after it has returned).
func (q *Queue) Finish() {
	q.finishOnce.Do(func() {
		q.finished.Store(true)
		close(q.occupied)
	})
}

// Halted is closed once the consumer has asked the producer to stop.
func (q *Queue) Halted() <-chan struct{} { return q.halt }

// --- Consumer side ---

// Next blocks until a filled buffer is available and returns it. It returns
// false once acquisition is finished and the occupied queue is empty.
func (q *Queue) Next() (*Buffer, bool) {
	b, ok := <-q.occupied
	if !ok {
		q.histogram[0]++
		return nil, false
	}
	// We hold b, so at most buffers-1 others can be queued.
	q.histogram[len(q.occupied)+1]++
	q.move(&q.counts.Occupied, &q.counts.Draining)
	return b, true
}

// Recycle returns a drained buffer to the empty pool.
func (q *Queue) Recycle(b *Buffer) {
	q.move(&q.counts.Draining, &q.counts.Empty)
	q.empty <- b
}

// Halt tells the producer that no more data is wanted. Buffers already
// queued are still delivered by Next. Safe to call more than once.
func (q *Queue) Halt() {
	q.haltOnce.Do(func() { close(q.halt) })
}

// Histogram returns a copy of the queue depth histogram. Only meaningful
// once the consumer has stopped.
func (q *Queue) Histogram() []uint64 {
	h := make([]uint64, len(q.histogram))
	copy(h, q.histogram)
	return h
}

// Counts returns a snapshot of buffer locations, consistent at the instant
// it is taken from any goroutine.
func (q *Queue) Counts() Counts {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.counts
}

// Release drops every buffer regardless of which side holds it. The caller
// must guarantee that producer and consumer have both returned.
func (q *Queue) Release() {
	q.Finish()
	q.Halt()
	for {
		select {
		case <-q.empty:
		default:
			for range q.occupied {
			}
			q.mu.Lock()
			q.counts = Counts{}
			q.mu.Unlock()
			return
		}
	}
}
