// SPDX-License-Identifier: MIT
/*
Package iq implements the sample buffer pool shared by the acquisition
producer and the spectrum worker.

Buffers hold raw interleaved unsigned 8-bit I/Q bytes exactly as delivered
by an rtl-sdr style receiver (I, Q, I, Q, ...), each component biased by 127.
A buffer is allocated once, never resized, and moved between the producer
and the consumer by handle through the Queue.
*/
package iq

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferAlignment is returned when a byte count does not describe a
	// whole number of I/Q pairs.
	ErrBufferAlignment = errors.New("iq: byte count is not a multiple of 2")

	// ErrBufferOverflow is returned when a length exceeds the buffer capacity.
	ErrBufferOverflow = errors.New("iq: length exceeds buffer capacity")
)

// Buffer is a fixed-capacity holder of raw I/Q bytes.
type Buffer struct {
	data []byte // Backing storage, len == capacity for the whole session.
	n    int    // Number of valid bytes at the front of data.
}

// NewBuffer allocates a buffer of the given capacity in bytes. The buffer
// starts full (Len == Cap) so a producer filling the whole capacity does not
// need to call SetLen.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity), n: capacity}
}

// Cap returns the fixed capacity in bytes.
func (b *Buffer) Cap() int { return len(b.data) }

// Len returns the number of valid bytes.
func (b *Buffer) Len() int { return b.n }

// Bytes returns the valid bytes. The slice aliases the buffer storage and is
// only valid while the caller owns the buffer.
func (b *Buffer) Bytes() []byte { return b.data[:b.n] }

// Raw returns the full backing storage for filling.
func (b *Buffer) Raw() []byte { return b.data }

// SetLen marks the first n bytes as valid.
func (b *Buffer) SetLen(n int) error {
	if n < 0 || n > len(b.data) {
		return fmt.Errorf("%w: %d > %d", ErrBufferOverflow, n, len(b.data))
	}
	if n%2 != 0 {
		return fmt.Errorf("%w: %d bytes", ErrBufferAlignment, n)
	}
	b.n = n
	return nil
}

// reset restores the buffer to full length before it is handed out again.
func (b *Buffer) reset() {
	b.n = len(b.data)
}
