// SPDX-License-Identifier: MIT

// Package source feeds raw I/Q bytes from an io.Reader into an iq.Queue. It
// is the producer half of an integration session.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"rtlpower/internal/iq"
	applog "rtlpower/internal/log"
)

// Stats summarises one Pump call.
type Stats struct {
	Buffers int   // Buffers submitted to the queue.
	Bytes   int64 // Bytes submitted to the queue.
	Dropped int   // Trailing bytes dropped to keep a whole number of samples.
	EOF     bool  // The reader was exhausted.
	Halted  bool  // The consumer stopped the producer.
}

// Options configure Pump.
type Options struct {
	// Tap, when set, sees every submitted buffer before the consumer does.
	Tap io.Writer
}

// Pump reads r into buffers acquired from q until the reader is exhausted,
// the consumer halts the queue or ctx is cancelled. Acquisition is always
// marked finished on return so the consumer drains and exits.
//
// A cancelled context is not an error: the caller asked for the stop.
func Pump(ctx context.Context, q *iq.Queue, r io.Reader, opts Options) (Stats, error) {
	var stats Stats
	defer q.Finish()

	for {
		buf, err := q.Acquire(ctx)
		switch {
		case errors.Is(err, iq.ErrHalted):
			stats.Halted = true
			return stats, nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return stats, nil
		case err != nil:
			return stats, fmt.Errorf("acquire buffer: %w", err)
		}

		n, rerr := io.ReadFull(r, buf.Raw())
		if n%2 != 0 {
			// Only a short read can be odd; the stream ended mid-sample.
			n--
			stats.Dropped++
			applog.Warnf("Source: input ended mid-sample, dropping trailing byte")
		}

		if n == 0 {
			q.Discard(buf)
		} else {
			if err := buf.SetLen(n); err != nil {
				q.Discard(buf)
				return stats, err
			}
			if opts.Tap != nil {
				if _, err := opts.Tap.Write(buf.Bytes()); err != nil {
					q.Discard(buf)
					return stats, fmt.Errorf("tap: %w", err)
				}
			}
			if err := q.Submit(buf); err != nil {
				return stats, fmt.Errorf("submit buffer: %w", err)
			}
			stats.Buffers++
			stats.Bytes += int64(n)
		}

		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			stats.EOF = true
			applog.Debugf("Source: input exhausted after %d bytes", stats.Bytes)
			return stats, nil
		}
		if rerr != nil {
			return stats, fmt.Errorf("read input: %w", rerr)
		}
	}
}
