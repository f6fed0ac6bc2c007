// SPDX-License-Identifier: MIT
/*
Package spectrum integrates the power spectrum of a raw I/Q sample stream.

A Datastore owns everything one acquisition session needs: the buffer pool
and its queue, a transform plan bound to two preallocated workspaces, and the
running power accumulator. One producer fills buffers through Queue(); one
worker goroutine runs Integrate, which drains them, transforms in blocks of N
samples and sums the squared magnitude of every bin into the accumulator.

Thread Safety:
  - The queue is the only state shared between producer and worker
  - Workspaces, fill index, progress and the accumulator belong to the worker
  - Result and Close are only valid once Done is closed
*/
package spectrum

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"rtlpower/internal/fft"
	"rtlpower/internal/iq"
	applog "rtlpower/internal/log"

	"github.com/google/uuid"
)

// MaxBins bounds the transform size accepted by NewDatastore.
const MaxBins = 1 << 24

var (
	// ErrResourceAllocation is returned when a Datastore cannot be built.
	// Nothing from a failed construction is usable.
	ErrResourceAllocation = errors.New("spectrum: resource allocation failure")

	// ErrRunning is returned when the worker is started twice or the
	// Datastore is closed while the worker is still running.
	ErrRunning = errors.New("spectrum: worker is running")

	// ErrClosed is returned when a closed Datastore is used.
	ErrClosed = errors.New("spectrum: datastore closed")
)

// Options configures one integration session.
type Options struct {
	N         int            // Transform size (number of bins).
	BufLength int            // Bytes per buffer, must be even.
	Buffers   int            // Buffers in the pool.
	Repeats   int64          // Transforms to integrate before stopping.
	Backend   fft.Backend    // Transform library.
	Window    fft.WindowFunc // Window applied to every block.
}

// Datastore aggregates the state of one integration session.
type Datastore struct {
	session uuid.UUID
	n       int
	repeats int64

	queue  *iq.Queue
	plan   *fft.Context
	window []float64 // nil for rectangular

	// Worker-owned.
	fill          int
	repeatsDone   int64
	bytesConsumed int64
	pwr           []float64
	re, im, power []float64 // scratch for one block's squared magnitude
	started       time.Time
	finished      time.Time

	running atomic.Bool
	done    chan struct{}
	closed  atomic.Bool
}

// NewDatastore allocates the buffer pool, the workspaces and the transform
// plan. The plan is built once here and reused for every transform.
func NewDatastore(opts Options) (*Datastore, error) {
	if opts.N <= 0 || opts.N > MaxBins {
		return nil, fmt.Errorf("%w: transform size %d out of range (1..%d)", ErrResourceAllocation, opts.N, MaxBins)
	}
	if opts.Repeats <= 0 {
		return nil, fmt.Errorf("%w: repeats must be positive, got %d", ErrResourceAllocation, opts.Repeats)
	}

	queue, err := iq.NewQueue(opts.Buffers, opts.BufLength)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceAllocation, err)
	}

	plan, err := fft.NewContext(opts.N, opts.Backend)
	if err != nil {
		queue.Release()
		return nil, fmt.Errorf("%w: %w", ErrResourceAllocation, err)
	}

	d := &Datastore{
		session: uuid.New(),
		n:       opts.N,
		repeats: opts.Repeats,
		queue:   queue,
		plan:    plan,
		window:  fft.Coefficients(opts.N, opts.Window),
		pwr:     make([]float64, opts.N),
		re:      make([]float64, opts.N),
		im:      make([]float64, opts.N),
		power:   make([]float64, opts.N),
		done:    make(chan struct{}),
	}

	applog.Infof("Spectrum: session %s (bins: %d, repeats: %d, buffers: %d x %d bytes, backend: %s, window: %s)",
		d.session, opts.N, opts.Repeats, opts.Buffers, opts.BufLength, plan.Backend(), opts.Window)

	return d, nil
}

// Session returns the identifier of this integration session.
func (d *Datastore) Session() uuid.UUID { return d.session }

// Repeats returns the number of transforms the session integrates.
func (d *Datastore) Repeats() int64 { return d.repeats }

// Queue returns the producer side of the buffer handoff.
func (d *Datastore) Queue() *iq.Queue { return d.queue }

// Done is closed when Integrate returns.
func (d *Datastore) Done() <-chan struct{} { return d.done }

// Result is what a finished session hands to its consumers.
type Result struct {
	Session        string
	N              int
	Repeats        int64
	RepeatsDone    int64
	Pwr            []float64 // Summed |X[i]|², DC at index N/2.
	QueueHistogram []uint64
	BytesConsumed  int64
	Started        time.Time
	Finished       time.Time
}

// Result returns a copy of the accumulated spectrum and session counters.
// It must only be called after Done is closed.
func (d *Datastore) Result() Result {
	pwr := make([]float64, len(d.pwr))
	copy(pwr, d.pwr)
	return Result{
		Session:        d.session.String(),
		N:              d.n,
		Repeats:        d.repeats,
		RepeatsDone:    d.repeatsDone,
		Pwr:            pwr,
		QueueHistogram: d.queue.Histogram(),
		BytesConsumed:  d.bytesConsumed,
		Started:        d.started,
		Finished:       d.finished,
	}
}

// Close releases every buffer, wherever it is, plus the workspaces and the
// plan. The worker must have returned.
func (d *Datastore) Close() error {
	if d.closed.Load() {
		return nil
	}
	if d.running.Load() {
		select {
		case <-d.done:
		default:
			return ErrRunning
		}
	}

	d.closed.Store(true)
	d.queue.Release()
	err := d.plan.Close()
	d.window = nil
	d.re, d.im, d.power = nil, nil, nil
	applog.Debugf("Spectrum: session %s released", d.session)
	return err
}
