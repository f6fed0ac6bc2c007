// SPDX-License-Identifier: MIT
package spectrum

import (
	"fmt"
	"time"

	"rtlpower/internal/iq"
	applog "rtlpower/internal/log"

	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// sampleBias is the unsigned byte value that encodes zero.
const sampleBias = 127.0

// Integrate is the worker loop. It blocks on the queue until a filled buffer
// arrives, converts its bytes into the input workspace, transforms every N
// samples and accumulates power, then recycles the buffer. It returns nil
// once acquisition is finished and the queue is drained.
//
// After Repeats transforms no more transforms are done, and the producer is
// asked to stop, but queued buffers are still taken and recycled so the
// producer is never left blocked.
func (d *Datastore) Integrate() error {
	if d.closed.Load() {
		return ErrClosed
	}
	if !d.running.CompareAndSwap(false, true) {
		return ErrRunning
	}

	d.started = time.Now()
	defer func() {
		d.finished = time.Now()
		close(d.done)
	}()

	for {
		buf, ok := d.queue.Next()
		if !ok {
			applog.Debugf("Spectrum: session %s drained (%d/%d transforms, %d bytes)",
				d.session, d.repeatsDone, d.repeats, d.bytesConsumed)
			return nil
		}

		err := d.drain(buf)
		d.queue.Recycle(buf)
		if err != nil {
			d.queue.Halt()
			return err
		}
	}
}

// drain converts one buffer into the input workspace. The fill index carries
// over between buffers, so a block can start in one buffer and end in the
// next.
func (d *Datastore) drain(buf *iq.Buffer) error {
	data := buf.Bytes()
	if len(data)%2 != 0 {
		return fmt.Errorf("%w: %d bytes", iq.ErrBufferAlignment, len(data))
	}
	d.bytesConsumed += int64(len(data))

	in := d.plan.Input()
	for p := 0; p < len(data) && d.repeatsDone < d.repeats; p += 2 {
		s := complex(float64(data[p])-sampleBias, float64(data[p+1])-sampleBias)

		// Negating odd samples rotates the spectrum by N/2, putting DC at
		// the centre bin.
		if d.fill&1 == 1 {
			s = -s
		}
		if d.window != nil {
			s *= complex(d.window[d.fill], 0)
		}
		in[d.fill] = s
		d.fill++

		if d.fill == d.n {
			if err := d.transform(); err != nil {
				return err
			}
			d.fill = 0
		}
	}
	return nil
}

// transform executes the plan and adds |X[i]|² to pwr[i].
func (d *Datastore) transform() error {
	if err := d.plan.Execute(); err != nil {
		return fmt.Errorf("spectrum: transform: %w", err)
	}

	for i, c := range d.plan.Output() {
		d.re[i] = real(c)
		d.im[i] = imag(c)
	}
	vecmath.Power(d.power, d.re, d.im)
	floats.Add(d.pwr, d.power)

	d.repeatsDone++
	if d.repeatsDone == d.repeats {
		applog.Debugf("Spectrum: session %s reached %d transforms", d.session, d.repeats)
		d.queue.Halt()
	}
	return nil
}
