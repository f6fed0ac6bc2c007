// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	applog "rtlpower/internal/log"

	"github.com/gordonklaus/portaudio"
)

const (
	captureChannels = 2    // Left carries I, right carries Q.
	captureFrames   = 1024 // Frames per PortAudio callback.
	captureChunks   = 64   // Callback chunks buffered ahead of Read.
)

// Capture streams a stereo soundcard input as biased 8-bit I/Q bytes, the
// layout an rtl-sdr dongle produces. It implements io.ReadCloser.
//
// The PortAudio callback never blocks: when the reader falls behind, whole
// chunks are dropped and counted.
type Capture struct {
	stream  *portaudio.Stream
	latency time.Duration

	free   chan []byte // Chunks the callback may fill.
	filled chan []byte // Chunks waiting for Read.
	done   chan struct{}

	current []byte // Chunk being returned by Read.
	pending []byte // Unread tail of current.

	dropped   atomic.Uint64
	closeOnce sync.Once
}

// NewCapture opens and starts a stereo input stream on the given device.
// PortAudio must be initialised.
func NewCapture(deviceID int, sampleRate float64, lowLatency bool) (*Capture, error) {
	device, err := InputDevice(deviceID)
	if err != nil {
		return nil, err
	}
	if device.MaxInputChannels < captureChannels {
		return nil, fmt.Errorf("device %q has %d input channels, I/Q capture needs %d",
			device.Name, device.MaxInputChannels, captureChannels)
	}

	c := &Capture{
		latency: device.DefaultHighInputLatency,
		free:    make(chan []byte, captureChunks),
		filled:  make(chan []byte, captureChunks),
		done:    make(chan struct{}),
	}
	if lowLatency {
		c.latency = device.DefaultLowInputLatency
	}
	for range captureChunks {
		c.free <- make([]byte, captureFrames*captureChannels)
	}

	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: captureChannels,
			Device:   device,
			Latency:  c.latency,
		},
		Output: portaudio.StreamDeviceParameters{
			Channels: 0, // No output device
			Device:   nil,
		},
		FramesPerBuffer: captureFrames,
		SampleRate:      sampleRate,
	}

	stream, err := portaudio.OpenStream(params, c.processInputStream)
	if err != nil {
		return nil, fmt.Errorf("open input stream: %w", err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	applog.Infof("Audio: capturing I/Q from %q at %.0f Hz (latency %s)", device.Name, sampleRate, c.latency)
	return c, nil
}

// processInputStream is the PortAudio callback. It runs on PortAudio's
// thread and must not block or allocate.
func (c *Capture) processInputStream(in []int16) {
	var chunk []byte
	select {
	case chunk = <-c.free:
	default:
		c.dropped.Add(1)
		return
	}

	chunk = chunk[:min(cap(chunk), len(in))]
	encodeFrames(chunk, in)

	select {
	case c.filled <- chunk:
	default:
		c.free <- chunk
		c.dropped.Add(1)
	}
}

// encodeFrames converts interleaved signed 16-bit samples to biased unsigned
// bytes, keeping the top eight bits.
func encodeFrames(dst []byte, in []int16) {
	for i, s := range in[:len(dst)] {
		v := int(s)>>8 + 127
		if v < 0 {
			v = 0
		}
		dst[i] = byte(v)
	}
}

// Read copies captured I/Q bytes into p, blocking until the soundcard has
// delivered some. It returns io.EOF once the capture is closed and drained.
func (c *Capture) Read(p []byte) (int, error) {
	if len(c.pending) == 0 {
		if c.current != nil {
			c.free <- c.current[:cap(c.current)]
			c.current = nil
		}

		select {
		case chunk := <-c.filled:
			c.current, c.pending = chunk, chunk
		case <-c.done:
			select {
			case chunk := <-c.filled:
				c.current, c.pending = chunk, chunk
			default:
				return 0, io.EOF
			}
		}
	}

	n := copy(p, c.pending)
	c.pending = c.pending[n:]
	return n, nil
}

// Dropped returns the number of callback chunks lost because the reader fell
// behind.
func (c *Capture) Dropped() uint64 { return c.dropped.Load() }

// Close stops and closes the stream. It is safe to call twice. Pending Reads return io.EOF once the
// already captured chunks are consumed.
func (c *Capture) Close() error {
	var err error
	c.closeOnce.Do(func() {
		if stopErr := c.stream.Stop(); stopErr != nil {
			err = stopErr
		}
		if closeErr := c.stream.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		close(c.done)
		if n := c.dropped.Load(); n > 0 {
			applog.Warnf("Audio: %d capture chunks dropped (reader too slow)", n)
		}
	})
	return err
}
