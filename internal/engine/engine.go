// SPDX-License-Identifier: MIT
/*
Package engine runs integration sessions over one input stream.

Each session gets a fresh spectrum.Datastore. The worker runs on its own
goroutine while the caller's goroutine pumps the input:

	source.Pump ──buffers──▶ Datastore.Integrate
	     ▲                         │
	     └────── halt on repeats ──┘

When the worker has integrated enough transforms it halts the producer, the
producer finishes acquisition, the worker drains and returns, and the session
result is reported and published. Sessions repeat until the configured count
is reached, the input ends or the context is cancelled.
*/
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"

	"rtlpower/internal/config"
	"rtlpower/internal/fft"
	applog "rtlpower/internal/log"
	"rtlpower/internal/report"
	"rtlpower/internal/source"
	"rtlpower/internal/spectrum"
	"rtlpower/internal/transport"
)

// Engine owns the per-run settings shared by every session.
type Engine struct {
	config    *config.Config
	opts      spectrum.Options
	out       io.Writer
	transport transport.Transport
	tap       io.Writer
	bands     []report.Band
}

// NewEngine validates cfg and prepares the session options. Spectra are
// written as text to out and sent to t; tap, when non-nil, receives every raw
// buffer (see audio.Recorder).
func NewEngine(cfg *config.Config, out io.Writer, t transport.Transport, tap io.Writer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	backend, _ := fft.ParseBackend(cfg.Spectrum.Backend)
	window, _ := fft.ParseWindowFunc(cfg.Spectrum.Window)

	if t == nil {
		t = transport.Multi(nil)
	}

	bands := make([]report.Band, len(cfg.Output.Bands))
	for i, b := range cfg.Output.Bands {
		bands[i] = report.Band{Name: b.Name, LowHz: b.LowHz, HighHz: b.HighHz}
	}

	return &Engine{
		config: cfg,
		opts: spectrum.Options{
			N:         cfg.Spectrum.Bins,
			BufLength: cfg.Spectrum.BufferLength,
			Buffers:   cfg.Spectrum.Buffers,
			Repeats:   cfg.Repeats(),
			Backend:   backend,
			Window:    window,
		},
		out:       out,
		transport: t,
		tap:       tap,
		bands:     bands,
	}, nil
}

// Options returns the Datastore options every session is built with.
func (e *Engine) Options() spectrum.Options { return e.opts }

// Session is the outcome of one integration.
type Session struct {
	Spectrum *report.Spectrum
	Result   spectrum.Result
	Source   source.Stats
}

// RunSession integrates one spectrum from r.
func (e *Engine) RunSession(ctx context.Context, r io.Reader) (*Session, error) {
	ds, err := spectrum.NewDatastore(e.opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := ds.Close(); err != nil {
			applog.Errorf("Engine: releasing session: %v", err)
		}
	}()

	workerErr := make(chan error, 1)
	go func() { workerErr <- ds.Integrate() }()

	stats, pumpErr := source.Pump(ctx, ds.Queue(), r, source.Options{Tap: e.tap})
	if err := errors.Join(<-workerErr, pumpErr); err != nil {
		return nil, err
	}

	res := ds.Result()
	return &Session{
		Spectrum: report.NewSpectrum(res, e.config.Tuner.CenterFrequency, e.config.Tuner.SampleRate),
		Result:   res,
		Source:   stats,
	}, nil
}

// Run performs up to config.Sessions sessions (0 means until the input
// ends) and returns how many spectra were produced.
func (e *Engine) Run(ctx context.Context, r io.Reader) (int, error) {
	limit := e.config.Sessions
	completed := 0

	for limit == 0 || completed < limit {
		if ctx.Err() != nil {
			break
		}

		s, err := e.RunSession(ctx, r)
		if err != nil {
			return completed, fmt.Errorf("session %d: %w", completed+1, err)
		}

		// An input that ends exactly on a session boundary leaves one empty
		// session behind; it is not worth reporting.
		if s.Result.RepeatsDone == 0 && completed > 0 {
			break
		}

		if err := e.publish(s); err != nil {
			return completed, err
		}
		completed++

		if s.Source.EOF {
			applog.Infof("Engine: input ended after %d session(s)", completed)
			break
		}
	}

	return completed, nil
}

func (e *Engine) publish(s *Session) error {
	if s.Result.RepeatsDone < s.Result.Repeats {
		applog.Warnf("Engine: session %s integrated %d of %d transforms",
			s.Result.Session, s.Result.RepeatsDone, s.Result.Repeats)
	}
	if s.Source.Dropped > 0 {
		applog.Warnf("Engine: session %s dropped %d trailing byte(s)", s.Result.Session, s.Source.Dropped)
	}

	if e.out != nil {
		if err := report.WriteText(e.out, s.Spectrum); err != nil {
			return fmt.Errorf("write spectrum: %w", err)
		}
		if len(e.bands) > 0 {
			if err := report.WriteBands(e.out, s.Spectrum.BandPowers(e.bands)); err != nil {
				return fmt.Errorf("write bands: %w", err)
			}
		}
		if e.config.Output.Histogram {
			if err := report.WriteHistogram(e.out, s.Result.QueueHistogram); err != nil {
				return fmt.Errorf("write histogram: %w", err)
			}
		}
	}

	if err := e.transport.Send(s.Spectrum); err != nil {
		applog.Warnf("Engine: publishing session %s: %v", s.Result.Session, err)
	}

	if applog.Enabled(applog.LevelDebug) {
		elapsed := s.Result.Finished.Sub(s.Result.Started)
		applog.Debugf("Engine: session %s took %s (%d bytes, %d buffers)",
			s.Result.Session, elapsed, s.Result.BytesConsumed, s.Source.Buffers)
	}
	return nil
}
