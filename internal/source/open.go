// SPDX-License-Identifier: MIT
package source

import (
	"fmt"
	"io"
	"os"

	"rtlpower/internal/audio"
	"rtlpower/internal/config"
	applog "rtlpower/internal/log"
)

// Open resolves the configured input to a reader of raw I/Q bytes:
//
//	"-"          standard input
//	"tone"       synthetic tone (see Tone)
//	"soundcard"  stereo PortAudio capture, I on the left channel
//	anything     a file path
//
// The soundcard requires audio.Initialize to have been called.
func Open(in config.InputConfig, sampleRate float64) (io.ReadCloser, error) {
	switch in.Source {
	case config.SourceStdin:
		applog.Infof("Source: reading I/Q from stdin")
		return io.NopCloser(os.Stdin), nil

	case config.SourceTone:
		applog.Infof("Source: synthetic tone at %+.0f Hz (amplitude %.1f, noise %.1f)",
			in.ToneOffset, in.ToneAmplitude, in.ToneNoise)
		return io.NopCloser(NewTone(sampleRate, in.ToneOffset, in.ToneAmplitude, in.ToneNoise, 1)), nil

	case config.SourceSoundcard:
		c, err := audio.NewCapture(in.Device, sampleRate, in.LowLatency)
		if err != nil {
			return nil, fmt.Errorf("open soundcard: %w", err)
		}
		return c, nil

	default:
		f, err := os.Open(in.Source)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		applog.Infof("Source: reading I/Q from %s", in.Source)
		return f, nil
	}
}
