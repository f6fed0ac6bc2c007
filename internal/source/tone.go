// SPDX-License-Identifier: MIT
package source

import (
	"math"
	"math/rand/v2"
)

// Tone is an endless stream of biased 8-bit I/Q samples carrying a single
// complex exponential at Offset Hz from the centre, plus optional gaussian
// noise. It stands in for a receiver when none is attached.
type Tone struct {
	step      float64 // Phase advance per sample, radians.
	phase     float64
	amplitude float64
	noise     float64
	rng       *rand.Rand
}

// NewTone creates a tone generator. amplitude and noise are in byte units;
// seed makes the noise reproducible.
func NewTone(sampleRate, offset, amplitude, noise float64, seed uint64) *Tone {
	return &Tone{
		step:      2 * math.Pi * offset / sampleRate,
		amplitude: amplitude,
		noise:     noise,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Read fills p with whole I/Q pairs. It never returns an error; an odd final
// byte of p is left untouched.
func (t *Tone) Read(p []byte) (int, error) {
	n := len(p) &^ 1
	for k := 0; k < n; k += 2 {
		i := t.amplitude * math.Cos(t.phase)
		q := t.amplitude * math.Sin(t.phase)
		if t.noise > 0 {
			i += t.noise * t.rng.NormFloat64()
			q += t.noise * t.rng.NormFloat64()
		}
		p[k] = quantise(i)
		p[k+1] = quantise(q)

		t.phase += t.step
		if t.phase > math.Pi {
			t.phase -= 2 * math.Pi
		} else if t.phase < -math.Pi {
			t.phase += 2 * math.Pi
		}
	}
	return n, nil
}

func quantise(v float64) byte {
	v = math.Round(v + 127)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}
	return byte(v)
}
