// SPDX-License-Identifier: MIT
package fft

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/dsp/window"
)

// WindowFunc selects the window applied to each transform block.
type WindowFunc int

// Available window functions. Rectangular leaves samples untouched and is
// the default, so accumulated power is the plain periodogram.
const (
	Rectangular WindowFunc = iota
	BartlettHann
	Blackman
	BlackmanNuttall
	Hann
	Hamming
	Lanczos
	Nuttall
)

func (w WindowFunc) String() string {
	switch w {
	case Rectangular:
		return "rectangular"
	case BartlettHann:
		return "bartletthann"
	case Blackman:
		return "blackman"
	case BlackmanNuttall:
		return "blackmannuttall"
	case Hann:
		return "hann"
	case Hamming:
		return "hamming"
	case Lanczos:
		return "lanczos"
	case Nuttall:
		return "nuttall"
	default:
		return "unknown"
	}
}

// ParseWindowFunc converts a string name (case-insensitive) to a WindowFunc
// enum, returns Rectangular and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "", "none", "rectangular", "boxcar":
		return Rectangular, nil
	case "bartletthann":
		return BartlettHann, nil
	case "blackman":
		return Blackman, nil
	case "blackmannuttall":
		return BlackmanNuttall, nil
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "lanczos":
		return Lanczos, nil
	case "nuttall":
		return Nuttall, nil
	default:
		return Rectangular, fmt.Errorf("unknown FFT window function name: '%s'", name)
	}
}

// Coefficients returns n window coefficients, or nil for Rectangular so the
// caller can skip the multiply entirely.
func Coefficients(n int, w WindowFunc) []float64 {
	if w == Rectangular || n <= 0 {
		return nil
	}

	// gonum windows scale the slice in place, so start from ones.
	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 1.0
	}
	switch w {
	case BartlettHann:
		window.BartlettHann(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case BlackmanNuttall:
		window.BlackmanNuttall(coeffs)
	case Hann:
		window.Hann(coeffs)
	case Hamming:
		window.Hamming(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	default:
		return nil
	}
	return coeffs
}
