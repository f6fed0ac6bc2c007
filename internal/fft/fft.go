// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"fmt"
	"strings"

	"rtlpower/pkg/bitint"

	algofft "github.com/MeKo-Christian/algo-fft"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrLengthMismatch is returned when a workspace does not match the plan size.
var ErrLengthMismatch = errors.New("fft: slice length mismatch")

// Transform computes a fixed-size forward complex DFT. Implementations are
// planned once and reused for every call; they are not safe for concurrent
// use.
type Transform interface {
	Len() int
	Forward(dst, src []complex128) error
}

// Backend selects the library that plans and executes the transform.
type Backend int

const (
	// Auto uses AlgoFFT for powers of two and Gonum otherwise.
	Auto Backend = iota
	Gonum
	AlgoFFT
)

func (b Backend) String() string {
	switch b {
	case Auto:
		return "auto"
	case Gonum:
		return "gonum"
	case AlgoFFT:
		return "algofft"
	default:
		return "unknown"
	}
}

// ParseBackend converts a backend name (case-insensitive) to a Backend.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "", "auto":
		return Auto, nil
	case "gonum":
		return Gonum, nil
	case "algofft", "algo-fft":
		return AlgoFFT, nil
	default:
		return Auto, fmt.Errorf("unknown fft backend: '%s'", name)
	}
}

// Resolve returns the concrete backend used for a transform of size n.
func (b Backend) Resolve(n int) Backend {
	if b != Auto {
		return b
	}
	if bitint.IsPowerOfTwo(n) {
		return AlgoFFT
	}
	return Gonum
}

// NewTransform plans a forward transform of size n with the given backend.
func NewTransform(n int, backend Backend) (Transform, error) {
	if n <= 0 {
		return nil, fmt.Errorf("fft: size must be positive, got %d", n)
	}

	switch backend.Resolve(n) {
	case Gonum:
		return &gonumTransform{plan: fourier.NewCmplxFFT(n)}, nil
	case AlgoFFT:
		plan, err := algofft.NewPlan64(n)
		if err != nil {
			return nil, fmt.Errorf("fft: algofft plan of size %d: %w", n, err)
		}
		return &algoTransform{plan: plan, n: n}, nil
	default:
		return nil, fmt.Errorf("fft: unsupported backend %d", backend)
	}
}

// gonumTransform wraps gonum's mixed-radix complex FFT. Any size is accepted.
type gonumTransform struct {
	plan *fourier.CmplxFFT
}

func (t *gonumTransform) Len() int { return t.plan.Len() }

func (t *gonumTransform) Forward(dst, src []complex128) error {
	n := t.plan.Len()
	if len(dst) != n || len(src) != n {
		return fmt.Errorf("%w: plan %d, dst %d, src %d", ErrLengthMismatch, n, len(dst), len(src))
	}
	t.plan.Coefficients(dst, src)
	return nil
}

// algoTransform wraps an algo-fft plan.
type algoTransform struct {
	plan *algofft.Plan[complex128]
	n    int
}

func (t *algoTransform) Len() int { return t.n }

func (t *algoTransform) Forward(dst, src []complex128) error {
	if len(dst) != t.n || len(src) != t.n {
		return fmt.Errorf("%w: plan %d, dst %d, src %d", ErrLengthMismatch, t.n, len(dst), len(src))
	}
	return t.plan.Forward(dst, src)
}
