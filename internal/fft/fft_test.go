// SPDX-License-Identifier: MIT
package fft

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"
)

const testFFTSize = 1024

// naiveDFT is the O(n²) reference transform.
func naiveDFT(x []complex128) []complex128 {
	n := len(x)
	out := make([]complex128, n)
	for k := range n {
		var sum complex128
		for t := range n {
			angle := -2 * math.Pi * float64(k*t) / float64(n)
			sum += x[t] * cmplx.Exp(complex(0, angle))
		}
		out[k] = sum
	}
	return out
}

func testSignal(n int) []complex128 {
	x := make([]complex128, n)
	for i := range x {
		x[i] = complex(math.Sin(0.3*float64(i))+0.25, math.Cos(0.7*float64(i))-0.5)
	}
	return x
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		name    string
		want    Backend
		wantErr bool
	}{
		{"", Auto, false},
		{"AUTO", Auto, false},
		{"gonum", Gonum, false},
		{"algofft", AlgoFFT, false},
		{"algo-fft", AlgoFFT, false},
		{"fftw", Auto, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackend(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBackend(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseBackend(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestBackendResolve(t *testing.T) {
	if got := Auto.Resolve(512); got != AlgoFFT {
		t.Errorf("Auto.Resolve(512) = %v, want algofft", got)
	}
	if got := Auto.Resolve(500); got != Gonum {
		t.Errorf("Auto.Resolve(500) = %v, want gonum", got)
	}
	if got := Gonum.Resolve(512); got != Gonum {
		t.Errorf("Gonum.Resolve(512) = %v, want gonum", got)
	}
}

func TestTransformMatchesNaiveDFT(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		backend Backend
	}{
		{"gonum/16", 16, Gonum},
		{"gonum/12", 12, Gonum},
		{"algofft/16", 16, AlgoFFT},
		{"algofft/64", 64, AlgoFFT},
		{"auto/10", 10, Auto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := NewTransform(tt.n, tt.backend)
			if err != nil {
				t.Fatalf("NewTransform(%d) error = %v", tt.n, err)
			}
			if tr.Len() != tt.n {
				t.Errorf("Len() = %d, want %d", tr.Len(), tt.n)
			}

			x := testSignal(tt.n)
			got := make([]complex128, tt.n)
			if err := tr.Forward(got, x); err != nil {
				t.Fatalf("Forward() error = %v", err)
			}
			want := naiveDFT(x)
			for k := range want {
				if cmplx.Abs(got[k]-want[k]) > 1e-9*float64(tt.n) {
					t.Errorf("bin %d = %v, want %v", k, got[k], want[k])
				}
			}
		})
	}
}

func TestBackendsAgree(t *testing.T) {
	g, err := NewTransform(testFFTSize, Gonum)
	if err != nil {
		t.Fatal(err)
	}
	a, err := NewTransform(testFFTSize, AlgoFFT)
	if err != nil {
		t.Fatal(err)
	}

	x := testSignal(testFFTSize)
	gOut := make([]complex128, testFFTSize)
	aOut := make([]complex128, testFFTSize)
	_ = g.Forward(gOut, x)
	_ = a.Forward(aOut, x)

	for k := range gOut {
		if cmplx.Abs(gOut[k]-aOut[k]) > 1e-6 {
			t.Fatalf("bin %d: gonum %v, algofft %v", k, gOut[k], aOut[k])
		}
	}
}

func TestTransformLengthMismatch(t *testing.T) {
	for _, backend := range []Backend{Gonum, AlgoFFT} {
		t.Run(backend.String(), func(t *testing.T) {
			tr, err := NewTransform(8, backend)
			if err != nil {
				t.Fatal(err)
			}
			err = tr.Forward(make([]complex128, 8), make([]complex128, 4))
			if !errors.Is(err, ErrLengthMismatch) {
				t.Errorf("Forward() error = %v, want ErrLengthMismatch", err)
			}
		})
	}
}

func TestNewTransformInvalidSize(t *testing.T) {
	if _, err := NewTransform(0, Gonum); err == nil {
		t.Error("NewTransform(0) expected error")
	}
}

func TestContextExecute(t *testing.T) {
	ctx, err := NewContext(8, Auto)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	defer ctx.Close()

	if ctx.Len() != 8 || len(ctx.Input()) != 8 || len(ctx.Output()) != 8 {
		t.Fatalf("workspace sizes wrong: len %d, in %d, out %d", ctx.Len(), len(ctx.Input()), len(ctx.Output()))
	}

	// An impulse transforms to a flat spectrum.
	ctx.Input()[0] = 1
	if err := ctx.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for k, v := range ctx.Output() {
		if cmplx.Abs(v-1) > 1e-12 {
			t.Errorf("bin %d = %v, want 1", k, v)
		}
	}
}

// TestSpectralShiftIdentity checks that negating every other input sample
// equals circularly shifting the spectrum by n/2.
func TestSpectralShiftIdentity(t *testing.T) {
	const n = 64
	tr, err := NewTransform(n, Auto)
	if err != nil {
		t.Fatal(err)
	}

	x := testSignal(n)
	shiftedIn := make([]complex128, n)
	for i, v := range x {
		if i%2 == 1 {
			v = -v
		}
		shiftedIn[i] = v
	}

	plain := make([]complex128, n)
	shifted := make([]complex128, n)
	_ = tr.Forward(plain, x)
	_ = tr.Forward(shifted, shiftedIn)

	for i := range n {
		want := plain[(i+n/2)%n]
		if cmplx.Abs(shifted[i]-want) > 1e-9 {
			t.Errorf("bin %d = %v, want %v", i, shifted[i], want)
		}
	}
}

func TestContextExecuteHotPath(t *testing.T) {
	ctx, err := NewContext(testFFTSize, Gonum)
	if err != nil {
		t.Fatal(err)
	}
	copy(ctx.Input(), testSignal(testFFTSize))

	// Warm-up call (potential initial allocations).
	_ = ctx.Execute()
	allocs := testing.AllocsPerRun(100, func() {
		_ = ctx.Execute()
	})

	if allocs > 0 {
		t.Errorf("Expected zero allocations in Execute hot path, got %.1f", allocs)
	}
}

func TestParseWindowFunc(t *testing.T) {
	tests := []struct {
		name    string
		want    WindowFunc
		wantErr bool
	}{
		{"", Rectangular, false},
		{"none", Rectangular, false},
		{"Hann", Hann, false},
		{"hanning", Hann, false},
		{"HAMMING", Hamming, false},
		{"blackmannuttall", BlackmanNuttall, false},
		{"kaiser", Rectangular, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseWindowFunc(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseWindowFunc(%q) error = %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("ParseWindowFunc(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCoefficients(t *testing.T) {
	if c := Coefficients(16, Rectangular); c != nil {
		t.Errorf("Rectangular coefficients = %v, want nil", c)
	}

	c := Coefficients(17, Hann)
	if len(c) != 17 {
		t.Fatalf("len = %d, want 17", len(c))
	}
	if math.Abs(c[0]) > 1e-12 || math.Abs(c[8]-1) > 1e-12 {
		t.Errorf("Hann edges/centre = %.3f/%.3f, want 0/1", c[0], c[8])
	}
}

func BenchmarkContextExecute(b *testing.B) {
	for _, backend := range []Backend{Gonum, AlgoFFT} {
		b.Run(backend.String(), func(b *testing.B) {
			ctx, err := NewContext(testFFTSize, backend)
			if err != nil {
				b.Fatal(err)
			}
			copy(ctx.Input(), testSignal(testFFTSize))

			b.ReportAllocs()
			for b.Loop() {
				_ = ctx.Execute()
			}
		})
	}
}
