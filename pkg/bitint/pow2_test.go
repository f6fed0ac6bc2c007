// SPDX-License-Identifier: MIT
package bitint

import "testing"

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int
		want bool
	}{
		{-8, false},
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{512, true},
		{1000, false},
		{1 << 24, true},
		{1<<24 + 1, false},
	}
	for _, tt := range tests {
		if got := IsPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("IsPowerOfTwo(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{-1, 1},
		{0, 1},
		{1, 1},
		{2, 2},
		{3, 4},
		{500, 512},
		{512, 512},
		{513, 1024},
		{1<<30 - 1, 1 << 30},
	}
	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestLog2(t *testing.T) {
	tests := []struct {
		n, want int
	}{
		{1, 0},
		{2, 1},
		{512, 9},
		{1 << 20, 20},
		{0, -1},
		{6, -1},
		{-4, -1},
	}
	for _, tt := range tests {
		if got := Log2(tt.n); got != tt.want {
			t.Errorf("Log2(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestNoAllocs(t *testing.T) {
	allocs := testing.AllocsPerRun(100, func() {
		_ = NextPowerOfTwo(1000)
		_ = IsPowerOfTwo(1024)
		_ = Log2(4096)
	})
	if allocs != 0 {
		t.Errorf("allocated %.0f times, want 0", allocs)
	}
}

func BenchmarkNextPowerOfTwo(b *testing.B) {
	for b.Loop() {
		_ = NextPowerOfTwo(1000)
	}
}
