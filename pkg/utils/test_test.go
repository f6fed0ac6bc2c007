// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"testing"
)

func TestMockTransport(t *testing.T) {
	tests := []struct {
		name  string
		input []any
	}{
		{"Empty", nil},
		{"Single Value", []any{0.5}},
		{"Mixed", []any{"spectrum", 1, []float64{0.1, 0.2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mt := &MockTransport{}
			for _, v := range tt.input {
				if err := mt.Send(v); err != nil {
					t.Errorf("MockTransport.Send() error = %v", err)
				}
			}
			if got := len(mt.Messages()); got != len(tt.input) {
				t.Errorf("stored %d messages, want %d", got, len(tt.input))
			}
			_ = mt.Close()
			if !mt.Closed {
				t.Error("Close() did not mark transport closed")
			}
		})
	}
}

func TestEncodeIQ(t *testing.T) {
	tests := []struct {
		name string
		in   complex128
		i, q byte
	}{
		{"Zero", 0, 127, 127},
		{"Positive", complex(10, -10), 137, 117},
		{"Clamp high", complex(500, 0), 255, 127},
		{"Clamp low", complex(0, -500), 127, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodeIQ([]complex128{tt.in})
			if got[0] != tt.i || got[1] != tt.q {
				t.Errorf("EncodeIQ(%v) = [%d %d], want [%d %d]", tt.in, got[0], got[1], tt.i, tt.q)
			}
		})
	}
}

func TestGenerateIQTone(t *testing.T) {
	const n = 64
	tone := GenerateIQTone(n, 64, 0, 100)
	if len(tone) != 2*n {
		t.Fatalf("len = %d, want %d", len(tone), 2*n)
	}
	// A 0 Hz tone is constant: I at +amplitude, Q at zero.
	for k := 0; k < n; k++ {
		if tone[2*k] != 227 || tone[2*k+1] != 127 {
			t.Fatalf("sample %d = [%d %d], want [227 127]", k, tone[2*k], tone[2*k+1])
		}
	}
}

func TestConstantIQ(t *testing.T) {
	got := ConstantIQ(3, 1, 2)
	want := []byte{1, 2, 1, 2, 1, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ConstantIQ = %v, want %v", got, want)
		}
	}
}

func TestFindPeakBin(t *testing.T) {
	values := make([]float64, 256)
	for i := range values {
		values[i] = math.Exp(-0.01 * math.Pow(float64(i-64), 2))
	}

	tests := []struct {
		name       string
		start, end int
		want       int
	}{
		{"Full range", 0, 255, 64},
		{"Clamped range", -5, 1000, 64},
		{"Right of peak", 100, 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindPeakBin(values, tt.start, tt.end); got != tt.want {
				t.Errorf("FindPeakBin(%d, %d) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}

	if got := FindPeakBin(nil, 0, 10); got != 0 {
		t.Errorf("FindPeakBin(nil) = %d, want 0", got)
	}
}
