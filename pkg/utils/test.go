package utils

import (
	"math"
	"sync"
)

// MockTransport implements the Transport interface for testing.
type MockTransport struct {
	mu     sync.Mutex
	Sent   []any
	Closed bool
}

// Send records the data for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, data)
	return nil
}

// Close marks the transport closed.
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}

// Messages returns a copy of everything sent so far.
func (m *MockTransport) Messages() []any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]any, len(m.Sent))
	copy(out, m.Sent)
	return out
}

// EncodeIQ quantises complex samples into biased unsigned bytes (I, Q, ...),
// the rtl-sdr wire layout. Components are clamped to the byte range.
func EncodeIQ(samples []complex128) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		out[2*i] = quantise(real(s))
		out[2*i+1] = quantise(imag(s))
	}
	return out
}

func quantise(v float64) byte {
	v = math.Round(v + 127)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

// GenerateIQTone returns n biased I/Q byte pairs of a complex tone at
// frequency (Hz) for the given sample rate, with the given peak amplitude in
// byte units.
func GenerateIQTone(n int, sampleRate, frequency, amplitude float64) []byte {
	samples := make([]complex128, n)
	for i := range samples {
		phase := 2 * math.Pi * frequency * float64(i) / sampleRate
		samples[i] = complex(amplitude*math.Cos(phase), amplitude*math.Sin(phase))
	}
	return EncodeIQ(samples)
}

// ConstantIQ returns n pairs of the same raw I and Q byte.
func ConstantIQ(n int, i, q byte) []byte {
	out := make([]byte, 2*n)
	for k := 0; k < n; k++ {
		out[2*k] = i
		out[2*k+1] = q
	}
	return out
}

// FindPeakBin returns the index of the largest value in [startBin, endBin].
func FindPeakBin(values []float64, startBin, endBin int) int {
	if len(values) == 0 {
		return 0
	}

	if startBin < 0 {
		startBin = 0
	}

	if endBin >= len(values) {
		endBin = len(values) - 1
	}

	peakBin := startBin
	peakValue := values[startBin]

	for bin := startBin + 1; bin <= endBin; bin++ {
		if values[bin] > peakValue {
			peakValue = values[bin]
			peakBin = bin
		}
	}

	return peakBin
}
