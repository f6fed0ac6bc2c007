// SPDX-License-Identifier: MIT

// Package udp publishes spectra as binary datagrams.
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	applog "rtlpower/internal/log"
	"rtlpower/internal/report"
	"rtlpower/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Per packet, wraps       |
| Timestamp         | int64          | 8            | Acquisition end, ns     |
| Start Frequency   | float64        | 8            | Hz of the first value   |
| Bin Width         | float64        | 8            | Hz between values       |
| Offset            | uint32         | 4            | Index of the first value|
| Value Count       | uint16         | 2            | Number of floats (N)    |
| Power             | []float32      | N * 4        | dB per bin              |
+-----------------------------------------------------------------------------+

A spectrum wider than MaxValuesPerPacket is split across consecutive
packets sharing a timestamp; Offset places each slice.
*/

const (
	// HeaderSize is the fixed packet prefix in bytes.
	HeaderSize = 4 + 8 + 8 + 8 + 4 + 2

	// MaxValuesPerPacket keeps each datagram under a typical 64 KiB limit.
	MaxValuesPerPacket = 16000
)

// Publisher encodes spectra into packets and sends them with a Sender.
type Publisher struct {
	sender *Sender

	mu          sync.Mutex
	sequenceNum uint32
	f32         []float32     // Reused conversion buffer.
	packet      *bytes.Buffer // Reused packet buffer.
}

// NewPublisher creates a Publisher sending through sender.
func NewPublisher(sender *Sender) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("UDPPublisher: UDP sender cannot be nil")
	}
	return &Publisher{
		sender: sender,
		packet: new(bytes.Buffer),
	}, nil
}

// Send publishes a *report.Spectrum.
func (p *Publisher) Send(data any) error {
	s, ok := data.(*report.Spectrum)
	if !ok {
		return fmt.Errorf("%w: %T", transport.ErrUnsupported, data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.encode(s, func(pkt []byte) error {
		if err := p.sender.Send(pkt); err != nil {
			return err
		}
		applog.Debugf("UDPPublisher: Sent packet %d (%d bytes)", p.sequenceNum, len(pkt))
		return nil
	})
}

// encode splits s into packets and hands each to emit. The slice passed to
// emit is only valid for the duration of the call.
func (p *Publisher) encode(s *report.Spectrum, emit func([]byte) error) error {
	if len(s.PowerDB) == 0 {
		return nil
	}

	if cap(p.f32) < len(s.PowerDB) {
		p.f32 = make([]float32, len(s.PowerDB))
	}
	p.f32 = p.f32[:len(s.PowerDB)]
	for i, v := range s.PowerDB {
		p.f32[i] = float32(v)
	}

	binWidth := 0.0
	if len(s.Frequencies) > 1 {
		binWidth = s.Frequencies[1] - s.Frequencies[0]
	}
	timestamp := s.Timestamp.UnixNano()

	for offset := 0; offset < len(p.f32); offset += MaxValuesPerPacket {
		end := min(offset+MaxValuesPerPacket, len(p.f32))
		values := p.f32[offset:end]

		p.sequenceNum++
		p.packet.Reset()

		var hdr [HeaderSize]byte
		binary.BigEndian.PutUint32(hdr[0:], p.sequenceNum)
		binary.BigEndian.PutUint64(hdr[4:], uint64(timestamp))
		binary.BigEndian.PutUint64(hdr[12:], math.Float64bits(s.Frequencies[offset]))
		binary.BigEndian.PutUint64(hdr[20:], math.Float64bits(binWidth))
		binary.BigEndian.PutUint32(hdr[28:], uint32(offset))
		binary.BigEndian.PutUint16(hdr[32:], uint16(len(values)))
		p.packet.Write(hdr[:])

		if err := binary.Write(p.packet, binary.BigEndian, values); err != nil {
			return fmt.Errorf("UDPPublisher: packing values: %w", err)
		}
		if err := emit(p.packet.Bytes()); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying sender.
func (p *Publisher) Close() error {
	return p.sender.Close()
}

var _ transport.Transport = (*Publisher)(nil)
