// SPDX-License-Identifier: MIT

// Package report turns an integrated power row into a calibrated spectrum
// and writes it out.
package report

import (
	"math"
	"time"

	applog "rtlpower/internal/log"
	"rtlpower/internal/spectrum"

	"gonum.org/v1/gonum/floats"
)

// FloorDB stands in for the power of an empty bin, which would otherwise be
// -Inf and unencodable as JSON.
const FloorDB = -200.0

// Spectrum is the averaged power of one integration session.
type Spectrum struct {
	Session     string    `json:"session"`
	Timestamp   time.Time `json:"timestamp"`
	CenterHz    float64   `json:"center_hz"`
	SampleRate  float64   `json:"sample_rate"`
	Bins        int       `json:"bins"`
	Repeats     int64     `json:"repeats"`
	RepeatsDone int64     `json:"repeats_done"`
	Frequencies []float64 `json:"frequencies"` // Hz, ascending.
	PowerDB     []float64 `json:"power_db"`    // 10·log10 of the mean |X|².

	power []float64 // Mean |X|², linear.
}

// NewSpectrum averages res.Pwr over the transforms actually performed and
// converts it to decibels. Bin i sits at centerHz + (i - N/2)·sampleRate/N,
// so the centre frequency is bin N/2.
func NewSpectrum(res spectrum.Result, centerHz, sampleRate float64) *Spectrum {
	n := len(res.Pwr)
	s := &Spectrum{
		Session:     res.Session,
		Timestamp:   res.Finished,
		CenterHz:    centerHz,
		SampleRate:  sampleRate,
		Bins:        n,
		Repeats:     res.Repeats,
		RepeatsDone: res.RepeatsDone,
		Frequencies: make([]float64, n),
		PowerDB:     make([]float64, n),
		power:       make([]float64, n),
	}

	step := sampleRate / float64(n)
	for i := range s.Frequencies {
		s.Frequencies[i] = centerHz + float64(i-n/2)*step
	}

	if res.RepeatsDone == 0 {
		applog.Warnf("Report: session %s ended before a single transform", res.Session)
		for i := range s.PowerDB {
			s.PowerDB[i] = FloorDB
		}
		return s
	}

	floats.ScaleTo(s.power, 1/float64(res.RepeatsDone), res.Pwr)
	for i, p := range s.power {
		s.PowerDB[i] = toDB(p)
	}
	return s
}

func toDB(p float64) float64 {
	if p <= 0 {
		return FloorDB
	}
	return max(10*math.Log10(p), FloorDB)
}

// Peak returns the frequency and level of the strongest bin.
func (s *Spectrum) Peak() (hz, db float64) {
	if len(s.PowerDB) == 0 {
		return 0, FloorDB
	}
	i := floats.MaxIdx(s.PowerDB)
	return s.Frequencies[i], s.PowerDB[i]
}
