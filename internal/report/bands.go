package report

import (
	"bufio"
	"fmt"
	"io"
)

// Band is a named frequency range, [LowHz, HighHz).
type Band struct {
	Name   string  `yaml:"name" json:"name"`
	LowHz  float64 `yaml:"low_hz" json:"low_hz"`
	HighHz float64 `yaml:"high_hz" json:"high_hz"`
}

// BandPower is the channel power integrated over one band.
type BandPower struct {
	Band
	Bins    int     `json:"bins"`     // Bins whose centre falls inside the band.
	PowerDB float64 `json:"power_db"` // 10·log10 of the summed mean power.
}

// BandPowers sums the mean linear power of every bin inside each band. A
// band covering no bin reports FloorDB and zero bins.
func (s *Spectrum) BandPowers(bands []Band) []BandPower {
	out := make([]BandPower, len(bands))
	for b, band := range bands {
		out[b].Band = band

		var sum float64
		for i, hz := range s.Frequencies {
			if hz >= band.LowHz && hz < band.HighHz {
				sum += s.power[i]
				out[b].Bins++
			}
		}
		out[b].PowerDB = toDB(sum)
	}
	return out
}

// WriteBands writes one '#' comment line per band.
func WriteBands(w io.Writer, powers []BandPower) error {
	bw := bufio.NewWriter(w)
	for _, p := range powers {
		fmt.Fprintf(bw, "# Band %s [%.0f, %.0f) Hz: %.4f dB over %d bins\n",
			p.Name, p.LowHz, p.HighHz, p.PowerDB, p.Bins)
	}
	return bw.Flush()
}
