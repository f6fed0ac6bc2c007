// SPDX-License-Identifier: MIT
package report

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"
)

// WriteText writes s as whitespace separated "frequency power_dB" rows, one
// per bin, preceded by '#' comment lines describing the session. A blank line
// follows the rows so consecutive sessions plot as separate blocks.
func WriteText(w io.Writer, s *Spectrum) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# rtlpower session %s\n", s.Session)
	fmt.Fprintf(bw, "# Acquisition finished: %s\n", s.Timestamp.UTC().Format(time.RFC3339Nano))
	fmt.Fprintf(bw, "# Center frequency: %.0f Hz, sample rate: %.0f Hz\n", s.CenterHz, s.SampleRate)
	fmt.Fprintf(bw, "# Bins: %d, repeats: %d of %d\n", s.Bins, s.RepeatsDone, s.Repeats)

	row := make([]byte, 0, 64)
	for i := range s.Frequencies {
		row = strconv.AppendFloat(row[:0], s.Frequencies[i], 'f', 0, 64)
		row = append(row, ' ')
		row = strconv.AppendFloat(row, s.PowerDB[i], 'f', 4, 64)
		row = append(row, '\n')
		if _, err := bw.Write(row); err != nil {
			return err
		}
	}
	bw.WriteByte('\n')

	return bw.Flush()
}

// WriteHistogram writes the queue depth histogram: for each depth, how many
// times the worker woke to find that many buffers waiting. Depth 0 counts
// the wake that observed the end of acquisition.
func WriteHistogram(w io.Writer, hist []uint64) error {
	var total uint64
	for _, c := range hist {
		total += c
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# Queue depth histogram (%d wakes)\n", total)
	for depth, c := range hist {
		if c == 0 {
			continue
		}
		pct := 0.0
		if total > 0 {
			pct = 100 * float64(c) / float64(total)
		}
		fmt.Fprintf(bw, "# %4d: %10d (%5.1f%%)\n", depth, c, pct)
	}
	return bw.Flush()
}
