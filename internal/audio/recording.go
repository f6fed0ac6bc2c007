package audio

import (
	"errors"
	"fmt"
	"os"
	"sync"

	applog "rtlpower/internal/log"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	recordingBitDepth = 8
	recordingChannels = 2 // I left, Q right.
	wavFormatPCM      = 1
)

// ErrNotRecording is returned by Write after Close.
var ErrNotRecording = errors.New("audio: recorder closed")

// Recorder writes raw I/Q bytes to an 8-bit stereo WAV file. Unsigned 8-bit
// PCM is exactly the rtl-sdr sample layout, so the recording can be replayed
// as input or opened in any SDR tool that reads WAV.
//
// Recorder is an io.Writer and may be used as a source tap.
type Recorder struct {
	mu      sync.Mutex
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	frames  int64
}

// NewRecorder creates the WAV file at path.
func NewRecorder(path string, sampleRate int) (*Recorder, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid recording sample rate: %d", sampleRate)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	r := &Recorder{
		file:    file,
		encoder: wav.NewEncoder(file, sampleRate, recordingBitDepth, recordingChannels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format: &audio.Format{
				NumChannels: recordingChannels,
				SampleRate:  sampleRate,
			},
			SourceBitDepth: recordingBitDepth,
		},
	}

	applog.Infof("Recording: writing I/Q to %s", path)
	return r, nil
}

// Write appends whole I/Q pairs to the recording. len(p) must be even.
func (r *Recorder) Write(p []byte) (int, error) {
	if len(p)%2 != 0 {
		return 0, fmt.Errorf("recording: odd byte count %d", len(p))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.encoder == nil {
		return 0, ErrNotRecording
	}

	if cap(r.buf.Data) < len(p) {
		r.buf.Data = make([]int, len(p))
	}
	r.buf.Data = r.buf.Data[:len(p)]
	for i, b := range p {
		r.buf.Data[i] = int(b)
	}

	if err := r.encoder.Write(r.buf); err != nil {
		return 0, fmt.Errorf("recording: %w", err)
	}
	r.frames += int64(len(p) / 2)
	return len(p), nil
}

// Frames returns the number of I/Q pairs recorded so far.
func (r *Recorder) Frames() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames
}

// Close finalises the WAV header and closes the file. Closing twice is a no-op.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.encoder == nil {
		return nil
	}

	encErr := r.encoder.Close()
	fileErr := r.file.Close()
	r.encoder, r.file = nil, nil

	if encErr != nil {
		return encErr
	}
	if fileErr == nil {
		applog.Infof("Recording: %d I/Q frames written", r.frames)
	}
	return fileErr
}
