// Package audio wraps PortAudio for soundcard I/Q receivers and records raw
// I/Q streams as WAV files.
package audio

// Device represents an audio device
type Device struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
}

// CanCaptureIQ reports whether the device has the two input channels an
// I/Q receiver needs.
func (d Device) CanCaptureIQ() bool { return d.MaxInputChannels >= 2 }

// HostDevices returns every PortAudio device. PortAudio must be initialised.
func HostDevices() ([]Device, error) {
	infos, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}

	devices := make([]Device, len(infos))
	for i, info := range infos {
		devices[i] = Device{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		}
	}
	return devices, nil
}

// GetDevices returns all available audio devices, initialising PortAudio
// for the duration of the call.
func GetDevices() ([]Device, error) {
	if err := Initialize(); err != nil {
		return nil, err
	}
	defer Terminate()

	return HostDevices()
}
