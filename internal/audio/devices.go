package audio

import (
	"fmt"
	"io"

	"github.com/gordonklaus/portaudio"
)

// DefaultDevice selects the system default input device.
const DefaultDevice = -1

// PortAudio entry points, swapped out in tests.
var (
	paLibInitialize          = portaudio.Initialize
	paLibTerminate           = portaudio.Terminate
	paDefaultInputDeviceFunc = portaudio.DefaultInputDevice
	paDevicesFunc            = portaudio.Devices
)

// Initialize sets up the PortAudio subsystem.
// This must be called before any audio operations and paired with a Terminate() call.
func Initialize() error {
	if err := paLibInitialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	return nil
}

// Terminate cleanly shuts down the PortAudio subsystem.
func Terminate() error {
	if err := paLibTerminate(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// InputDevice retrieves the audio input device for the given device ID.
// DefaultDevice (-1) returns the system default input device.
func InputDevice(deviceID int) (*portaudio.DeviceInfo, error) {
	if deviceID == DefaultDevice {
		return paDefaultInputDeviceFunc()
	}

	devices, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}
	if deviceID < 0 || deviceID >= len(devices) {
		return nil, fmt.Errorf("invalid device ID: %d", deviceID)
	}
	return devices[deviceID], nil
}

// ListDevices writes a summary of every audio device to w, marking the ones
// with enough input channels for I/Q capture.
func ListDevices(w io.Writer) error {
	devices, err := paDevicesFunc()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "\nAvailable Audio Devices\n\n")

	for i, device := range devices {
		inputChannels := device.MaxInputChannels
		outputChannels := device.MaxOutputChannels

		deviceType := ""
		switch {
		case inputChannels > 0 && outputChannels > 0:
			deviceType = "Input/Output"
		case inputChannels > 0:
			deviceType = "Input"
		case outputChannels > 0:
			deviceType = "Output"
		}

		iq := ""
		if inputChannels >= 2 {
			iq = " [I/Q capable]"
		}

		fmt.Fprintf(w, "[%d] %s (%s)%s\n", i, device.Name, deviceType, iq)
		fmt.Fprintf(w, "    Input channels: %d, Output channels: %d\n", inputChannels, outputChannels)
		fmt.Fprintf(w, "    Default sample rate: %.0f Hz\n", device.DefaultSampleRate)
		fmt.Fprintf(w, "    Latency: Low=%.2fms, High=%.2fms\n\n",
			device.DefaultLowInputLatency.Seconds()*1000,
			device.DefaultHighInputLatency.Seconds()*1000)
	}

	return nil
}
