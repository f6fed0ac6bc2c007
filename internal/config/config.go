package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the spectrum integrator.
const (
	// Spectrum defaults, matching the usual rtl_power_fftw invocation.
	DefaultBins         = 512        // Transform size
	DefaultRepeats      = 0          // 0 derives one second of samples
	DefaultBuffers      = 32         // Buffers in the acquisition pool
	DefaultBufferLength = 16 * 16384 // Bytes per buffer (rtl-sdr default)
	DefaultBackend      = "auto"     // algofft for powers of two, else gonum
	DefaultWindow       = "rectangular"

	// Tuner defaults.
	DefaultCenterFrequency = 100e6 // Hz
	DefaultSampleRate      = 2.4e6 // Hz

	// Input defaults.
	DefaultSource        = "-"  // stdin
	DefaultDeviceID      = -1   // system default soundcard
	DefaultToneOffset    = 0.0  // Hz from centre
	DefaultToneAmplitude = 64.0 // byte units
	DefaultToneNoise     = 1.0  // byte units (standard deviation)

	// Output defaults.
	DefaultOutputPath = "-" // stdout
	DefaultSessions   = 1

	// Transport defaults.
	DefaultUDPTargetAddress = "127.0.0.1:9090"
	DefaultWebSocketAddress = ":8080"

	// Limits.
	MinDeviceID = -1      // -1 represents system default device
	MaxBins     = 1 << 24 // Largest transform accepted
	MaxBuffers  = 4096
)

// Known input sources besides file paths.
const (
	SourceStdin     = "-"
	SourceTone      = "tone"
	SourceSoundcard = "soundcard"
)

// defaultConfig returns the built-in configuration.
func defaultConfig() Config {
	return Config{
		Debug:    false,
		LogLevel: "info",
		Sessions: DefaultSessions,
		Spectrum: SpectrumConfig{
			Bins:         DefaultBins,
			Repeats:      DefaultRepeats,
			Buffers:      DefaultBuffers,
			BufferLength: DefaultBufferLength,
			Backend:      DefaultBackend,
			Window:       DefaultWindow,
		},
		Tuner: TunerConfig{
			CenterFrequency: DefaultCenterFrequency,
			SampleRate:      DefaultSampleRate,
		},
		Input: InputConfig{
			Source:        DefaultSource,
			Device:        DefaultDeviceID,
			ToneOffset:    DefaultToneOffset,
			ToneAmplitude: DefaultToneAmplitude,
			ToneNoise:     DefaultToneNoise,
		},
		Output: OutputConfig{
			Path: DefaultOutputPath,
		},
		Recording: RecordingConfig{
			Enabled: false,
			Path:    "",
		},
		Transport: TransportConfig{
			UDPEnabled:       false,
			UDPTargetAddress: DefaultUDPTargetAddress,
			WebSocketEnabled: false,
			WebSocketAddress: DefaultWebSocketAddress,
			WebSocketLinger:  0 * time.Second,
		},
	}
}

// NewConfig creates a new Config instance with default values.
func NewConfig() *Config {
	cfg := defaultConfig()
	return &cfg
}
