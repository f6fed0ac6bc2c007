// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"rtlpower/internal/fft"
	applog "rtlpower/internal/log"

	"gopkg.in/yaml.v3"
)

// Config represents the main application configuration structure, loaded from YAML.
type Config struct {
	Debug     bool            `yaml:"debug"`             // Enable debug logging.
	LogLevel  string          `yaml:"log_level"`         // Logging level (e.g., "debug", "info", "warn", "error").
	Command   string          `yaml:"command,omitempty"` // A one-off command to execute instead of integrating (e.g., "list").
	Sessions  int             `yaml:"sessions"`          // Consecutive integrations to run, 0 until input ends.
	Spectrum  SpectrumConfig  `yaml:"spectrum"`          // Transform and integration settings.
	Tuner     TunerConfig     `yaml:"tuner"`             // Frequency axis of the input stream.
	Input     InputConfig     `yaml:"input"`             // Where raw I/Q bytes come from.
	Output    OutputConfig    `yaml:"output"`            // Where spectra are written.
	Recording RecordingConfig `yaml:"recording"`         // Raw I/Q recording.
	Transport TransportConfig `yaml:"transport"`         // Network publishing of finished spectra.
}

// SpectrumConfig holds the integration parameters.
type SpectrumConfig struct {
	Bins            int           `yaml:"bins"`             // Transform size N.
	Repeats         int64         `yaml:"repeats"`          // Transforms per session (0 derives one second).
	IntegrationTime time.Duration `yaml:"integration_time"` // Overrides repeats when set.
	Buffers         int           `yaml:"buffers"`          // Buffers in the acquisition pool.
	BufferLength    int           `yaml:"buffer_length"`    // Bytes per buffer, must be even.
	Backend         string        `yaml:"backend"`          // "auto", "gonum" or "algofft".
	Window          string        `yaml:"window"`           // Window function name.
}

// TunerConfig describes the frequency axis of the incoming samples.
type TunerConfig struct {
	CenterFrequency float64 `yaml:"center_frequency"` // Hz at the centre bin.
	SampleRate      float64 `yaml:"sample_rate"`      // Complex samples per second.
}

// InputConfig selects the producer.
type InputConfig struct {
	Source        string  `yaml:"source"`         // "-" (stdin), "tone", "soundcard" or a file path.
	Device        int     `yaml:"device"`         // PortAudio device for "soundcard" (-1 for default).
	LowLatency    bool    `yaml:"low_latency"`    // Request low latency from the soundcard.
	ToneOffset    float64 `yaml:"tone_offset"`    // Hz from centre for "tone".
	ToneAmplitude float64 `yaml:"tone_amplitude"` // Peak amplitude in byte units for "tone".
	ToneNoise     float64 `yaml:"tone_noise"`     // Gaussian noise deviation in byte units for "tone".
}

// OutputConfig controls spectrum output.
type OutputConfig struct {
	Path      string       `yaml:"path"`      // "-" for stdout or a file path.
	Histogram bool         `yaml:"histogram"` // Append the queue depth histogram to each session.
	Bands     []BandConfig `yaml:"bands"`     // Channels whose integrated power is reported.
}

// BandConfig names a frequency range, [low_hz, high_hz).
type BandConfig struct {
	Name   string  `yaml:"name"`
	LowHz  float64 `yaml:"low_hz"`
	HighHz float64 `yaml:"high_hz"`
}

// RecordingConfig holds settings for recording the raw I/Q stream.
type RecordingConfig struct {
	Enabled bool   `yaml:"enabled"` // Record every produced buffer.
	Path    string `yaml:"path"`    // WAV file path (8-bit stereo, I left, Q right).
}

// TransportConfig holds settings related to sending finished spectra over the network.
type TransportConfig struct {
	UDPEnabled       bool          `yaml:"udp_enabled"`        // Send each spectrum as a UDP packet.
	UDPTargetAddress string        `yaml:"udp_target_address"` // Target "host:port".
	WebSocketEnabled bool          `yaml:"websocket_enabled"`  // Broadcast each spectrum as JSON.
	WebSocketAddress string        `yaml:"websocket_address"`  // Listen address for the WebSocket server.
	WebSocketLinger  time.Duration `yaml:"websocket_linger"`   // Keep serving after the last session.
}

// LoadConfig loads configuration from a YAML file specified by path. If path is empty,
// it searches default locations ("rtlpower.yaml"). If no file is found, it uses built-in
// defaults. After loading defaults or from file, it applies environment variable
// overrides and validates the final configuration.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		candidates := []string{
			"rtlpower.yaml",
			"config.yaml",
		}
		for _, candidate := range candidates {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
		applog.Debugf("Config: loaded %s", path)
	}

	// Apply environment variable overrides AFTER loading from file.
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks the configuration for values the integrator cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if _, ok := applog.ParseLevel(c.LogLevel); !ok {
		errs = append(errs, fmt.Errorf("log_level '%s' is not a known level", c.LogLevel))
	}
	if c.Sessions < 0 {
		errs = append(errs, fmt.Errorf("sessions must not be negative, got %d", c.Sessions))
	}

	// Spectrum
	s := c.Spectrum
	if s.Bins <= 0 || s.Bins > MaxBins {
		errs = append(errs, fmt.Errorf("spectrum.bins must be in 1..%d, got %d", MaxBins, s.Bins))
	}
	if s.Repeats < 0 {
		errs = append(errs, fmt.Errorf("spectrum.repeats must not be negative, got %d", s.Repeats))
	}
	if s.IntegrationTime < 0 {
		errs = append(errs, fmt.Errorf("spectrum.integration_time must not be negative, got %s", s.IntegrationTime))
	}
	if s.Buffers <= 0 || s.Buffers > MaxBuffers {
		errs = append(errs, fmt.Errorf("spectrum.buffers must be in 1..%d, got %d", MaxBuffers, s.Buffers))
	}
	if s.BufferLength <= 0 || s.BufferLength%2 != 0 {
		errs = append(errs, fmt.Errorf("spectrum.buffer_length must be a positive even number, got %d", s.BufferLength))
	}
	if _, err := fft.ParseBackend(s.Backend); err != nil {
		errs = append(errs, fmt.Errorf("spectrum.backend: %w", err))
	}
	if _, err := fft.ParseWindowFunc(s.Window); err != nil {
		errs = append(errs, fmt.Errorf("spectrum.window: %w", err))
	}

	// Tuner
	if c.Tuner.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("tuner.sample_rate must be positive, got %g", c.Tuner.SampleRate))
	}

	// Input
	if c.Input.Source == "" {
		errs = append(errs, errors.New("input.source must be set"))
	}
	if c.Input.Device < MinDeviceID {
		errs = append(errs, fmt.Errorf("input.device must be >= %d, got %d", MinDeviceID, c.Input.Device))
	}

	// Output
	for i, b := range c.Output.Bands {
		if b.Name == "" {
			errs = append(errs, fmt.Errorf("output.bands[%d] needs a name", i))
		}
		if b.HighHz <= b.LowHz {
			errs = append(errs, fmt.Errorf("output.bands[%d] '%s': high_hz must exceed low_hz", i, b.Name))
		}
	}

	// Recording
	if c.Recording.Enabled && c.Recording.Path == "" {
		errs = append(errs, errors.New("recording.path must be set when recording is enabled"))
	}

	// Transport
	if c.Transport.UDPEnabled && !strings.Contains(c.Transport.UDPTargetAddress, ":") {
		errs = append(errs, fmt.Errorf("transport.udp_target_address '%s' appears invalid (missing port?)", c.Transport.UDPTargetAddress))
	}
	if c.Transport.WebSocketEnabled && !strings.Contains(c.Transport.WebSocketAddress, ":") {
		errs = append(errs, fmt.Errorf("transport.websocket_address '%s' appears invalid (missing port?)", c.Transport.WebSocketAddress))
	}

	return errors.Join(errs...)
}

// Repeats returns the number of transforms per session. An integration time
// takes precedence over an explicit count; with neither set, one second of
// samples is integrated.
func (c *Config) Repeats() int64 {
	bins := float64(c.Spectrum.Bins)
	switch {
	case c.Spectrum.IntegrationTime > 0:
		return max(1, int64(math.Ceil(c.Spectrum.IntegrationTime.Seconds()*c.Tuner.SampleRate/bins)))
	case c.Spectrum.Repeats > 0:
		return c.Spectrum.Repeats
	default:
		return max(1, int64(math.Ceil(c.Tuner.SampleRate/bins)))
	}
}

// Level returns the effective log level.
func (c *Config) Level() applog.LogLevel {
	if c.Debug {
		return applog.LevelDebug
	}
	level, _ := applog.ParseLevel(c.LogLevel)
	return level
}

// applyEnvOverrides lets ENV_* variables override file values, so a
// deployment can adjust a shared config without editing it.
func (cfg *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Debug = bVal
			applog.Infof("Config: overriding debug from env: %v", bVal)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		cfg.LogLevel = val
		applog.Infof("Config: overriding log_level from env: %s", val)
	}
	// ENV_INPUT
	if val, ok := os.LookupEnv("ENV_INPUT"); ok {
		cfg.Input.Source = val
		applog.Infof("Config: overriding input.source from env: %s", val)
	}

	// ENV_UDP_{...}
	// These are specific to the transport layer.

	// ENV_UDP_ENABLED
	if val, ok := os.LookupEnv("ENV_UDP_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.UDPEnabled = bVal
			applog.Infof("Config: overriding transport.udp_enabled from env: %v", bVal)
		}
	}
	// ENV_UDP_TARGET_ADDRESS
	if val, ok := os.LookupEnv("ENV_UDP_TARGET_ADDRESS"); ok {
		cfg.Transport.UDPTargetAddress = val
		applog.Infof("Config: overriding transport.udp_target_address from env: %s", val)
	}
	// ENV_WS_ENABLED
	if val, ok := os.LookupEnv("ENV_WS_ENABLED"); ok {
		if bVal, err := strconv.ParseBool(val); err == nil {
			cfg.Transport.WebSocketEnabled = bVal
			applog.Infof("Config: overriding transport.websocket_enabled from env: %v", bVal)
		}
	}
	// ENV_WS_ADDRESS
	if val, ok := os.LookupEnv("ENV_WS_ADDRESS"); ok {
		cfg.Transport.WebSocketAddress = val
		applog.Infof("Config: overriding transport.websocket_address from env: %s", val)
	}
}
