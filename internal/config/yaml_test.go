// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
	if cfg == nil {
		t.Fatal("expected default config, got nil")
	}
	if cfg.Spectrum.Bins != DefaultBins {
		t.Errorf("Bins = %d, want %d", cfg.Spectrum.Bins, DefaultBins)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	if err == nil {
		t.Errorf("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Error("expected unmarshal error, got nil or wrong error")
	}
}

func TestLoadConfig_Sections(t *testing.T) {
	path := writeTempConfig(t, `
log_level: warn
sessions: 3
spectrum:
  bins: 1024
  repeats: 50
  buffers: 8
  buffer_length: 4096
  backend: gonum
  window: hann
tuner:
  center_frequency: 433.92e6
  sample_rate: 1.024e6
input:
  source: tone
  tone_offset: 25000
output:
  path: out.txt
  histogram: true
  bands:
    - name: ism
      low_hz: 433.05e6
      high_hz: 434.79e6
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Sessions != 3 {
		t.Errorf("Sessions = %d, want 3", cfg.Sessions)
	}
	if cfg.Spectrum.Bins != 1024 || cfg.Spectrum.Buffers != 8 || cfg.Spectrum.BufferLength != 4096 {
		t.Errorf("Spectrum = %+v", cfg.Spectrum)
	}
	if cfg.Spectrum.Backend != "gonum" || cfg.Spectrum.Window != "hann" {
		t.Errorf("Backend/Window = %s/%s", cfg.Spectrum.Backend, cfg.Spectrum.Window)
	}
	if cfg.Tuner.CenterFrequency != 433.92e6 || cfg.Tuner.SampleRate != 1.024e6 {
		t.Errorf("Tuner = %+v", cfg.Tuner)
	}
	if cfg.Input.Source != SourceTone || cfg.Input.ToneOffset != 25000 {
		t.Errorf("Input = %+v", cfg.Input)
	}
	// Unset fields inside a present section keep their defaults.
	if cfg.Input.ToneAmplitude != DefaultToneAmplitude {
		t.Errorf("ToneAmplitude = %g, want default %g", cfg.Input.ToneAmplitude, DefaultToneAmplitude)
	}
	if !cfg.Output.Histogram || cfg.Output.Path != "out.txt" {
		t.Errorf("Output = %+v", cfg.Output)
	}
	if len(cfg.Output.Bands) != 1 || cfg.Output.Bands[0].Name != "ism" || cfg.Output.Bands[0].HighHz != 434.79e6 {
		t.Errorf("Bands = %+v", cfg.Output.Bands)
	}
	if got := cfg.Repeats(); got != 50 {
		t.Errorf("Repeats() = %d, want 50", got)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeTempConfig(t, "transport:\n  udp_enabled: false\n")
	t.Setenv("ENV_UDP_ENABLED", "true")
	t.Setenv("ENV_UDP_TARGET_ADDRESS", "10.0.0.2:7000")
	t.Setenv("ENV_INPUT", "capture.bin")
	t.Setenv("ENV_LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.Transport.UDPEnabled || cfg.Transport.UDPTargetAddress != "10.0.0.2:7000" {
		t.Errorf("Transport = %+v", cfg.Transport)
	}
	if cfg.Input.Source != "capture.bin" {
		t.Errorf("Input.Source = %q, want capture.bin", cfg.Input.Source)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Defaults", func(*Config) {}, ""},
		{"Zero bins", func(c *Config) { c.Spectrum.Bins = 0 }, "spectrum.bins"},
		{"Too many bins", func(c *Config) { c.Spectrum.Bins = MaxBins + 1 }, "spectrum.bins"},
		{"Odd buffer length", func(c *Config) { c.Spectrum.BufferLength = 4095 }, "spectrum.buffer_length"},
		{"No buffers", func(c *Config) { c.Spectrum.Buffers = 0 }, "spectrum.buffers"},
		{"Negative repeats", func(c *Config) { c.Spectrum.Repeats = -1 }, "spectrum.repeats"},
		{"Unknown backend", func(c *Config) { c.Spectrum.Backend = "fftw" }, "spectrum.backend"},
		{"Unknown window", func(c *Config) { c.Spectrum.Window = "kaiser" }, "spectrum.window"},
		{"Zero sample rate", func(c *Config) { c.Tuner.SampleRate = 0 }, "tuner.sample_rate"},
		{"Empty source", func(c *Config) { c.Input.Source = "" }, "input.source"},
		{"Bad device", func(c *Config) { c.Input.Device = -2 }, "input.device"},
		{"Recording without path", func(c *Config) { c.Recording.Enabled = true }, "recording.path"},
		{"UDP without port", func(c *Config) {
			c.Transport.UDPEnabled = true
			c.Transport.UDPTargetAddress = "localhost"
		}, "udp_target_address"},
		{"Unnamed band", func(c *Config) {
			c.Output.Bands = []BandConfig{{LowHz: 1, HighHz: 2}}
		}, "needs a name"},
		{"Empty band", func(c *Config) {
			c.Output.Bands = []BandConfig{{Name: "x", LowHz: 2, HighHz: 2}}
		}, "high_hz must exceed low_hz"},
		{"Unknown log level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"Negative sessions", func(c *Config) { c.Sessions = -1 }, "sessions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestRepeats(t *testing.T) {
	tests := []struct {
		name     string
		bins     int
		repeats  int64
		duration time.Duration
		rate     float64
		want     int64
	}{
		{"Explicit count", 512, 100, 0, 2.4e6, 100},
		{"One second default", 512, 0, 0, 2.4e6, 4688},
		{"Integration time wins", 1000, 7, 2 * time.Second, 1e6, 2000},
		{"Rounds up", 1000, 0, time.Millisecond, 1.5e6, 2},
		{"At least one", 1 << 20, 0, time.Microsecond, 1e3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfg.Spectrum.Bins = tt.bins
			cfg.Spectrum.Repeats = tt.repeats
			cfg.Spectrum.IntegrationTime = tt.duration
			cfg.Tuner.SampleRate = tt.rate
			if got := cfg.Repeats(); got != tt.want {
				t.Errorf("Repeats() = %d, want %d", got, tt.want)
			}
		})
	}
}
