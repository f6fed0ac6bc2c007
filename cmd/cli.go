package cmd

import (
	"time"

	"rtlpower/internal/config"
	"rtlpower/pkg/build"

	"github.com/spf13/cobra"
)

// cliFlags mirrors the configuration. A flag only overrides the loaded
// configuration when it was given on the command line.
type cliFlags struct {
	configPath string

	bins            int
	repeats         int64
	integrationTime time.Duration
	buffers         int
	bufferLength    int
	backend         string
	window          string

	centerFrequency float64
	sampleRate      float64

	input      string
	deviceID   int
	lowLatency bool
	toneOffset float64
	toneNoise  float64

	output    string
	histogram bool
	sessions  int
	record    string

	udpTarget string
	wsAddress string
	wsLinger  time.Duration

	verbose bool
}

// ParseArgs parses args (without the program name) into a configuration. It
// returns nil and no error when nothing should run, as after --help or
// --version.
func ParseArgs(args []string) (*config.Config, error) {
	info := build.GetBuildInfo()
	var (
		flags  cliFlags
		result *config.Config
	)

	rootCmd := &cobra.Command{
		Use:   info.Name + " [flags]",
		Short: info.Description,
		Long: info.Description + `.

Reads unsigned 8-bit interleaved I/Q samples (the rtl_sdr format) from stdin,
a file, a soundcard or a synthetic tone, and prints "frequency power_dB" rows
for each integration session.`,
		Version:       info.String(),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(flags.configPath)
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			result = cfg
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	// List command
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result = config.NewConfig()
			result.Command = "list"
		},
	}
	rootCmd.AddCommand(listCmd)

	// Select command
	selectCmd := &cobra.Command{
		Use:   "select",
		Short: "Interactively choose an I/Q soundcard and sample rate",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			result = config.NewConfig()
			result.Command = "select"
		},
	}
	rootCmd.AddCommand(selectCmd)

	f := rootCmd.Flags()
	f.StringVar(&flags.configPath, "config", "",
		"YAML configuration file (default: ./rtlpower.yaml or ./config.yaml if present)")

	// Spectrum
	f.IntVarP(&flags.bins, "bins", "b", config.DefaultBins,
		"Number of frequency bins (transform size)")
	f.Int64VarP(&flags.repeats, "repeats", "n", config.DefaultRepeats,
		"Transforms to integrate per session (0 = one second of samples)")
	f.DurationVarP(&flags.integrationTime, "integration-time", "t", 0,
		"Integration time per session, overrides --repeats (e.g. 10s)")
	f.IntVar(&flags.buffers, "buffers", config.DefaultBuffers,
		"Number of acquisition buffers")
	f.IntVar(&flags.bufferLength, "buffer-length", config.DefaultBufferLength,
		"Bytes per acquisition buffer (even)")
	f.StringVar(&flags.backend, "backend", config.DefaultBackend,
		"Transform library: auto, gonum or algofft")
	f.StringVarP(&flags.window, "window", "w", config.DefaultWindow,
		"Window function: rectangular, hann, hamming, blackman, blackmannuttall, bartletthann, lanczos, nuttall")

	// Tuner
	f.Float64VarP(&flags.centerFrequency, "frequency", "f", config.DefaultCenterFrequency,
		"Center frequency of the input, in Hertz (Hz)")
	f.Float64VarP(&flags.sampleRate, "rate", "r", config.DefaultSampleRate,
		"Sample rate of the input, in complex samples per second")

	// Input
	f.StringVarP(&flags.input, "input", "i", config.DefaultSource,
		"Input: '-' for stdin, 'tone', 'soundcard' or a file path")
	f.IntVarP(&flags.deviceID, "device", "d", config.DefaultDeviceID,
		"Soundcard input device ID. Use 'list' command to see available devices.")
	f.BoolVarP(&flags.lowLatency, "low-latency", "l", false,
		"Use low latency mode for soundcard capture")
	f.Float64Var(&flags.toneOffset, "tone-offset", config.DefaultToneOffset,
		"Offset of the synthetic tone from the center frequency, in Hertz (Hz)")
	f.Float64Var(&flags.toneNoise, "tone-noise", config.DefaultToneNoise,
		"Standard deviation of the synthetic tone's noise, in sample units")

	// Output
	f.StringVarP(&flags.output, "output", "o", config.DefaultOutputPath,
		"Spectrum output file, '-' for stdout")
	f.BoolVar(&flags.histogram, "histogram", false,
		"Append the buffer queue depth histogram to each session")
	f.IntVarP(&flags.sessions, "sessions", "s", config.DefaultSessions,
		"Consecutive sessions to run (0 = until the input ends)")
	f.StringVar(&flags.record, "record", "",
		"Record the raw I/Q stream to this WAV file")

	// Transport
	f.StringVar(&flags.udpTarget, "udp", "",
		"Send each spectrum as UDP packets to host:port")
	f.StringVar(&flags.wsAddress, "ws", "",
		"Serve spectra over WebSocket on this address (e.g. :8080)")
	f.DurationVar(&flags.wsLinger, "ws-linger", 0,
		"Keep the WebSocket server up this long after the last session")

	// Debug Configuration
	f.BoolVarP(&flags.verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}

	return result, nil
}

// apply copies every flag given on the command line into cfg.
func (f *cliFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("bins") {
		cfg.Spectrum.Bins = f.bins
	}
	if changed("repeats") {
		cfg.Spectrum.Repeats = f.repeats
	}
	if changed("integration-time") {
		cfg.Spectrum.IntegrationTime = f.integrationTime
	}
	if changed("buffers") {
		cfg.Spectrum.Buffers = f.buffers
	}
	if changed("buffer-length") {
		cfg.Spectrum.BufferLength = f.bufferLength
	}
	if changed("backend") {
		cfg.Spectrum.Backend = f.backend
	}
	if changed("window") {
		cfg.Spectrum.Window = f.window
	}

	if changed("frequency") {
		cfg.Tuner.CenterFrequency = f.centerFrequency
	}
	if changed("rate") {
		cfg.Tuner.SampleRate = f.sampleRate
	}

	if changed("input") {
		cfg.Input.Source = f.input
	}
	if changed("device") {
		cfg.Input.Device = f.deviceID
	}
	if changed("low-latency") {
		cfg.Input.LowLatency = f.lowLatency
	}
	if changed("tone-offset") {
		cfg.Input.ToneOffset = f.toneOffset
	}
	if changed("tone-noise") {
		cfg.Input.ToneNoise = f.toneNoise
	}

	if changed("output") {
		cfg.Output.Path = f.output
	}
	if changed("histogram") {
		cfg.Output.Histogram = f.histogram
	}
	if changed("sessions") {
		cfg.Sessions = f.sessions
	}
	if changed("record") {
		cfg.Recording.Enabled = f.record != ""
		cfg.Recording.Path = f.record
	}

	if changed("udp") {
		cfg.Transport.UDPEnabled = f.udpTarget != ""
		cfg.Transport.UDPTargetAddress = f.udpTarget
	}
	if changed("ws") {
		cfg.Transport.WebSocketEnabled = f.wsAddress != ""
		cfg.Transport.WebSocketAddress = f.wsAddress
	}
	if changed("ws-linger") {
		cfg.Transport.WebSocketLinger = f.wsLinger
	}

	if changed("verbose") && f.verbose {
		cfg.Debug = true
	}
}
