package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rtlpower/cmd"
	"rtlpower/internal/audio"
	"rtlpower/internal/config"
	"rtlpower/internal/engine"
	applog "rtlpower/internal/log"
	"rtlpower/internal/source"
	"rtlpower/internal/transport"
	"rtlpower/internal/transport/udp"
	"rtlpower/internal/tui"
	"rtlpower/pkg/build"
)

// main is the entry point for the spectrum integrator.
// The program flow is divided into three distinct phases:
//
// 1. Startup Phase:
//   - Initialize build information
//   - Parse command line arguments and configuration
//   - Execute one-off commands if requested
//   - Open the input, recorder, output and transports
//
// 2. Integration Phase:
//   - Run sessions: the caller's goroutine produces, a worker integrates
//   - SIGINT/SIGTERM cancel production; the worker drains and the partial
//     session is still reported
//
// 3. Shutdown Phase:
//   - Optionally keep serving WebSocket clients
//   - Close transports, recorder and input
func main() {
	if err := run(); err != nil {
		applog.Fatalf("%v", err)
	}
}

func run() error {
	// ==================== STARTUP PHASE ====================

	if err := build.Initialize(); err != nil {
		return err
	}

	cfg, err := cmd.ParseArgs(os.Args[1:])
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil // --help or --version
	}
	applog.SetLevel(cfg.Level())

	// One-off commands that don't integrate anything.
	if cfg.Command != "" {
		return executeCommand(cfg.Command)
	}

	if cfg.Input.Source == config.SourceSoundcard {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
	}

	input, err := source.Open(cfg.Input, cfg.Tuner.SampleRate)
	if err != nil {
		return err
	}
	defer input.Close()

	var tap io.Writer
	if cfg.Recording.Enabled {
		rec, err := audio.NewRecorder(cfg.Recording.Path, int(cfg.Tuner.SampleRate))
		if err != nil {
			return fmt.Errorf("start recording: %w", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				applog.Errorf("Error stopping recording: %v", err)
			}
		}()
		tap = rec
	}

	out, closeOut, err := openOutput(cfg.Output.Path)
	if err != nil {
		return err
	}
	defer closeOut()

	transports, err := openTransports(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := transports.Close(); err != nil {
			applog.Errorf("Error closing transports: %v", err)
		}
	}()

	eng, err := engine.NewEngine(cfg, out, transports, tap)
	if err != nil {
		return err
	}

	// ==================== INTEGRATION PHASE ====================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	n, err := eng.Run(ctx, input)
	if err != nil {
		return err
	}
	applog.Infof("Completed %d session(s)", n)

	// ==================== SHUTDOWN PHASE ====================

	if linger := cfg.Transport.WebSocketLinger; cfg.Transport.WebSocketEnabled && linger > 0 && ctx.Err() == nil {
		applog.Infof("Serving WebSocket clients for another %s", linger)
		select {
		case <-time.After(linger):
		case <-ctx.Done():
		}
	}

	return nil
}

// executeCommand handles one-off commands that don't integrate, such as
// listing available audio devices.
func executeCommand(command string) error {
	switch command {
	case "list":
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()
		return audio.ListDevices(os.Stdout)
	case "select":
		sel, ok, err := tui.PickDevice()
		if err != nil || !ok {
			return err
		}
		fmt.Printf("%s %s\n", build.GetBuildInfo().Name, sel.Args())
		return nil
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// openOutput returns the spectrum writer for path ("-" is stdout).
func openOutput(path string) (io.Writer, func(), error) {
	if path == config.DefaultOutputPath {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open output: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			applog.Errorf("Error closing output: %v", err)
		}
	}, nil
}

// openTransports builds every enabled transport. The logging transport is
// always present.
func openTransports(cfg *config.Config) (transport.Multi, error) {
	ts := transport.Multi{transport.NewLoggingTransport()}

	if cfg.Transport.UDPEnabled {
		sender, err := udp.NewSender(cfg.Transport.UDPTargetAddress)
		if err != nil {
			ts.Close()
			return nil, err
		}
		pub, err := udp.NewPublisher(sender)
		if err != nil {
			sender.Close()
			ts.Close()
			return nil, err
		}
		ts = append(ts, pub)
	}

	if cfg.Transport.WebSocketEnabled {
		ts = append(ts, transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress))
	}

	return ts, nil
}
