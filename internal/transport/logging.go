package transport

import (
	applog "rtlpower/internal/log"
	"rtlpower/internal/report"
)

// LoggingTransport implements the Transport interface by logging a one-line
// summary of each spectrum.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	applog.Debugf("Transport: Using LoggingTransport")
	return &LoggingTransport{}
}

// Send logs the received data.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case *report.Spectrum:
		hz, db := v.Peak()
		applog.Infof("Session %s: %d/%d transforms, peak %.0f Hz at %.2f dB",
			v.Session, v.RepeatsDone, v.Repeats, hz, db)
	default:
		applog.Infof("Transport: received %T", data)
	}
	return nil // Logging transport never fails to "send"
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
