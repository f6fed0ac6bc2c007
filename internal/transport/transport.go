// Package transport publishes finished spectra to whoever is listening.
package transport

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by a transport handed a value it cannot encode.
var ErrUnsupported = errors.New("transport: unsupported payload")

// Transport defines a generic interface for sending processed data or events.
// Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// Multi fans one payload out to several transports.
type Multi []Transport

// Send delivers data to every transport, continuing past failures.
func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", t, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every transport.
func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
