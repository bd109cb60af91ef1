// Package sensor provides temperature sources for the sampling engine:
// host thermal sensors (hwmon via gopsutil) and a simulated probe for
// demos and tests.
package sensor

import (
	"context"
	"errors"
)

// Driver is the contract the engine samples against. Read may block on
// hardware I/O; the engine runs it off the loop's scheduling path so
// cancellation stays responsive.
type Driver interface {
	// Read returns the current temperature in Celsius. A failed read is a
	// transient fault to the engine; the driver itself decides what
	// constitutes failure.
	Read(ctx context.Context) (float64, error)
	// Connected reports whether the source is usable.
	Connected() bool
	// Disconnect releases the source. Safe to call more than once.
	Disconnect() error
}

// ErrNotConnected is returned by Read after Disconnect.
var ErrNotConnected = errors.New("sensor not connected")

// ErrNoSensors means no usable temperature sensor was found on the host.
var ErrNoSensors = errors.New("no temperature sensors found")
