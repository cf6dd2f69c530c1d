package ble

import (
	"context"
)

// LineSource supplies the raw text lines of a capture stream, one per call.
// Any error, io.EOF included, ends the stream.
type LineSource interface {
	ReadLine() (string, error)
}

// CaptureSession owns the processes producing a capture stream.
type CaptureSession interface {
	// Start begins capturing and returns the stream of raw lines.
	Start(ctx context.Context) (LineSource, error)

	// Stop signals the capture to end. Pending reads on the line source
	// return once the producer exits. Stop is safe to call more than once.
	Stop() error
}

// Device is a nearby device reported by discovery.
type Device struct {
	Addr Addr
	Name string
}

// Discoverer lists nearby devices.
type Discoverer interface {
	FindDevices(ctx context.Context) ([]Device, error)
}
