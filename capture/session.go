// Package capture provides the capture sessions feeding the hcidump decoder:
// Native drives the BlueZ command line tools, Dummy replays a canned
// transcript for machines without a radio.
package capture

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/hcidump"
)

// Backend names accepted by New.
const (
	BackendAuto   = "auto"
	BackendNative = "native"
	BackendDummy  = "dummy"
)

// Session is a capture session that can also list devices.
type Session interface {
	ble.CaptureSession
	ble.Discoverer
}

// New returns the session for backend.
func New(backend string, opts ...ble.Option) (Session, error) {
	switch strings.ToLower(backend) {
	case BackendNative:
		return session(NewNative(opts...))
	case BackendDummy:
		return session(NewDummy(opts...))
	case BackendAuto, "":
		return DefaultSession(opts...)
	default:
		return nil, errors.Errorf("unknown capture backend %q", backend)
	}
}

// session keeps a failed constructor from yielding a non-nil Session
// holding a nil pointer.
func session(s Session, err error) (Session, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GetData captures until mac advertises and returns its payload. The
// session is stopped before returning, also when ctx ends the capture early.
func GetData(ctx context.Context, s ble.CaptureSession, mac ble.Addr) (string, error) {
	src, err := s.Start(ctx)
	if err != nil {
		return "", errors.Wrap(err, "can't start capture")
	}
	defer stopOnDone(ctx, s)()

	payload, ok := hcidump.Find(ctx, hcidump.NewDecoder(src), mac)
	if !ok {
		return "", ble.ErrNotFound
	}

	ble.GetLogger().Debugf("data found for %v", mac)
	return payload, nil
}

// Watch captures until ctx is done, handing every advertisement accepted by f
// to h. It returns the number of advertisements handled.
func Watch(ctx context.Context, s ble.CaptureSession, h ble.AdvHandler, f ble.AdvFilter) (int, error) {
	src, err := s.Start(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "can't start capture")
	}
	defer stopOnDone(ctx, s)()

	return hcidump.Scan(ctx, hcidump.NewDecoder(src), h, f), nil
}

// stopOnDone stops s as soon as ctx is done, which unblocks a pending read.
// The returned func stops s unconditionally.
func stopOnDone(ctx context.Context, s ble.CaptureSession) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			stop(s)
		case <-done:
		}
	}()

	return func() {
		close(done)
		stop(s)
	}
}

func stop(s ble.CaptureSession) {
	if err := s.Stop(); err != nil {
		ble.GetLogger().Warnf("can't stop capture: %v", err)
	}
}
