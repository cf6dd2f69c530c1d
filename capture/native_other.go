//go:build !linux
// +build !linux

package capture

import (
	"context"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
)

// Start is only available on linux.
func (n *Native) Start(ctx context.Context) (ble.LineSource, error) {
	return nil, errors.Wrap(ble.ErrNotSupported, "native capture is only available on linux")
}

// Stop is a no-op on non-linux platforms.
func (n *Native) Stop() error {
	return nil
}
