//go:build !linux
// +build !linux

package capture

import "github.com/ruuvi/ble"

// DefaultSession ...
func DefaultSession(opts ...ble.Option) (Session, error) {
	return session(NewDummy(opts...))
}
