package ble

import "errors"

var (
	// ErrNotFound is returned when a scan ends without seeing the requested device.
	ErrNotFound = errors.New("device not found")

	// ErrNotSupported is returned by backends for operations they do not implement.
	ErrNotSupported = errors.New("not supported")

	// ErrInvalidPayload is returned when an advertisement payload is not valid hex or AD data.
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrInvalidAddr is returned when a string is not a six byte hardware address.
	ErrInvalidAddr = errors.New("invalid hardware address")
)
