package ble

import (
	"os"
)

// SessionOption is an interface which a capture session should implement to allow using configuration options
type SessionOption interface {
	SetDevice(id int) error
	SetDuplicates(bool) error
	SetPassive(bool) error
	SetSudo(bool) error
	SetReset(bool) error
	SetStopSignal(os.Signal) error
	SetDummyPayload(payload string) error
}

// An Option is a configuration function, which configures the session.
type Option func(SessionOption) error

// OptDevice selects the HCI device, 0 for hci0.
func OptDevice(id int) Option {
	return func(opt SessionOption) error {
		return opt.SetDevice(id)
	}
}

// OptDuplicates reports every advertisement instead of only the first one per device.
func OptDuplicates(dup bool) Option {
	return func(opt SessionOption) error {
		return opt.SetDuplicates(dup)
	}
}

// OptPassive scans without sending scan requests.
func OptPassive(passive bool) Option {
	return func(opt SessionOption) error {
		return opt.SetPassive(passive)
	}
}

// OptSudo runs the capture tools through non-interactive sudo.
func OptSudo(sudo bool) Option {
	return func(opt SessionOption) error {
		return opt.SetSudo(sudo)
	}
}

// OptReset resets the HCI device before scanning.
func OptReset(reset bool) Option {
	return func(opt SessionOption) error {
		return opt.SetReset(reset)
	}
}

// OptStopSignal sets the signal delivered to the capture tools on Stop.
func OptStopSignal(sig os.Signal) Option {
	return func(opt SessionOption) error {
		return opt.SetStopSignal(sig)
	}
}

// OptDummyPayload sets the payload broadcast by the dummy devices.
func OptDummyPayload(payload string) Option {
	return func(opt SessionOption) error {
		return opt.SetDummyPayload(payload)
	}
}
