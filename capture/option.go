package capture

import (
	"encoding/hex"
	"os"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/adv"
)

// DummyPayload is the AD data broadcast by the dummy devices: flags, the
// Eddystone service UUID and an Eddystone URL frame.
const DummyPayload = "0201060303AAFE1616AAFE10EE037275752E7669232A6843744641424644"

// dummyURLFrame is an Eddystone URL frame: type, tx power -18 dBm, https://
var dummyURLFrame = append([]byte{0x10, 0xee, 0x03}, "ruu.vi#*hCtFABFD"...)

func dummyAdvertisement() []byte {
	p, err := adv.NewPacket(
		adv.Flags(adv.FlagGeneralDiscoverable|adv.FlagBREDRNotSupported),
		adv.Eddystone(dummyURLFrame),
	)
	if err != nil {
		panic(err)
	}
	return p.Bytes()
}

type options struct {
	device       int
	duplicates   bool
	passive      bool
	sudo         bool
	reset        bool
	stopSignal   os.Signal
	dummyPayload []byte
}

func defaultOptions() options {
	return options{
		duplicates:   true,
		sudo:         true,
		reset:        true,
		stopSignal:   os.Interrupt,
		dummyPayload: dummyAdvertisement(),
	}
}

func (o *options) apply(opts ...ble.Option) error {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) SetDevice(id int) error {
	if id < 0 {
		return errors.Errorf("invalid hci device %d", id)
	}
	o.device = id
	return nil
}

func (o *options) SetDuplicates(dup bool) error {
	o.duplicates = dup
	return nil
}

func (o *options) SetPassive(passive bool) error {
	o.passive = passive
	return nil
}

func (o *options) SetSudo(sudo bool) error {
	o.sudo = sudo
	return nil
}

func (o *options) SetReset(reset bool) error {
	o.reset = reset
	return nil
}

func (o *options) SetStopSignal(sig os.Signal) error {
	if sig == nil {
		return errors.New("nil stop signal")
	}
	o.stopSignal = sig
	return nil
}

func (o *options) SetDummyPayload(payload string) error {
	b, err := hex.DecodeString(payload)
	if err != nil {
		return errors.Wrapf(ble.ErrInvalidPayload, "dummy payload: %v", err)
	}
	p, err := adv.NewRawPacket(b)
	if err != nil {
		return errors.Wrapf(ble.ErrInvalidPayload, "dummy payload: %v", err)
	}
	o.dummyPayload = p.Bytes()
	return nil
}
