package hcidump

import (
	"context"
	"strings"

	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/sliceops"
)

type advertisement struct {
	p ble.Packet
	a ble.Addr
}

func (a *advertisement) Addr() ble.Addr     { return a.a }
func (a *advertisement) Payload() string    { return string(a.p[ble.PayloadOffset:]) }
func (a *advertisement) Packet() ble.Packet { return a.p }

// Extract returns the advertisement carried by p, or false if p is too short
// to hold an address. Field contents are not validated.
func Extract(p ble.Packet) (ble.Advertisement, bool) {
	if !p.HasAddr() {
		return nil, false
	}
	mac := sliceops.SwapHex(string(p[ble.AddrOffset:ble.PayloadOffset]))
	return &advertisement{p: p, a: ble.NewAddr(mac)}, true
}

// Match returns the payload of p if it was sent by target.
func Match(p ble.Packet, target ble.Addr) (string, bool) {
	if target == nil || !p.HasAddr() {
		return "", false
	}
	mac := sliceops.SwapHex(string(p[ble.AddrOffset:ble.PayloadOffset]))
	if !strings.EqualFold(mac, ble.NewAddr(target.String()).String()) {
		return "", false
	}
	return string(p[ble.PayloadOffset:]), true
}

// Find pulls packets from d until one from target shows up and returns its
// payload. It stops reading as soon as it matches. It returns false when the
// source ends or ctx is done first.
func Find(ctx context.Context, d *Decoder, target ble.Addr) (string, bool) {
	for d.Next() {
		if payload, ok := Match(d.Packet(), target); ok {
			return payload, true
		}
		if ctx.Err() != nil {
			return "", false
		}
	}
	return "", false
}

// Scan hands every advertisement accepted by f (all of them if f is nil) to
// h until the source ends or ctx is done. It returns the number handled.
func Scan(ctx context.Context, d *Decoder, h ble.AdvHandler, f ble.AdvFilter) int {
	n := 0
	for d.Next() {
		if a, ok := Extract(d.Packet()); ok && (f == nil || f(a)) {
			h(a)
			n++
		}
		if ctx.Err() != nil {
			break
		}
	}
	return n
}
