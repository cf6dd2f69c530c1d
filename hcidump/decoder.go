// Package hcidump decodes the text output of `hcidump --raw` into HCI event
// packets and picks out the advertisements of a given device.
//
// A record starts with a "> " line (controller to host) and continues over
// the following indented lines. hcidump prints no length and no terminator,
// so a record is only known to be complete when the next one starts. Host to
// controller commands ("< ") interleave with events and invalidate whatever
// was being collected.
package hcidump

import (
	"io"
	"strings"

	"github.com/ruuvi/ble"
)

const (
	eventPrefix   = "> "
	commandPrefix = "< "
)

// Decoder reassembles packets from a LineSource. It reads only as many lines
// as needed to produce the next packet and is meant for a single goroutine.
//
// The last record of a stream is never returned: without a following "> "
// line there is no telling whether it is complete.
type Decoder struct {
	src ble.LineSource
	log ble.Logger

	acc    strings.Builder
	active bool

	pkt  ble.Packet
	err  error
	done bool
}

// NewDecoder returns a Decoder reading from src.
func NewDecoder(src ble.LineSource) *Decoder {
	return &Decoder{
		src: src,
		log: ble.GetLogger().ChildLogger(map[string]interface{}{"component": "hcidump"}),
	}
}

// Next advances to the next complete packet, which is then available through
// Packet. It returns false once the source ends, whatever the reason.
func (d *Decoder) Next() bool {
	d.pkt = ""
	for !d.done {
		line, err := d.src.ReadLine()
		if err != nil {
			d.finish(err)
			return false
		}

		switch {
		case strings.HasPrefix(line, eventPrefix):
			prev, emit := d.acc.String(), d.active && d.acc.Len() > 0
			d.acc.Reset()
			d.acc.WriteString(stripSpace(line[len(eventPrefix):]))
			d.active = true
			if emit {
				d.pkt = ble.Packet(prev)
				return true
			}

		case strings.HasPrefix(line, commandPrefix):
			if d.active && d.acc.Len() > 0 {
				d.log.Debugf("command echo, discarding partial packet %v", d.acc.String())
			}
			d.acc.Reset()
			d.active = false

		default:
			if d.active {
				d.acc.WriteString(stripSpace(line))
			}
		}
	}

	return false
}

// Packet returns the packet produced by the last successful call to Next.
func (d *Decoder) Packet() ble.Packet {
	return d.pkt
}

// Err returns the error that ended the source, or nil for a clean io.EOF.
// A source error never invalidates packets already returned.
func (d *Decoder) Err() error {
	return d.err
}

func (d *Decoder) finish(err error) {
	if err != io.EOF {
		d.err = err
		d.log.Debugf("capture stream ended: %v", err)
	}
	if d.active && d.acc.Len() > 0 {
		d.log.Debugf("dropping trailing packet %v", d.acc.String())
	}
	d.acc.Reset()
	d.active = false
	d.done = true
}

// stripSpace removes every whitespace character from s.
func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}
