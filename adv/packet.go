// Package adv crafts advertising data: the AD structures carried after the
// device address in an advertising report.
package adv

import (
	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/parser"
)

// MaxEIRPacketLength is the maximum allowed AdvertisingPacket
// and ScanResponsePacket length.
const MaxEIRPacketLength = 31

var (
	// ErrNotFit indicates the field does not fit into the packet.
	ErrNotFit = errors.New("field does not fit into the packet")

	// ErrInvalid indicates the field is malformed.
	ErrInvalid = errors.New("invalid field")
)

// Flag bits of the flags field.
const (
	FlagLimitedDiscoverable byte = 0x01
	FlagGeneralDiscoverable byte = 0x02
	FlagBREDRNotSupported   byte = 0x04
)

// AD types used by the fields below.
const (
	flags            = 0x01
	allUUID16        = 0x03
	allUUID32        = 0x05
	allUUID128       = 0x07
	shortName        = 0x08
	completeName     = 0x09
	serviceData16    = 0x16
	manufacturerData = 0xff
)

// Packet is advertising data being crafted or checked.
type Packet struct {
	b []byte
}

// Bytes returns the bytes of the packet.
func (p *Packet) Bytes() []byte {
	return p.b
}

// Len returns the length of the packet.
func (p *Packet) Len() int {
	return len(p.b)
}

// NewPacket returns a new advertising Packet.
func NewPacket(fields ...Field) (*Packet, error) {
	p := &Packet{b: make([]byte, 0, MaxEIRPacketLength)}
	for _, f := range fields {
		if err := f(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// NewRawPacket concatenates bytes into a packet and checks that the result
// is well formed advertising data.
func NewRawPacket(bytes ...[]byte) (*Packet, error) {
	b := make([]byte, 0, MaxEIRPacketLength)
	for _, bb := range bytes {
		b = append(b, bb...)
	}
	if len(b) > MaxEIRPacketLength {
		return nil, ErrNotFit
	}

	if _, err := parser.Parse(b); err != nil {
		return nil, errors.Wrap(err, "pdu decode")
	}

	return &Packet{b: b}, nil
}

// Field is an advertising field which can be appended to a packet.
type Field func(p *Packet) error

// Append appends a field to the packet. It returns ErrNotFit if the field
// doesn't fit into the packet, and leaves the packet intact.
func (p *Packet) Append(f Field) error {
	return f(p)
}

func (p *Packet) append(typ byte, b []byte) error {
	if p.Len()+1+1+len(b) > MaxEIRPacketLength {
		return ErrNotFit
	}
	p.b = append(p.b, byte(len(b)+1))
	p.b = append(p.b, typ)
	p.b = append(p.b, b...)
	return nil
}

// Raw appends the bytes to the current packet.
func Raw(b []byte) Field {
	return func(p *Packet) error {
		if p.Len()+len(b) > MaxEIRPacketLength {
			return ErrNotFit
		}
		p.b = append(p.b, b...)
		return nil
	}
}

// Flags is a flags.
func Flags(f byte) Field {
	return func(p *Packet) error {
		return p.append(flags, []byte{f})
	}
}

// ShortName is a short local name.
func ShortName(n string) Field {
	return func(p *Packet) error {
		return p.append(shortName, []byte(n))
	}
}

// CompleteName is a complete local name.
func CompleteName(n string) Field {
	return func(p *Packet) error {
		return p.append(completeName, []byte(n))
	}
}

// ManufacturerData is manufacturer specific data.
func ManufacturerData(id uint16, b []byte) Field {
	return func(p *Packet) error {
		d := append([]byte{uint8(id), uint8(id >> 8)}, b...)
		return p.append(manufacturerData, d)
	}
}

// AllUUID is one of the complete service UUID list.
func AllUUID(u ble.UUID) Field {
	return func(p *Packet) error {
		switch u.Len() {
		case 2:
			return p.append(allUUID16, u)
		case 4:
			return p.append(allUUID32, u)
		case 16:
			return p.append(allUUID128, u)
		}
		return ErrInvalid
	}
}

// ServiceData16 is service data for a 16bit service uuid, preceded by the
// uuid in a complete service list.
func ServiceData16(id uint16, b []byte) Field {
	return func(p *Packet) error {
		uuid := ble.UUID16(id)
		if p.Len()+2*(1+1+len(uuid))+len(b) > MaxEIRPacketLength {
			return ErrNotFit
		}
		if err := p.append(allUUID16, uuid); err != nil {
			return err
		}
		return p.append(serviceData16, append(uuid, b...))
	}
}

// Eddystone is an Eddystone frame, frame type byte first.
func Eddystone(frame []byte) Field {
	return func(p *Packet) error {
		if len(frame) == 0 {
			return ErrInvalid
		}
		return ServiceData16(0xfeaa, frame)(p)
	}
}
