package ble

import "time"

// Offsets, in hex characters, of the fields of an hcidump advertising report.
const (
	// AddrOffset is where the byte reversed device address starts:
	// packet type, event code, length, sub-event, report count, event type
	// and address type precede it.
	AddrOffset = 14

	// PayloadOffset is where the advertising data starts.
	PayloadOffset = AddrOffset + 2*AddrLen

	// MinPacketLen is the shortest packet that carries a whole address.
	MinPacketLen = PayloadOffset
)

// EddystoneUUID is the 16 bit service UUID used by Eddystone frames.
var EddystoneUUID = UUID16(0xfeaa)

// Packet is one complete HCI event record as hex digits, exactly as
// reassembled from the capture stream. It is not validated.
type Packet string

// Len returns the length of the packet in hex characters.
func (p Packet) Len() int {
	return len(p)
}

// HasAddr reports whether the packet is long enough to carry a device address.
func (p Packet) HasAddr() bool {
	return len(p) >= MinPacketLen
}

// AdvHandler handles advertisement.
type AdvHandler func(a Advertisement)

// AdvFilter returns true if the advertisement matches specified condition.
type AdvFilter func(a Advertisement) bool

// Advertisement is a decoded advertising report.
type Advertisement interface {
	Addr() Addr
	Payload() string
	Packet() Packet
}

// Sighting records the payload last seen from a device.
type Sighting struct {
	Addr    string    `json:"mac"`
	Payload string    `json:"payload"`
	Seen    time.Time `json:"seen"`
}

var AdvertisementMapKeys = struct {
	Name        string
	MFG         string
	Services    string
	ServiceData string
	Solicited   string
	Flags       string
	TxPower     string
}{
	Name:        "name",
	MFG:         "mfg",
	Services:    "services",
	ServiceData: "serviceData",
	Solicited:   "solicited",
	Flags:       "flags",
	TxPower:     "txpwr",
}
