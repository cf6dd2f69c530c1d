package ble

import (
	"encoding/hex"
	"strings"
)

// AddrLen is the length of a hardware address in bytes.
const AddrLen = 6

// Addr represents a BLE hardware (MAC) address in canonical form:
// twelve upper case hex characters, most significant byte first.
type Addr interface {
	String() string
	Bytes() []byte
}

var addrSeparators = strings.NewReplacer(":", "", "-", "")

// NewAddr creates an Addr from string.
// "BC:2C:6A:1E:59:3D", "bc-2c-6a-1e-59-3d" and "BC2C6A1E593D" all yield the same Addr.
func NewAddr(s string) Addr {
	return addr(strings.ToUpper(addrSeparators.Replace(strings.TrimSpace(s))))
}

// ParseAddr is like NewAddr but rejects anything that is not six hex bytes.
func ParseAddr(s string) (Addr, error) {
	a := NewAddr(s)
	b, err := hex.DecodeString(a.String())
	if err != nil || len(b) != AddrLen {
		return nil, ErrInvalidAddr
	}
	return a, nil
}

type addr string

func (a addr) String() string {
	return string(a)
}

func (a addr) Bytes() []byte {
	out, err := hex.DecodeString(a.String())
	if err != nil {
		GetLogger().Debugf("error decoding address %v: %v", a.String(), err)
	}

	return out
}

// ColonString renders a in the colon separated form, e.g. "BC:2C:6A:1E:59:3D".
// A malformed address with an odd number of characters keeps the leftover
// character as a last group of its own.
func ColonString(a Addr) string {
	s := a.String()
	var sb strings.Builder
	for i := 0; i < len(s); i += 2 {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(s[i:min(i+2, len(s))])
	}
	return sb.String()
}

// EqualAddr reports whether a and b name the same device, whatever
// separators or case their String forms use.
func EqualAddr(a, b Addr) bool {
	if a == nil || b == nil {
		return false
	}
	return NewAddr(a.String()) == NewAddr(b.String())
}
