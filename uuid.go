package ble

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble/sliceops"
)

// UUID is a BLE UUID in the little endian byte order used on the air.
type UUID []byte

// UUID16 converts a uint16 (such as 0xfeaa) to a UUID.
func UUID16(i uint16) UUID {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, i)
	return UUID(b)
}

// Parse parses a hex UUID string written most significant byte first.
func Parse(s string) (UUID, error) {
	s = strings.Replace(s, "-", "", -1)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(err, "can't parse uuid %q", s)
	}
	switch len(b) {
	case 2, 4, 16:
	default:
		return nil, errors.Errorf("invalid uuid length %d", len(b))
	}
	return UUID(sliceops.SwapBuf(b)), nil
}

// MustParse parses a UUID string and panics on error.
func MustParse(s string) UUID {
	u, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return u
}

// Len returns the length of the UUID in bytes.
func (u UUID) Len() int {
	return len(u)
}

// String renders the UUID most significant byte first.
func (u UUID) String() string {
	return hex.EncodeToString(sliceops.SwapBuf(u))
}

// Equal reports whether u and v are the same UUID.
func (u UUID) Equal(v UUID) bool {
	return bytes.Equal(u, v)
}
