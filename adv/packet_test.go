package adv

import (
	"bytes"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
)

func TestEddystonePacket(t *testing.T) {
	frame := append([]byte{0x10, 0xee, 0x03}, "ruu.vi#*hCtFABFD"...)
	p, err := NewPacket(Flags(FlagGeneralDiscoverable|FlagBREDRNotSupported), Eddystone(frame))
	if err != nil {
		t.Fatal(err)
	}

	exp := "0201060303AAFE1616AAFE10EE037275752E7669232A6843744641424644"
	if got := strings.ToUpper(hex.EncodeToString(p.Bytes())); got != exp {
		t.Fatalf("packet mismatch: exp %v, got %v", exp, got)
	}
}

func TestFields(t *testing.T) {
	p, err := NewPacket(
		CompleteName("Ruuvi 593D"),
		ManufacturerData(0x0499, []byte{0x05}),
		AllUUID(ble.UUID16(0x180f)),
	)
	if err != nil {
		t.Fatal(err)
	}

	exp := []byte{
		0x0b, 0x09, 'R', 'u', 'u', 'v', 'i', ' ', '5', '9', '3', 'D',
		0x04, 0xff, 0x99, 0x04, 0x05,
		0x03, 0x03, 0x0f, 0x18,
	}
	if !bytes.Equal(p.Bytes(), exp) {
		t.Fatalf("packet mismatch: exp %x, got %x", exp, p.Bytes())
	}

	if err := p.Append(ShortName("R")); err != nil {
		t.Fatal(err)
	}
	if p.Len() != len(exp)+3 {
		t.Fatalf("length mismatch: exp %v, got %v", len(exp)+3, p.Len())
	}
}

func TestNotFit(t *testing.T) {
	p, err := NewPacket(Raw(make([]byte, 20)))
	if err != nil {
		t.Fatal(err)
	}

	n := p.Len()
	if err := p.Append(Eddystone(make([]byte, 10))); err != ErrNotFit {
		t.Fatalf("exp ErrNotFit, got %v", err)
	}
	if p.Len() != n {
		t.Fatalf("packet modified: exp len %v, got %v", n, p.Len())
	}

	if _, err := NewPacket(CompleteName(strings.Repeat("x", 30))); err != ErrNotFit {
		t.Fatalf("exp ErrNotFit, got %v", err)
	}
	if _, err := NewRawPacket(make([]byte, 32)); err != ErrNotFit {
		t.Fatalf("exp ErrNotFit, got %v", err)
	}
}

func TestInvalid(t *testing.T) {
	if _, err := NewPacket(AllUUID(ble.UUID{0x01, 0x02, 0x03})); err != ErrInvalid {
		t.Fatalf("exp ErrInvalid, got %v", err)
	}
	if _, err := NewPacket(Eddystone(nil)); err != ErrInvalid {
		t.Fatalf("exp ErrInvalid, got %v", err)
	}
}

func TestRawPacket(t *testing.T) {
	p, err := NewRawPacket([]byte{0x02, 0x01, 0x06}, []byte{0x03, 0x03, 0xaa, 0xfe})
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() != 7 {
		t.Fatalf("length mismatch: exp 7, got %v", p.Len())
	}

	// record length runs past the end
	_, err = NewRawPacket([]byte{0x05, 0x01, 0x06})
	if err == nil {
		t.Fatal("exp decode error")
	}
	if errors.Cause(err) == ErrNotFit {
		t.Fatalf("unexpected ErrNotFit")
	}
}
