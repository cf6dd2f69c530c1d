// Package parser decodes the AD structures of an advertisement payload.
// It does not interpret Eddystone frame types; ServiceData hands back the
// raw service data for whoever does.
package parser

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
)

var EmptyOrNilPdu = errors.New("nil/empty pdu")

// https://www.bluetooth.com/specifications/assigned-numbers/ (Generic Access Profile)
const (
	typFlags       byte = 0x01
	typUUID16Inc   byte = 0x02
	typUUID16Comp  byte = 0x03
	typUUID32Inc   byte = 0x04
	typUUID32Comp  byte = 0x05
	typUUID128Inc  byte = 0x06
	typUUID128Comp byte = 0x07
	typNameShort   byte = 0x08
	typNameComp    byte = 0x09
	typTxPower     byte = 0x0a
	typSol16       byte = 0x14
	typSol128      byte = 0x15
	typSvc16       byte = 0x16
	typSol32       byte = 0x1f
	typSvc32       byte = 0x20
	typSvc128      byte = 0x21
	typMfgData     byte = 0xff
)

var keys = ble.AdvertisementMapKeys

type pduRecord struct {
	arrayElementSz int
	minSz          int
	svcDataUUIDSz  int
	key            string
}

var pduDecodeMap = map[byte]pduRecord{
	typUUID16Inc:   {arrayElementSz: 2, minSz: 2, key: keys.Services},
	typUUID16Comp:  {arrayElementSz: 2, minSz: 2, key: keys.Services},
	typUUID32Inc:   {arrayElementSz: 4, minSz: 4, key: keys.Services},
	typUUID32Comp:  {arrayElementSz: 4, minSz: 4, key: keys.Services},
	typUUID128Inc:  {arrayElementSz: 16, minSz: 16, key: keys.Services},
	typUUID128Comp: {arrayElementSz: 16, minSz: 16, key: keys.Services},
	typSol16:       {arrayElementSz: 2, minSz: 2, key: keys.Solicited},
	typSol32:       {arrayElementSz: 4, minSz: 4, key: keys.Solicited},
	typSol128:      {arrayElementSz: 16, minSz: 16, key: keys.Solicited},
	typSvc16:       {minSz: 2, svcDataUUIDSz: 2, key: keys.ServiceData},
	typSvc32:       {minSz: 4, svcDataUUIDSz: 4, key: keys.ServiceData},
	typSvc128:      {minSz: 16, svcDataUUIDSz: 16, key: keys.ServiceData},
	typNameComp:    {minSz: 1, key: keys.Name},
	typNameShort:   {minSz: 1, key: keys.Name},
	typTxPower:     {minSz: 1, key: keys.TxPower},
	typMfgData:     {minSz: 1, key: keys.MFG},
	typFlags:       {minSz: 1, key: keys.Flags},
}

func getArray(size int, b []byte) ([]ble.UUID, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size")
	}
	if len(b) == 0 || len(b)%size != 0 {
		return nil, fmt.Errorf("incorrect size")
	}

	arr := make([]ble.UUID, 0, len(b)/size)
	for j := 0; j < len(b); j += size {
		arr = append(arr, ble.UUID(b[j:j+size]))
	}

	return arr, nil
}

// Parse decodes a sequence of AD structures into a map keyed by
// ble.AdvertisementMapKeys. On error the fields decoded so far are returned
// along with it.
func Parse(pdu []byte) (map[string]interface{}, error) {
	if len(pdu) == 0 {
		return nil, EmptyOrNilPdu
	}

	m := make(map[string]interface{})
	for i := 0; i+1 < len(pdu); {
		// length, type, length-1 bytes of data
		length := int(pdu[i])
		typ := pdu[i+1]

		if length < 1 {
			return m, fmt.Errorf("invalid record length %v, idx %v", length, i)
		}
		if i+length >= len(pdu) {
			return m, fmt.Errorf("buffer overflow: want %v, have %v, idx %v", i+length, len(pdu), i)
		}

		data := make([]byte, length-1)
		copy(data, pdu[i+2:i+1+length])
		i += length + 1

		dec, ok := pduDecodeMap[typ]
		if !ok || len(data) == 0 {
			continue
		}
		if dec.minSz > len(data) {
			return m, fmt.Errorf("adv type %v: min length %v, have %v, idx %v", typ, dec.minSz, len(data), i)
		}

		switch {
		case dec.arrayElementSz > 0:
			arr, err := getArray(dec.arrayElementSz, data)
			if err != nil {
				return m, fmt.Errorf("adv type %v, idx %v: %w", typ, i, err)
			}
			v, _ := m[dec.key].([]ble.UUID)
			m[dec.key] = append(v, arr...)

		case dec.svcDataUUIDSz > 0:
			su := ble.UUID(data[:dec.svcDataUUIDSz]).String()
			msd, ok := m[dec.key].(map[string]interface{})
			if !ok {
				msd = make(map[string]interface{})
			}
			arr, _ := msd[su].([]interface{})
			msd[su] = append(arr, data[dec.svcDataUUIDSz:])
			m[dec.key] = msd

		default:
			writeOrAppendBytes(m, dec.key, data)
		}
	}

	return m, nil
}

func writeOrAppendBytes(m map[string]interface{}, key string, data []byte) {
	d, ok := m[key].([]byte)
	if !ok {
		m[key] = data
		return
	}
	if key == keys.MFG && len(data) >= 2 {
		// the scan response repeats the company id
		data = data[2:]
	}
	m[key] = append(d, data...)
}

// Report is a decoded advertisement payload.
type Report struct {
	Fields  map[string]interface{}
	RSSI    int
	HasRSSI bool
}

// DecodeHex strictly decodes a hex payload. A leading "0x" and whitespace are ignored.
func DecodeHex(payload string) ([]byte, error) {
	s := strings.Join(strings.Fields(payload), "")
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(ble.ErrInvalidPayload, "%q: %v", payload, err)
	}
	return b, nil
}

// ParseHex decodes a payload as handed out by the matcher. An advertising
// report payload carries a data length byte first and the RSSI last; bare AD
// data is accepted too.
func ParseHex(payload string) (*Report, error) {
	b, err := DecodeHex(payload)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.Wrap(ble.ErrInvalidPayload, EmptyOrNilPdu.Error())
	}

	r := &Report{}
	ad := b
	if len(b) >= 2 && int(b[0]) == len(b)-2 {
		ad = b[1 : len(b)-1]
		r.RSSI = int(int8(b[len(b)-1]))
		r.HasRSSI = true
	}

	m, err := Parse(ad)
	if err != nil {
		return nil, errors.Wrapf(ble.ErrInvalidPayload, "%v", err)
	}
	r.Fields = m

	return r, nil
}

// ServiceData returns the first service data block for u.
func (r *Report) ServiceData(u ble.UUID) ([]byte, bool) {
	msd, ok := r.Fields[keys.ServiceData].(map[string]interface{})
	if !ok {
		return nil, false
	}
	arr, ok := msd[u.String()].([]interface{})
	if !ok || len(arr) == 0 {
		return nil, false
	}
	b, ok := arr[0].([]byte)
	return b, ok
}

// Eddystone returns the raw Eddystone service data, frame type byte first.
func (r *Report) Eddystone() ([]byte, bool) {
	return r.ServiceData(ble.EddystoneUUID)
}

// Flags returns the flags field if present.
func (r *Report) Flags() (byte, bool) {
	b, ok := r.Fields[keys.Flags].([]byte)
	if !ok || len(b) == 0 {
		return 0, false
	}
	return b[0], true
}

// Services returns the advertised service UUIDs.
func (r *Report) Services() []ble.UUID {
	u, _ := r.Fields[keys.Services].([]ble.UUID)
	return u
}

// LocalName returns the short or complete local name.
func (r *Report) LocalName() string {
	b, _ := r.Fields[keys.Name].([]byte)
	return string(b)
}
