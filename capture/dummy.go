package capture

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/sliceops"
)

// hcidump prints at most this many bytes per line.
const dumpBytesPerLine = 20

type dummyDevice struct {
	addr ble.Addr
	rssi int8
}

var dummyDevices = []dummyDevice{
	{addr: ble.NewAddr("BC:2C:6A:1E:59:3D"), rssi: -61},
	{addr: ble.NewAddr("AA:2C:6A:1E:59:3D"), rssi: -75},
}

// Dummy replays a canned hcidump transcript in which two fixed devices
// advertise the same payload. After the transcript it blocks, like a real
// capture, until stopped.
type Dummy struct {
	opts options
	log  ble.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewDummy returns a dummy capture session.
func NewDummy(opts ...ble.Option) (*Dummy, error) {
	o := defaultOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}
	return &Dummy{
		opts: o,
		log:  ble.GetLogger().ChildLogger(map[string]interface{}{"component": "capture", "backend": "dummy"}),
	}, nil
}

// Start implements ble.CaptureSession.
func (d *Dummy) Start(ctx context.Context) (ble.LineSource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.log.Info("start receiving broadcasts")
	d.stop = make(chan struct{})
	return &dummySource{
		ctx:   ctx,
		stop:  d.stop,
		lines: d.transcript(),
	}, nil
}

// Stop implements ble.CaptureSession.
func (d *Dummy) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stop == nil {
		return nil
	}
	select {
	case <-d.stop:
	default:
		d.log.Info("stop receiving broadcasts")
		close(d.stop)
	}
	return nil
}

// FindDevices implements ble.Discoverer.
func (d *Dummy) FindDevices(ctx context.Context) ([]ble.Device, error) {
	out := make([]ble.Device, 0, len(dummyDevices))
	for _, dd := range dummyDevices {
		out = append(out, ble.Device{Addr: dd.addr})
	}
	return out, nil
}

func (d *Dummy) transcript() []string {
	lines := []string{
		"HCI sniffer - Bluetooth packet analyzer ver 5.50",
		fmt.Sprintf("device: hci%d snap_len: 1500 filter: 0xffffffffffffffff", d.opts.device),
		// LE Set Scan Parameters, LE Set Scan Enable
		"< 01 0B 20 07 01 10 00 10 00 00 00",
		"> 04 0E 04 01 0B 20 00",
		"< 01 0C 20 02 01 00",
		"> 04 0E 04 01 0C 20 00",
	}
	for _, dd := range dummyDevices {
		lines = append(lines, dumpLines(advertisingReport(dd.addr, d.opts.dummyPayload, dd.rssi))...)
	}
	// LE Set Scan Enable completes; closes the last report
	return append(lines, "> 04 0E 04 01 0C 20 00")
}

// advertisingReport builds an HCI LE Advertising Report event as sent by the
// controller for a single non-connectable report.
func advertisingReport(a ble.Addr, ad []byte, rssi int8) []byte {
	b := []byte{0x04, 0x3e, byte(12 + len(ad)), 0x02, 0x01, 0x03, 0x00}
	b = append(b, sliceops.SwapBuf(a.Bytes())...)
	b = append(b, byte(len(ad)))
	b = append(b, ad...)
	return append(b, byte(rssi))
}

// dumpLines formats b the way `hcidump --raw` does.
func dumpLines(b []byte) []string {
	var out []string
	prefix := "> "
	for len(b) > 0 {
		n := dumpBytesPerLine
		if len(b) < n {
			n = len(b)
		}
		out = append(out, prefix+strings.TrimSpace(fmt.Sprintf("% X", b[:n])))
		b = b[n:]
		prefix = "  "
	}
	return out
}

type dummySource struct {
	ctx   context.Context
	stop  <-chan struct{}
	lines []string
}

func (s *dummySource) ReadLine() (string, error) {
	select {
	case <-s.stop:
		return "", io.EOF
	default:
	}

	if len(s.lines) > 0 {
		l := s.lines[0]
		s.lines = s.lines[1:]
		return l, nil
	}

	select {
	case <-s.stop:
		return "", io.EOF
	case <-s.ctx.Done():
		return "", s.ctx.Err()
	}
}
