package capture

import (
	"context"
	"io"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/hcidump"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDummyGetData(t *testing.T) {
	d, err := NewDummy()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	payload, err := GetData(ctx, d, ble.NewAddr("BC:2C:6A:1E:59:3D"))
	require.NoError(t, err)
	assert.Equal(t, "1E"+DummyPayload+"C3", payload)

	payload, err = GetData(ctx, d, ble.NewAddr("aa2c6a1e593d"))
	require.NoError(t, err)
	assert.Equal(t, "1E"+DummyPayload+"B5", payload)
}

func TestDummyGetDataNotFound(t *testing.T) {
	d, err := NewDummy()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = GetData(ctx, d, ble.NewAddr("00:11:22:33:44:55"))
	assert.Equal(t, ble.ErrNotFound, err)
}

func TestDummyStopEndsStream(t *testing.T) {
	d, err := NewDummy()
	require.NoError(t, err)

	src, err := d.Start(context.Background())
	require.NoError(t, err)

	l, err := src.ReadLine()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(l, "HCI sniffer"))

	require.NoError(t, d.Stop())
	require.NoError(t, d.Stop())

	_, err = src.ReadLine()
	assert.Equal(t, io.EOF, err)
}

func TestDummyTranscript(t *testing.T) {
	d, err := NewDummy(ble.OptDummyPayload("020106"), ble.OptDevice(1))
	require.NoError(t, err)

	lines := d.transcript()
	assert.Equal(t, "device: hci1 snap_len: 1500 filter: 0xffffffffffffffff", lines[1])
	assert.Contains(t, lines, "> 04 3E 0F 02 01 03 00 3D 59 1E 6A 2C BC 03 02 01 06 C3")

	dec := hcidump.NewDecoder(hcidump.Lines(lines...))
	var macs []string
	for dec.Next() {
		if a, ok := hcidump.Extract(dec.Packet()); ok {
			macs = append(macs, a.Addr().String())
			assert.Equal(t, "030201", a.Payload()[:6])
		}
	}
	assert.Equal(t, []string{"BC2C6A1E593D", "AA2C6A1E593D"}, macs)
}

func TestDumpLinesWrap(t *testing.T) {
	b := make([]byte, 45)
	lines := dumpLines(b)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "> 00 00"))
	assert.True(t, strings.HasPrefix(lines[1], "  00 00"))
	assert.Equal(t, "  00 00 00 00 00", lines[2])
}

func TestDummyFindDevices(t *testing.T) {
	d, err := NewDummy()
	require.NoError(t, err)

	devs, err := d.FindDevices(context.Background())
	require.NoError(t, err)
	require.Len(t, devs, 2)
	assert.Equal(t, "BC:2C:6A:1E:59:3D", ble.ColonString(devs[0].Addr))
	assert.Equal(t, "AA:2C:6A:1E:59:3D", ble.ColonString(devs[1].Addr))
}

func TestWatch(t *testing.T) {
	d, err := NewDummy()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var seen []string
	n, err := Watch(ctx, d, func(a ble.Advertisement) {
		seen = append(seen, a.Addr().String())
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"BC2C6A1E593D", "AA2C6A1E593D"}, seen)
}

func TestNativeCommands(t *testing.T) {
	n, err := NewNative()
	require.NoError(t, err)

	assert.Equal(t, []string{"sudo", "-n", "hciconfig", "hci0", "reset"}, n.resetCommand())
	assert.Equal(t, []string{"sudo", "-n", "hcitool", "-i", "hci0", "lescan", "--duplicates"}, n.scanCommand())
	assert.Equal(t, []string{"sudo", "-n", "hcidump", "-i", "hci0", "--raw"}, n.dumpCommand())
	assert.Equal(t, []string{"sudo", "-n", "kill", "-s", "INT", "42"}, n.killCommand(42, "INT"))
	assert.Equal(t, []string{"sudo", "-n", "kill", "-s", "KILL", "--", "-42"}, n.killGroupCommand(42, "KILL"))

	n, err = NewNative(
		ble.OptSudo(false),
		ble.OptDevice(1),
		ble.OptDuplicates(false),
		ble.OptPassive(true),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"hcitool", "-i", "hci1", "lescan", "--passive"}, n.scanCommand())
	assert.Equal(t, []string{"hcidump", "-i", "hci1", "--raw"}, n.dumpCommand())
	assert.Equal(t, "native(hci1)", n.String())
}

func TestNativeFindDevicesUnsupported(t *testing.T) {
	n, err := NewNative()
	require.NoError(t, err)

	_, err = n.FindDevices(context.Background())
	assert.Equal(t, ble.ErrNotSupported, err)
	assert.NoError(t, n.Stop())
}

func TestOptionErrors(t *testing.T) {
	_, err := NewNative(ble.OptDevice(-1))
	assert.Error(t, err)

	_, err = NewDummy(ble.OptDummyPayload("not hex"))
	assert.Equal(t, ble.ErrInvalidPayload, errors.Cause(err))

	_, err = NewDummy(ble.OptDummyPayload(strings.Repeat("00", 32)))
	assert.Equal(t, ble.ErrInvalidPayload, errors.Cause(err))

	_, err = NewNative(ble.OptStopSignal(nil))
	assert.Error(t, err)

	n, err := NewNative(ble.OptStopSignal(syscall.SIGTERM))
	require.NoError(t, err)
	assert.Equal(t, syscall.SIGTERM, n.opts.stopSignal)
}

func TestNew(t *testing.T) {
	s, err := New("dummy")
	require.NoError(t, err)
	assert.IsType(t, &Dummy{}, s)

	s, err = New("NATIVE")
	require.NoError(t, err)
	assert.IsType(t, &Native{}, s)

	s, err = New("auto")
	require.NoError(t, err)
	assert.NotNil(t, s)

	s, err = New("bluetoothctl")
	assert.Error(t, err)
	assert.Nil(t, s)

	s, err = New("native", ble.OptDevice(-1))
	assert.Error(t, err)
	assert.Nil(t, s)
}
