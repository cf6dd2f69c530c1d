package capture

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/ruuvi/ble"
)

// stopTimeout is how long Stop waits for the tools to exit after signalling
// them before killing them outright.
var stopTimeout = 2 * time.Second

// Native captures with the BlueZ tools: hcitool keeps an LE scan running
// while hcidump prints the raw HCI traffic.
type Native struct {
	opts options
	log  ble.Logger

	mu      sync.Mutex
	scan    *exec.Cmd
	dump    *exec.Cmd
	stdout  io.ReadCloser
	running bool
}

// NewNative returns a capture session driving hcitool and hcidump.
func NewNative(opts ...ble.Option) (*Native, error) {
	o := defaultOptions()
	if err := o.apply(opts...); err != nil {
		return nil, err
	}
	return &Native{
		opts: o,
		log:  ble.GetLogger().ChildLogger(map[string]interface{}{"component": "capture", "backend": "native"}),
	}, nil
}

// FindDevices is not implemented for the native backend.
func (n *Native) FindDevices(ctx context.Context) ([]ble.Device, error) {
	return nil, ble.ErrNotSupported
}

func (n *Native) hci() string {
	return "hci" + strconv.Itoa(n.opts.device)
}

func (n *Native) command(args ...string) []string {
	if n.opts.sudo {
		return append([]string{"sudo", "-n"}, args...)
	}
	return args
}

func (n *Native) resetCommand() []string {
	return n.command("hciconfig", n.hci(), "reset")
}

func (n *Native) scanCommand() []string {
	args := []string{"hcitool", "-i", n.hci(), "lescan"}
	if n.opts.duplicates {
		args = append(args, "--duplicates")
	}
	if n.opts.passive {
		args = append(args, "--passive")
	}
	return n.command(args...)
}

func (n *Native) dumpCommand() []string {
	return n.command("hcidump", "-i", n.hci(), "--raw")
}

func (n *Native) killCommand(pid int, sig string) []string {
	return n.command("kill", "-s", sig, strconv.Itoa(pid))
}

func (n *Native) killGroupCommand(pgid int, sig string) []string {
	return n.command("kill", "-s", sig, "--", "-"+strconv.Itoa(pgid))
}

func (n *Native) String() string {
	return fmt.Sprintf("native(%s)", n.hci())
}
