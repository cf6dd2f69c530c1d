//go:build linux
// +build linux

package capture

import (
	"context"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/hcidump"
	"golang.org/x/sys/unix"
)

// Start implements ble.CaptureSession.
func (n *Native) Start(ctx context.Context) (ble.LineSource, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.running {
		return nil, errors.Errorf("%v already started", n)
	}

	n.log.Info("start receiving broadcasts")
	if n.opts.reset {
		args := n.resetCommand()
		if out, err := exec.CommandContext(ctx, args[0], args[1:]...).CombinedOutput(); err != nil {
			return nil, errors.Wrapf(err, "can't reset %s: %s", n.hci(), strings.TrimSpace(string(out)))
		}
	}

	scan := n.process(n.scanCommand())
	if err := scan.Start(); err != nil {
		return nil, errors.Wrap(err, "can't start hcitool")
	}

	dump := n.process(n.dumpCommand())
	stdout, err := dump.StdoutPipe()
	if err != nil {
		n.abort(scan)
		return nil, errors.Wrap(err, "can't open hcidump output")
	}
	if err := dump.Start(); err != nil {
		n.abort(scan)
		return nil, errors.Wrap(err, "can't start hcidump")
	}

	n.scan, n.dump, n.stdout = scan, dump, stdout
	n.running = true
	n.log.Debugf("hcitool pid %d, hcidump pid %d", scan.Process.Pid, dump.Process.Pid)

	return hcidump.NewLineReader(stdout), nil
}

// Stop implements ble.CaptureSession. It signals hcidump first so that its
// output ends, then hcitool, and waits for both.
func (n *Native) Stop() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.running {
		return nil
	}
	n.running = false
	n.log.Info("stop receiving broadcasts")

	var result error
	for _, c := range []*exec.Cmd{n.dump, n.scan} {
		if err := n.signal(c); err != nil {
			n.log.Warnf("can't signal %v: %v", c.Path, err)
			result = err
		}
	}
	for _, c := range []*exec.Cmd{n.dump, n.scan} {
		n.wait(c)
	}

	n.scan, n.dump, n.stdout = nil, nil, nil
	return result
}

// process prepares a tool to run in its own process group, so that it can be
// killed along with whatever sudo started for it.
func (n *Native) process(args []string) *exec.Cmd {
	c := exec.Command(args[0], args[1:]...)
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	return c
}

// abort stops a tool that was started by a Start call that failed later on.
func (n *Native) abort(c *exec.Cmd) {
	if err := n.signal(c); err != nil {
		n.log.Warnf("can't signal %v: %v", c.Path, err)
	}
	n.wait(c)
}

func (n *Native) signal(c *exec.Cmd) error {
	if c == nil || c.Process == nil {
		return nil
	}

	sig, ok := n.opts.stopSignal.(syscall.Signal)
	if !ok {
		return errors.Errorf("unsupported stop signal %v", n.opts.stopSignal)
	}

	// a root owned process can only be signalled through sudo as well
	if n.opts.sudo {
		args := n.killCommand(c.Process.Pid, strings.TrimPrefix(unix.SignalName(sig), "SIG"))
		out, err := exec.Command(args[0], args[1:]...).CombinedOutput()
		return errors.Wrapf(err, "%s", strings.TrimSpace(string(out)))
	}

	err := unix.Kill(c.Process.Pid, sig)
	if err == unix.ESRCH {
		return nil
	}
	return errors.Wrapf(err, "can't send %v to %d", sig, c.Process.Pid)
}

func (n *Native) wait(c *exec.Cmd) {
	if c == nil || c.Process == nil {
		return
	}

	done := make(chan error, 1)
	go func() { done <- c.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			n.log.Debugf("%v exited: %v", c.Path, err)
		}
	case <-time.After(stopTimeout):
		n.log.Warnf("%v did not exit, killing", c.Path)
		n.kill(c)
		<-done
	}
}

// kill sends SIGKILL to the process group of c. sudo cannot relay SIGKILL
// to the tool it runs, so the whole group has to go.
func (n *Native) kill(c *exec.Cmd) {
	if c.Process == nil {
		return
	}
	pgid := c.Process.Pid

	if n.opts.sudo {
		args := n.killGroupCommand(pgid, "KILL")
		if out, err := exec.Command(args[0], args[1:]...).CombinedOutput(); err != nil {
			n.log.Debugf("can't kill %v: %v: %s", c.Path, err, strings.TrimSpace(string(out)))
		}
		return
	}

	if err := unix.Kill(-pgid, unix.SIGKILL); err != nil && err != unix.ESRCH {
		n.log.Debugf("can't kill %v: %v", c.Path, err)
	}
}
