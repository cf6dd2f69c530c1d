package main

/*
* CLI reading Eddystone advertisements through hcitool and hcidump
 */

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/ruuvi/ble"
	"github.com/ruuvi/ble/cache"
	"github.com/ruuvi/ble/capture"
	"github.com/ruuvi/ble/internal/config"
	"github.com/ruuvi/ble/parser"
)

const configKey = "config"

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if c.IsSet("backend") {
		cfg.Backend = c.String("backend")
	}
	if c.IsSet("device") {
		cfg.Device = c.Int("device")
	}
	if c.IsSet("sudo") {
		cfg.Sudo = c.BoolT("sudo")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Log.Apply(); err != nil {
		return err
	}

	c.App.Metadata[configKey] = cfg
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata[configKey].(*config.Config)
}

func newSession(cfg *config.Config) (capture.Session, error) {
	return capture.New(cfg.Backend, cfg.Options()...)
}

// captureContext bounds a capture by the --timeout flag, falling back to the
// configured timeout. Zero means until interrupted.
func captureContext(c *cli.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	timeout := cfg.Timeout
	if c.IsSet("timeout") {
		timeout = c.Duration("timeout")
	}

	if timeout <= 0 {
		ctx, cancel := context.WithCancel(context.Background())
		return ble.WithSigHandler(ctx, cancel), cancel
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	return ble.WithSigHandler(ctx, cancel), cancel
}

func macFlag(c *cli.Context) (ble.Addr, error) {
	s := c.String("mac")
	if s == "" {
		return nil, cli.NewExitError("--mac is required", 2)
	}
	mac, err := ble.ParseAddr(s)
	if err != nil {
		return nil, cli.NewExitError(fmt.Sprintf("invalid address %q", s), 2)
	}
	return mac, nil
}

func getCommand(c *cli.Context) (err error) {
	cfg := configFrom(c)
	mac, err := macFlag(c)
	if err != nil {
		return
	}

	s, err := newSession(cfg)
	if err != nil {
		return
	}

	ctx, cancel := captureContext(c, cfg)
	defer cancel()

	payload, err := capture.GetData(ctx, s, mac)
	if errors.Cause(err) == ble.ErrNotFound {
		return cli.NewExitError(fmt.Sprintf("no data from %s", ble.ColonString(mac)), 1)
	}
	if err != nil {
		return
	}
	fmt.Fprintln(c.App.Writer, payload)

	if cfg.Cache.File != "" {
		sighting := ble.Sighting{Payload: payload, Seen: time.Now()}
		if err = cache.New(cfg.Cache.File).Store(mac, sighting, true); err != nil {
			return
		}
	}
	return
}

func describe(a ble.Advertisement) string {
	line := fmt.Sprintf("%s %s", ble.ColonString(a.Addr()), a.Payload())

	r, err := parser.ParseHex(a.Payload())
	if err != nil {
		ble.GetLogger().Debugf("can't parse payload of %v: %v", a.Addr(), err)
		return line
	}
	if r.HasRSSI {
		line += fmt.Sprintf(" rssi=%d", r.RSSI)
	}
	if name := r.LocalName(); name != "" {
		line += fmt.Sprintf(" name=%q", name)
	}
	if data, ok := r.Eddystone(); ok {
		line += fmt.Sprintf(" eddystone=%X", data)
	}
	return line
}

func watchCommand(c *cli.Context) (err error) {
	cfg := configFrom(c)

	var filter ble.AdvFilter
	if c.IsSet("mac") {
		mac, err := macFlag(c)
		if err != nil {
			return err
		}
		filter = func(a ble.Advertisement) bool {
			return ble.EqualAddr(a.Addr(), mac)
		}
	}

	var sc ble.SightingCache
	if cfg.Cache.File != "" {
		sc = cache.New(cfg.Cache.File)
	}

	s, err := newSession(cfg)
	if err != nil {
		return
	}

	ctx, cancel := captureContext(c, cfg)
	defer cancel()

	n, err := capture.Watch(ctx, s, func(a ble.Advertisement) {
		fmt.Fprintln(c.App.Writer, describe(a))
		if sc == nil {
			return
		}
		sighting := ble.Sighting{Payload: a.Payload(), Seen: time.Now()}
		if err := sc.Store(a.Addr(), sighting, true); err != nil {
			ble.GetLogger().Warnf("can't cache sighting: %v", err)
		}
	}, filter)
	if err != nil {
		return
	}

	ble.GetLogger().Infof("%d advertisements", n)
	return
}

func devicesCommand(c *cli.Context) (err error) {
	s, err := newSession(configFrom(c))
	if err != nil {
		return
	}

	devs, err := s.FindDevices(context.Background())
	if errors.Cause(err) == ble.ErrNotSupported {
		return cli.NewExitError("device discovery is not supported by this backend", 1)
	}
	if err != nil {
		return
	}

	for _, d := range devs {
		fmt.Fprintln(c.App.Writer, strings.TrimSpace(ble.ColonString(d.Addr)+" "+d.Name))
	}
	return
}

func lastCommand(c *cli.Context) (err error) {
	cfg := configFrom(c)
	if cfg.Cache.File == "" {
		return cli.NewExitError("no cache.file configured", 2)
	}

	mac, err := macFlag(c)
	if err != nil {
		return
	}

	s, err := cache.New(cfg.Cache.File).Load(mac)
	if errors.Cause(err) == ble.ErrNotFound {
		return cli.NewExitError(fmt.Sprintf("no sighting of %s", ble.ColonString(mac)), 1)
	}
	if err != nil {
		return
	}

	fmt.Fprintf(c.App.Writer, "%s %s %s\n", ble.ColonString(ble.NewAddr(s.Addr)), s.Payload, s.Seen.Format(time.RFC3339))
	return
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "eddyscan"
	app.Usage = "read Eddystone advertisements captured by hcidump"
	app.Metadata = map[string]interface{}{}
	app.Before = loadConfig
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "YAML config file",
		},
		cli.StringFlag{
			Name:  "backend, b",
			Usage: "capture backend: " + strings.Join([]string{capture.BackendAuto, capture.BackendNative, capture.BackendDummy}, ", "),
		},
		cli.IntFlag{
			Name:  "device, d",
			Usage: "hci device index",
		},
		cli.BoolTFlag{
			Name:  "sudo",
			Usage: "run the BlueZ tools through sudo -n",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "debug, info, warn or error",
		},
	}
	timeoutFlag := cli.DurationFlag{
		Name:  "timeout, t",
		Usage: "stop capturing after this long, 0 for until interrupted",
	}
	app.Commands = []cli.Command{
		cli.Command{
			Name:   "get",
			Usage:  "print the advertisement payload of one device",
			Action: getCommand,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "mac, m",
					Usage: "device address, e.g. BC:2C:6A:1E:59:3D",
				},
				timeoutFlag,
			},
		},
		cli.Command{
			Name:   "watch",
			Usage:  "print every advertisement until interrupted",
			Action: watchCommand,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "mac, m",
					Usage: "only print this device",
				},
				timeoutFlag,
			},
		},
		cli.Command{
			Name:    "devices",
			Aliases: []string{"ls"},
			Usage:   "list nearby devices",
			Action:  devicesCommand,
		},
		cli.Command{
			Name:   "last",
			Usage:  "print the cached last sighting of a device",
			Action: lastCommand,
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "mac, m",
					Usage: "device address",
				},
			},
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		ble.GetLogger().Error(err)
		os.Exit(1)
	}
}
