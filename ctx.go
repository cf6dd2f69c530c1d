package ble

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// WithSigHandler returns a context which is cancelled on SIGINT or SIGTERM,
// or when the wrapped context is done.
func WithSigHandler(ctx context.Context, cancel func()) context.Context {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sig)
		select {
		case s := <-sig:
			GetLogger().Infof("received %v, stopping", s)
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx
}
