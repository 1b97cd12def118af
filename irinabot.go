// Package irinabot runs the IrinaBot client as a set of modules sharing one
// process lifecycle.
package irinabot

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"go.uber.org/zap"
)

var version = "0.3.0"

// Version returns the current version of irinabot.
func Version() string {
	return version
}

// Run initializes mods in order, runs each on its own goroutine and blocks
// until SIGINT, SIGTERM, ctx is done or a module fails. Modules are then
// destroyed in reverse order.
func Run(ctx context.Context, mods ...Module) error {
	xlog.Write().Info("irinabot starting up", zap.String("version", version))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	set := newModules(mods)
	if err := set.init(); err != nil {
		return err
	}

	failed := set.run(ctx)
	var runErr error
	select {
	case <-ctx.Done():
		xlog.Write().Info("irinabot shutting down", zap.NamedError("cause", context.Cause(ctx)))
	case runErr = <-failed:
		xlog.Write().Error("irinabot module failed, shutting down", zap.Error(runErr))
	}

	return errors.Join(runErr, set.destroy())
}
