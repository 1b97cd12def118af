package irinabot

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Forevka/IrinaWebSocketClient/xlog"
)

const stackBufLen = 4096

type (
	// Module is one long-running part of the process.
	Module interface {
		// Name identifies the module in logs and errors.
		Name() string
		// Init prepares the module. A failing Init aborts start-up.
		Init() error
		// Run blocks until ctx is done. A non-nil error shuts the process down.
		Run(ctx context.Context) error
		// Destroy releases the module's resources after Run returned.
		Destroy() error
	}

	module struct {
		mi     Module
		wg     sync.WaitGroup
		cancel context.CancelFunc
	}

	modules []*module
)

func newModules(mis []Module) modules {
	mods := make(modules, 0, len(mis))
	for _, mi := range mis {
		mods = append(mods, &module{mi: mi})
	}
	return mods
}

// init initializes every module in order. Modules initialized before a
// failure are destroyed.
func (mods modules) init() error {
	for i, m := range mods {
		if err := m.mi.Init(); err != nil {
			return errors.Join(
				fmt.Errorf("init %s: %w", m.mi.Name(), err),
				mods[:i].destroy(),
			)
		}
	}
	return nil
}

// run starts every module on its own goroutine. The first Run error is
// delivered on the returned channel.
func (mods modules) run(ctx context.Context) <-chan error {
	failed := make(chan error, len(mods))
	for _, m := range mods {
		mctx, cancel := context.WithCancel(ctx)
		m.cancel = cancel
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			// errors after cancellation are part of shutting down
			if err := m.mi.Run(mctx); err != nil && mctx.Err() == nil {
				failed <- fmt.Errorf("run %s: %w", m.mi.Name(), err)
			}
		}()
	}
	return failed
}

// destroy stops and destroys the modules in reverse order.
func (mods modules) destroy() error {
	var errs []error
	for i := len(mods) - 1; i >= 0; i-- {
		m := mods[i]
		if m.cancel != nil {
			m.cancel()
		}
		m.wg.Wait()
		if err := destroy(m.mi); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func destroy(mi Module) (err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, stackBufLen)
			l := runtime.Stack(buf, false)
			xlog.Write().Sugar().Errorf("module %s destroy panic %v: %s", mi.Name(), r, buf[:l])
			err = fmt.Errorf("destroy %s: panic: %v", mi.Name(), r)
		}
	}()

	if err := mi.Destroy(); err != nil {
		return fmt.Errorf("destroy %s: %w", mi.Name(), err)
	}
	return nil
}
