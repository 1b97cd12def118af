package timer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/Forevka/IrinaWebSocketClient/wire"
	"go.uber.org/zap"
)

const period = 10 * time.Millisecond

// waitFor waits for a condition to become true within a timeout
func waitFor(t *testing.T, timeout time.Duration, condition func() bool, errorMsg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error(errorMsg)
}

type countingSender struct {
	frames atomic.Int64
}

func (c *countingSender) Send(*wire.Buffer) error {
	c.frames.Add(1)
	return nil
}

func newTestScheduler(conn network.Sender) *Scheduler {
	return NewScheduler(conn, WithLogger(zap.NewNop()))
}

func TestScheduler(t *testing.T) {
	t.Run("task runs periodically with the shared connection", func(t *testing.T) {
		conn := &countingSender{}
		s := newTestScheduler(conn)
		defer s.Stop()

		id, err := s.AddTask(func(ctx context.Context, c network.Sender) error {
			return c.Send(wire.New(3, 1))
		}, period)
		if err != nil || id == "" {
			t.Fatalf("AddTask = %q, %v", id, err)
		}
		waitFor(t, time.Second, func() bool { return conn.frames.Load() >= 3 }, "expected at least 3 ticks")
	})

	t.Run("ids are distinct", func(t *testing.T) {
		s := newTestScheduler(nil)
		defer s.Stop()

		noop := func(context.Context, network.Sender) error { return nil }
		a, _ := s.AddTask(noop, time.Hour)
		b, _ := s.AddTask(noop, time.Hour)
		if a == b {
			t.Errorf("duplicate id %q", a)
		}
		if len(s.Tasks()) != 2 {
			t.Errorf("tasks = %v", s.Tasks())
		}
	})

	t.Run("stop task", func(t *testing.T) {
		s := newTestScheduler(nil)
		defer s.Stop()

		var stopped, running atomic.Int64
		id, _ := s.AddTask(func(context.Context, network.Sender) error {
			stopped.Add(1)
			return nil
		}, period)
		_, _ = s.AddTask(func(context.Context, network.Sender) error {
			running.Add(1)
			return nil
		}, period)

		waitFor(t, time.Second, func() bool { return stopped.Load() >= 1 }, "task never ran")
		s.StopTask(id)
		time.Sleep(3 * period)
		before := stopped.Load()
		time.Sleep(5 * period)
		if stopped.Load() != before {
			t.Errorf("task ran %d times after stop", stopped.Load()-before)
		}
		waitFor(t, time.Second, func() bool { return running.Load() >= 5 }, "other task must keep running")
		if len(s.Tasks()) != 1 {
			t.Errorf("tasks = %v", s.Tasks())
		}
	})

	t.Run("stop unknown and stopped ids", func(t *testing.T) {
		s := newTestScheduler(nil)
		defer s.Stop()

		s.StopTask("missing")
		id, _ := s.AddTask(func(context.Context, network.Sender) error { return nil }, period)
		s.StopTask(id)
		s.StopTask(id)
	})

	t.Run("failures do not kill the task", func(t *testing.T) {
		s := newTestScheduler(nil)
		defer s.Stop()

		var errs, panics atomic.Int64
		_, _ = s.AddTask(func(context.Context, network.Sender) error {
			errs.Add(1)
			return errors.New("send failed")
		}, period)
		_, _ = s.AddTask(func(context.Context, network.Sender) error {
			panics.Add(1)
			panic("bad tick")
		}, period)

		waitFor(t, time.Second, func() bool {
			return errs.Load() >= 3 && panics.Load() >= 3
		}, "failing tasks must keep ticking")
	})

	t.Run("invalid arguments", func(t *testing.T) {
		s := newTestScheduler(nil)
		defer s.Stop()

		if _, err := s.AddTask(nil, period); !errors.Is(err, ErrNilAction) {
			t.Errorf("err = %v", err)
		}
		if _, err := s.AddTask(func(context.Context, network.Sender) error { return nil }, 0); !errors.Is(err, ErrInvalidPeriod) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("stop does not wait for sleeping tasks", func(t *testing.T) {
		s := newTestScheduler(nil)
		var ran atomic.Bool
		_, _ = s.AddTask(func(context.Context, network.Sender) error {
			ran.Store(true)
			return nil
		}, time.Hour)

		done := make(chan struct{})
		go func() {
			s.Stop()
			s.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Stop blocked on a sleeping task")
		}
		if ran.Load() {
			t.Error("action ran after stop")
		}
		if _, err := s.AddTask(func(context.Context, network.Sender) error { return nil }, period); !errors.Is(err, ErrSchedulerStopped) {
			t.Errorf("err = %v", err)
		}
		s.Stop()
	})
}
