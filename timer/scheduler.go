// Package timer runs periodic actions against the shared connection.
package timer

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const stackBufLen = 4096

var (
	ErrSchedulerStopped = errors.New("timer: scheduler stopped")
	ErrInvalidPeriod    = errors.New("timer: period must be positive")
	ErrNilAction        = errors.New("timer: nil action")
)

type (
	// TaskID identifies a scheduled task.
	TaskID string

	// Action is invoked once per period. ctx is cancelled when the task is stopped;
	// an invocation already in flight is not interrupted otherwise.
	Action func(ctx context.Context, conn network.Sender) error

	// Option configures a Scheduler.
	Option func(*Scheduler)

	// Scheduler runs every task on its own goroutine. Tasks never end on their
	// own: they run until StopTask or Stop.
	Scheduler struct {
		mu      sync.Mutex
		wg      sync.WaitGroup
		conn    network.Sender
		logger  *zap.Logger
		metrics network.ClientMetrics
		tasks   map[TaskID]*task
		stopped bool
	}

	task struct {
		id     TaskID
		period time.Duration
		action Action
		cancel context.CancelFunc
	}
)

// WithLogger sets the logger used for task failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics records task runs and failures into m.
func WithMetrics(m network.ClientMetrics) Option {
	return func(s *Scheduler) {
		s.metrics = m
	}
}

// NewScheduler creates a scheduler whose actions all send through conn.
func NewScheduler(conn network.Sender, opts ...Option) *Scheduler {
	s := &Scheduler{
		conn:  conn,
		tasks: make(map[TaskID]*task),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = xlog.Named("timer")
	}
	if s.metrics == nil {
		s.metrics = &network.NoopClientMetrics{}
	}
	return s
}

// AddTask starts a goroutine that waits period and then invokes action, forever.
func (s *Scheduler) AddTask(action Action, period time.Duration) (TaskID, error) {
	if action == nil {
		return "", ErrNilAction
	}
	if period <= 0 {
		return "", ErrInvalidPeriod
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return "", ErrSchedulerStopped
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		id:     TaskID(uuid.NewString()),
		period: period,
		action: action,
		cancel: cancel,
	}
	s.tasks[t.id] = t

	s.wg.Add(1)
	go s.run(ctx, t)

	s.logger.Debug("task added", zap.String("id", string(t.id)), zap.Duration("period", period))
	return t.id, nil
}

// StopTask cancels the task. Unknown or already stopped ids are ignored.
// A task that is mid-sleep exits without invoking its action again.
func (s *Scheduler) StopTask(id TaskID) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	t.cancel()
	s.logger.Debug("task stopped", zap.String("id", string(id)))
}

// Tasks returns the ids of the running tasks.
func (s *Scheduler) Tasks() []TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]TaskID, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	return ids
}

// Stop cancels every task and rejects new ones. It does not wait for task
// goroutines; use Wait for that.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	tasks := s.tasks
	s.tasks = make(map[TaskID]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
}

// Wait blocks until every task goroutine has exited.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, t *task) {
	defer s.wg.Done()

	sleep := time.NewTimer(t.period)
	defer sleep.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sleep.C:
		}

		// cancellation may race with the wake-up
		if ctx.Err() != nil {
			return
		}
		s.exec(ctx, t)
		sleep.Reset(t.period)
	}
}

// exec runs one tick. Errors and panics are logged and the task keeps running.
func (s *Scheduler) exec(ctx context.Context, t *task) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, stackBufLen)
			l := runtime.Stack(buf, false)
			s.metrics.IncTaskFailures()
			s.logger.Sugar().Errorf("task %s panic %v: %s", t.id, r, buf[:l])
		}
	}()

	s.metrics.IncTaskRuns()
	if err := t.action(ctx, s.conn); err != nil {
		s.metrics.IncTaskFailures()
		s.logger.Warn("task failed", zap.String("id", string(t.id)), zap.Error(err))
	}
}
