// Package client ties the transport, the handler registry and the task
// scheduler together behind a single connection.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/dispatch"
	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/Forevka/IrinaWebSocketClient/timer"
	"github.com/Forevka/IrinaWebSocketClient/wire"
	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"go.uber.org/zap"
)

var (
	// ErrStarted is returned by Start and Register once Start has been called.
	ErrStarted = errors.New("client: already started")
	// ErrDisposed is returned by every operation after Dispose.
	ErrDisposed  = errors.New("client: disposed")
	ErrNilBuffer = errors.New("client: nil buffer")
)

type (
	// Option configures a Client.
	Option func(*Client)

	// Client owns one outbound connection and the only inbound dispatch path.
	// Handlers are registered before Start; everything else is safe for
	// concurrent use.
	Client struct {
		mu          sync.Mutex
		wg          sync.WaitGroup
		transport   network.Transport
		registry    *dispatch.Registry
		scheduler   *timer.Scheduler
		inbox       *inbox
		logger      *zap.Logger
		metrics     network.ClientMetrics
		state       atomic.Int32
		onReconnect network.ReconnectFunc
		initial     []*wire.Buffer
		started     bool
		consuming   bool
		disposed    bool
		done        chan struct{}
	}
)

var _ network.Sender = (*Client)(nil)

// WithLogger sets the logger; the registry and scheduler get named children.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records dispatch and task metrics into m.
func WithMetrics(m network.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithInitialFrames queues frames to be sent as soon as Start has the
// transport connecting.
func WithInitialFrames(frames ...*wire.Buffer) Option {
	return func(c *Client) {
		c.initial = append(c.initial, frames...)
	}
}

// New returns a client over transport. Nothing is dialed until Start.
func New(transport network.Transport, opts ...Option) *Client {
	c := &Client{
		transport: transport,
		inbox:     newInbox(),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = xlog.Named("client")
	}
	if c.metrics == nil {
		c.metrics = &network.NoopClientMetrics{}
	}

	c.registry = dispatch.New(
		dispatch.WithLogger(c.logger.Named("dispatch")),
		dispatch.WithMetrics(c.metrics),
	)
	c.scheduler = timer.NewScheduler(c,
		timer.WithLogger(c.logger.Named("timer")),
		timer.WithMetrics(c.metrics),
	)
	return c
}

// Register adds a handler for (domain, opcode). It fails with ErrStarted once
// Start has been called and with ErrDisposed after Dispose.
func (c *Client) Register(domain wire.Domain, opcode wire.Opcode, h dispatch.Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.disposed {
		return ErrDisposed
	}
	if c.started {
		return ErrStarted
	}
	return c.registry.Register(domain, opcode, h)
}

// AddTask schedules action every period with the client as its connection.
func (c *Client) AddTask(action timer.Action, period time.Duration) (timer.TaskID, error) {
	return c.scheduler.AddTask(action, period)
}

// StopTask cancels a task. Unknown ids are ignored.
func (c *Client) StopTask(id timer.TaskID) {
	c.scheduler.StopTask(id)
}

// OnReconnect installs a hook observing every (re)connection of the transport.
func (c *Client) OnReconnect(fn network.ReconnectFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onReconnect = fn
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	return State(c.state.Load())
}

// Send writes the bytes of buf to the transport as they are. The caller is
// responsible for the frame header.
func (c *Client) Send(buf *wire.Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}
	if c.State() == StateDisposed {
		return ErrDisposed
	}
	return c.transport.Write(buf.Bytes())
}

// OnMessage queues one inbound message for dispatch. Messages are dispatched
// one at a time in the order they were queued. raw must not be modified
// afterwards.
func (c *Client) OnMessage(raw []byte) {
	if !c.inbox.push(raw) {
		c.logger.Debug("message dropped after dispose", zap.Int("size", len(raw)))
	}
}

// Start connects the transport, sends the initial frames and blocks until ctx
// is done or Dispose is called. If the transport fails to connect, Start may
// be called again.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return ErrDisposed
	}
	if c.started {
		c.mu.Unlock()
		return ErrStarted
	}
	c.started = true
	if !c.consuming {
		c.consuming = true
		c.wg.Add(1)
		go c.consume()
	}
	c.mu.Unlock()

	c.transition(StateConnecting)
	c.transport.Subscribe(c.OnMessage, c.reconnected, c.disconnected)

	if err := c.transport.Connect(ctx); err != nil {
		c.transition(StateDisconnected)
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return fmt.Errorf("client: connect: %w", err)
	}
	for _, buf := range c.initial {
		if err := c.Send(buf); err != nil {
			c.logger.Warn("initial frame not sent", zap.Error(err))
		}
	}

	select {
	case <-ctx.Done():
		c.transition(StateDisconnected)
	case <-c.done:
	}
	return nil
}

// Dispose stops every task, closes the transport and releases a blocked
// Start. It is idempotent, safe before Start, and does not wait for sleeping
// tasks. It must not be called from a reconnect hook.
func (c *Client) Dispose() error {
	c.mu.Lock()
	if c.disposed {
		c.mu.Unlock()
		return nil
	}
	c.disposed = true
	close(c.done)
	c.mu.Unlock()

	c.state.Store(int32(StateDisposed))
	c.scheduler.Stop()
	c.inbox.close()

	err := c.transport.Close()
	c.logger.Info("client disposed")
	return err
}

// Wait blocks until the dispatch goroutine and every task goroutine have
// exited after Dispose.
func (c *Client) Wait() {
	c.wg.Wait()
	c.scheduler.Wait()
}

// consume is the single consumer of the inbox.
func (c *Client) consume() {
	defer c.wg.Done()

	for {
		msg, ok := c.inbox.pop()
		if !ok {
			return
		}
		// the outcome is informational only, dispatch already logged it
		_ = c.registry.Dispatch(msg, c)
	}
}

func (c *Client) reconnected(info network.ReconnectInfo) {
	c.transition(StateConnected)
	fields := []zap.Field{zap.Stringer("type", info.Type), zap.Int("attempt", info.Attempt)}
	if info.Err != nil {
		fields = append(fields, zap.NamedError("cause", info.Err))
	}
	c.logger.Info("connection established", fields...)

	c.mu.Lock()
	fn := c.onReconnect
	c.mu.Unlock()
	if fn != nil {
		fn(info)
	}
}

func (c *Client) disconnected(err error) {
	if err == nil {
		return
	}
	c.transition(StateReconnecting)
	c.logger.Warn("connection lost", zap.Error(err))
}

// transition moves to s unless the client is already disposed.
func (c *Client) transition(s State) {
	for {
		cur := c.state.Load()
		if State(cur) == StateDisposed {
			return
		}
		if c.state.CompareAndSwap(cur, int32(s)) {
			return
		}
	}
}
