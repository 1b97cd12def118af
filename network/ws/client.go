package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultAddr is the public IrinaBot lobby endpoint.
const DefaultAddr = "wss://irinabot.ru/ghost/"

var ErrAlreadyConnected = errors.New("ws client already connected")

type (
	ClientConf struct {
		Addr string `json:",default=wss://irinabot.ru/ghost/"`
		// HandshakeTimeout bounds the websocket upgrade.
		HandshakeTimeout time.Duration `json:",default=10s"`
		// ReconnectTimeout bounds a single dial attempt, handshake included.
		ReconnectTimeout time.Duration `json:",default=30s"`
		// ConnInterval is the first delay between dial attempts; it grows up to MaxConnInterval.
		ConnInterval    time.Duration `json:",default=1s"`
		MaxConnInterval time.Duration `json:",default=30s"`
		// DisableReconnect stops the client after the first connection drops.
		DisableReconnect bool `json:",optional"`
		MaxMsgSize       int  `json:",default=1048576"`
		PendingWriteNum  int  `json:",default=4096"`
	}

	Option func(*Client)

	// Client keeps one websocket connection alive and implements network.Transport.
	Client struct {
		mu          sync.Mutex
		wg          sync.WaitGroup
		conf        ClientConf
		dialer      websocket.Dialer
		logger      *zap.Logger
		metrics     network.ClientMetrics
		onMessage   network.MessageFunc
		onReconnect network.ReconnectFunc
		onClose     network.DisconnectFunc
		writeChan   chan []byte
		closed      chan struct{}
		cancel      context.CancelFunc
		conn        *WsConn
		started     bool
		done        bool
	}
)

var _ network.Transport = (*Client)(nil)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithMetrics(m network.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func NewClient(conf ClientConf, opts ...Option) *Client {
	defaultClientConf(&conf)

	c := &Client{
		conf:      conf,
		writeChan: make(chan []byte, conf.PendingWriteNum),
		closed:    make(chan struct{}),
		dialer: websocket.Dialer{
			HandshakeTimeout: conf.HandshakeTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = xlog.Named("ws")
	}
	if c.metrics == nil {
		c.metrics = &network.NoopClientMetrics{}
	}
	return c
}

// Subscribe implements network.Transport.
func (c *Client) Subscribe(onMessage network.MessageFunc, onReconnect network.ReconnectFunc, onDisconnect network.DisconnectFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.onMessage = onMessage
	c.onReconnect = onReconnect
	c.onClose = onDisconnect
}

// Connect implements network.Transport. The connection loop runs in the
// background until ctx is done or Close is called.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.done {
		return ErrConnClosed
	}
	if c.started {
		return ErrAlreadyConnected
	}
	c.started = true

	ctx, c.cancel = context.WithCancel(ctx)
	c.wg.Add(1)
	go c.connect(ctx)

	return nil
}

// connect dials, serves the connection until it drops, and redials with
// exponential backoff unless DisableReconnect is set.
func (c *Client) connect(ctx context.Context) {
	defer c.wg.Done()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.conf.ConnInterval
	bo.MaxInterval = c.conf.MaxConnInterval
	bo.MaxElapsedTime = 0
	bo.Reset()

	kind := network.ReconnectInitial
	attempt := 0
	var lastErr error

	for {
		attempt++
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			lastErr = err
			if kind == network.ReconnectInitial {
				kind = network.ReconnectError
			}
			c.logger.Sugar().Infof("connect to %v error (attempt %d): %v", c.conf.Addr, attempt, err)
			if !c.sleep(ctx, bo.NextBackOff()) {
				return
			}
			continue
		}

		bo.Reset()
		info := network.ReconnectInfo{Type: kind, Attempt: attempt, Err: lastErr}
		err = c.serve(ctx, conn, info)
		if ctx.Err() != nil {
			return
		}
		if c.conf.DisableReconnect {
			c.logger.Info("connection closed, auto reconnect disabled", zap.Error(err))
			return
		}

		kind, attempt, lastErr = network.ReconnectLost, 0, err
		c.logger.Warn("connection lost, reconnecting", zap.Error(err))
		if !c.sleep(ctx, bo.NextBackOff()) {
			return
		}
	}
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dctx, cancel := context.WithTimeout(ctx, c.conf.ReconnectTimeout)
	defer cancel()

	conn, _, err := c.dialer.DialContext(dctx, c.conf.Addr, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(int64(c.conf.MaxMsgSize))
	return conn, nil
}

// serve runs the read loop of one live connection and returns the error that ended it.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn, info network.ReconnectInfo) error {
	wsconn := newConn(conn, c.writeChan, c.logger, c.metrics)

	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		wsconn.Close()
		wsconn.wait()
		return ErrConnClosed
	}
	c.conn = wsconn
	onMessage, onReconnect, onClose := c.onMessage, c.onReconnect, c.onClose
	c.mu.Unlock()

	c.metrics.IncConns()
	c.metrics.IncReconnects(info.Type.String())
	c.logger.Info("connected", zap.String("addr", c.conf.Addr), zap.Stringer("type", info.Type), zap.Int("attempt", info.Attempt))
	if onReconnect != nil {
		onReconnect(info)
	}

	stop := context.AfterFunc(ctx, wsconn.Close)
	defer stop()

	var err error
	for {
		var data []byte
		data, err = wsconn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.metrics.IncReadErrors()
			}
			break
		}
		c.metrics.IncReceivedFrames()
		c.metrics.AddReceivedBytes(len(data))
		if onMessage != nil {
			onMessage(data)
		}
	}

	wsconn.Close()
	wsconn.wait()

	c.mu.Lock()
	c.conn = nil
	c.mu.Unlock()
	c.metrics.DecConns()

	if ctx.Err() != nil {
		err = nil
	}
	if onClose != nil {
		onClose(err)
	}
	return err
}

func (c *Client) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// Write implements network.Transport. data is copied and queued; the call
// blocks while the queue is full. Messages written before the first connection
// is up are sent once it is.
func (c *Client) Write(data []byte) error {
	if len(data) < 1 {
		return ErrMessageTooShort
	}
	if len(data) > c.conf.MaxMsgSize {
		return ErrMessageTooLong
	}

	msg := make([]byte, len(data))
	copy(msg, data)

	select {
	case <-c.closed:
		return ErrConnClosed
	default:
	}

	select {
	case c.writeChan <- msg:
		return nil
	case <-c.closed:
		return ErrConnClosed
	}
}

// Close implements network.Transport. It waits for the connection loop to exit.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.done {
		c.mu.Unlock()
		return nil
	}
	c.done = true
	close(c.closed)
	if c.cancel != nil {
		c.cancel()
	}
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	c.wg.Wait()

	return nil
}

func defaultClientConf(conf *ClientConf) {
	if conf.Addr == "" {
		conf.Addr = DefaultAddr
	}
	if conf.ConnInterval <= 0 {
		conf.ConnInterval = time.Second
	}
	if conf.MaxConnInterval < conf.ConnInterval {
		conf.MaxConnInterval = max(30*time.Second, conf.ConnInterval)
	}
	if conf.MaxMsgSize <= 0 {
		conf.MaxMsgSize = 1024 * 1024 // 1MB
	}
	if conf.PendingWriteNum <= 0 {
		conf.PendingWriteNum = 4096
	}
	if conf.HandshakeTimeout <= 0 {
		conf.HandshakeTimeout = 10 * time.Second
	}
	if conf.ReconnectTimeout <= 0 {
		conf.ReconnectTimeout = 30 * time.Second
	}
}
