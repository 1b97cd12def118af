package ws

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	// ErrConnClosed is returned when the connection is closed.
	ErrConnClosed      = errors.New("connection closed")
	ErrMessageTooLong  = errors.New("message too long")
	ErrMessageTooShort = errors.New("message too short")
)

const closeGracePeriod = time.Second

// WsConn is one live websocket connection. Outbound messages are taken from a
// queue shared with the owning Client and written by a single goroutine, so
// concurrent senders never interleave frames.
type WsConn struct {
	mu        sync.Mutex
	wg        sync.WaitGroup
	conn      *websocket.Conn
	logger    *zap.Logger
	metrics   network.ClientMetrics
	closing   chan struct{}
	closeFlag bool
}

func newConn(conn *websocket.Conn, queue <-chan []byte, logger *zap.Logger, metrics network.ClientMetrics) *WsConn {
	w := &WsConn{
		conn:    conn,
		logger:  logger,
		metrics: metrics,
		closing: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.writer(queue)

	return w
}

func (w *WsConn) writer(queue <-chan []byte) {
	defer w.wg.Done()

	for {
		select {
		case <-w.closing:
			return
		case msg := <-queue:
			if err := w.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				w.metrics.IncWriteErrors()
				w.logger.Error("ws conn write error", zap.Error(err), zap.Int("size", len(msg)))
				w.Close()
				return
			}
			w.metrics.IncSentFrames()
			w.metrics.AddSentBytes(len(msg))
		}
	}
}

// ReadMessage blocks until the next binary message. Text messages are skipped.
func (w *WsConn) ReadMessage() ([]byte, error) {
	for {
		kind, b, err := w.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if kind == websocket.BinaryMessage {
			return b, nil
		}
		w.logger.Debug("ws conn skipped non-binary message", zap.Int("type", kind), zap.Int("size", len(b)))
	}
}

// Close sends a close frame and closes the socket. It is idempotent.
func (w *WsConn) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFlag {
		return
	}
	w.closeFlag = true
	close(w.closing)

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	_ = w.conn.Close()
}

// wait blocks until the writer goroutine has exited.
func (w *WsConn) wait() {
	w.wg.Wait()
}

// LocalAddr returns the local network address.
func (w *WsConn) LocalAddr() net.Addr {
	return w.conn.LocalAddr()
}

// RemoteAddr returns the remote network address.
func (w *WsConn) RemoteAddr() net.Addr {
	return w.conn.RemoteAddr()
}
