package network

import (
	"context"
	"fmt"

	"github.com/Forevka/IrinaWebSocketClient/wire"
)

const (
	// ReconnectInitial is reported once the first connection is established.
	ReconnectInitial ReconnectType = iota
	// ReconnectLost is reported after the connection dropped and came back.
	ReconnectLost
	// ReconnectError is reported after a failed dial attempt was retried successfully.
	ReconnectError
	// ReconnectByUser is reported when the connection was re-established on request.
	ReconnectByUser
)

type (
	// ReconnectType tells why a connection was (re)established.
	ReconnectType uint8
	// ReconnectInfo is delivered to subscribers on every (re)connection.
	ReconnectInfo struct {
		Type ReconnectType
		// Attempt counts dial attempts since the previous live connection, starting at 1.
		Attempt int
		// Err is the last dial or read error seen before this connection, if any.
		Err error
	}

	// MessageFunc receives one complete inbound message.
	MessageFunc func(data []byte)
	// ReconnectFunc observes reconnection events.
	ReconnectFunc func(info ReconnectInfo)
	// DisconnectFunc observes the loss of a live connection. err is nil when
	// the connection was closed locally.
	DisconnectFunc func(err error)

	// Sender sends one outbound frame. Implementations must be safe for concurrent use.
	Sender interface {
		Send(buf *wire.Buffer) error
	}

	// Transport is the message-oriented connection underneath the protocol client.
	Transport interface {
		// Connect starts connecting in the background and returns once the
		// connection loop is running. The loop lives until ctx is done or Close.
		Connect(ctx context.Context) error
		// Write queues one message. It is safe for concurrent use and never
		// interleaves two messages.
		Write(data []byte) error
		// Subscribe installs the callbacks; any of them may be nil. It must be
		// called before Connect.
		Subscribe(onMessage MessageFunc, onReconnect ReconnectFunc, onDisconnect DisconnectFunc)
		// Close tears the connection down. It is idempotent.
		Close() error
	}
)

func (t ReconnectType) String() string {
	switch t {
	case ReconnectInitial:
		return "initial"
	case ReconnectLost:
		return "lost"
	case ReconnectError:
		return "error"
	case ReconnectByUser:
		return "by_user"
	default:
		return fmt.Sprintf("reconnect(%d)", uint8(t))
	}
}
