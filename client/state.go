package client

import "fmt"

// State is the lifecycle state of a Client.
//
//	Disconnected -> Connecting -> Connected <-> Reconnecting
//	      any state -> Disposed
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}
