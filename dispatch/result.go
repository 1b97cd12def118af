package dispatch

import (
	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/Forevka/IrinaWebSocketClient/wire"
)

const (
	// OutcomeDropped: the frame was too short to carry a header.
	OutcomeDropped OutcomeKind = iota
	// OutcomeDispatched: at least one handler was invoked.
	OutcomeDispatched
	// OutcomeUnhandled: the domain is known but no handler is registered for the opcode.
	OutcomeUnhandled
	// OutcomeUnknownDomain: the first header byte is not a routing domain.
	OutcomeUnknownDomain
)

type (
	// Result is what a handler reports about the frame it processed.
	Result struct {
		OK   bool
		Data map[string]any
	}

	OutcomeKind uint8

	// Outcome describes what happened to one inbound frame.
	// Results holds the results of the handlers that returned without error,
	// in registration order; Failures holds *HandlerError values.
	Outcome struct {
		Kind     OutcomeKind
		Header   wire.Header
		Results  []Result
		Failures []error
	}
)

// OK returns a successful result carrying data.
func OK(data map[string]any) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{OK: true, Data: data}
}

// Fail returns an unsuccessful result carrying data.
func Fail(data map[string]any) Result {
	if data == nil {
		data = map[string]any{}
	}
	return Result{Data: data}
}

func (k OutcomeKind) String() string {
	return k.label()
}

func (k OutcomeKind) label() string {
	switch k {
	case OutcomeDropped:
		return network.OutcomeDropped
	case OutcomeDispatched:
		return network.OutcomeDispatched
	case OutcomeUnhandled:
		return network.OutcomeUnhandled
	case OutcomeUnknownDomain:
		return network.OutcomeUnknownDomain
	default:
		return "unknown"
	}
}
