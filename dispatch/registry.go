// Package dispatch routes inbound frames to handlers registered by (domain, opcode).
package dispatch

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/network"
	"github.com/Forevka/IrinaWebSocketClient/wire"
	"github.com/Forevka/IrinaWebSocketClient/xlog"
	"go.uber.org/zap"
)

const stackBufLen = 4096

var (
	// ErrUnknownDomain is returned by Register for a domain other than global or default.
	ErrUnknownDomain = errors.New("dispatch: unknown domain")
	ErrNilHandler    = errors.New("dispatch: nil handler")
	// ErrHandlerPanic wraps a recovered handler panic in a HandlerError.
	ErrHandlerPanic = errors.New("dispatch: handler panic")
)

type (
	// Handler decodes the payload of one frame. buf is positioned at the first
	// payload byte. The returned Result is collected but never acted upon by the
	// registry; an error or panic is reported and the next handler still runs.
	Handler func(buf *wire.Buffer, conn network.Sender) (Result, error)

	// Option configures a Registry.
	Option func(*Registry)

	// Registry is a two-level table domain -> opcode -> handlers.
	// Registration is a setup step: Register must not run concurrently with Dispatch.
	Registry struct {
		logger   *zap.Logger
		metrics  network.ClientMetrics
		handlers map[wire.Domain]map[wire.Opcode][]Handler
	}

	// HandlerError reports which handler of a fan-out list failed.
	HandlerError struct {
		Header wire.Header
		Index  int
		Err    error
	}
)

// WithLogger sets the logger used for frame diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithMetrics records dispatch outcomes and handler failures into m.
func WithMetrics(m network.ClientMetrics) Option {
	return func(r *Registry) {
		r.metrics = m
	}
}

// New returns an empty registry knowing the global and default domains.
func New(opts ...Option) *Registry {
	r := &Registry{
		handlers: map[wire.Domain]map[wire.Opcode][]Handler{
			wire.DomainGlobal:  {},
			wire.DomainDefault: {},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = xlog.Named("dispatch")
	}
	if r.metrics == nil {
		r.metrics = &network.NoopClientMetrics{}
	}
	return r
}

// Register appends h to the handlers of (domain, opcode). Registering the same
// key twice makes both handlers run, in registration order.
func (r *Registry) Register(domain wire.Domain, opcode wire.Opcode, h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	opcodes, ok := r.handlers[domain]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDomain, domain)
	}
	opcodes[opcode] = append(opcodes[opcode], h)
	return nil
}

// Count returns the number of handlers registered for (domain, opcode).
func (r *Registry) Count(domain wire.Domain, opcode wire.Opcode) int {
	return len(r.handlers[domain][opcode])
}

// Dispatch decodes the header of raw and runs every matching handler.
// It never fails: short frames are dropped, unknown keys are logged.
func (r *Registry) Dispatch(raw []byte, conn network.Sender) Outcome {
	start := time.Now()
	out := r.dispatch(raw, conn)

	r.metrics.IncDispatch(out.Kind.label())
	if out.Kind == OutcomeDispatched {
		r.metrics.ObserveDispatchDuration(time.Since(start))
	}
	return out
}

func (r *Registry) dispatch(raw []byte, conn network.Sender) Outcome {
	if len(raw) <= wire.HeaderSize {
		r.logger.Debug("frame too short, dropped", zap.Int("size", len(raw)))
		return Outcome{Kind: OutcomeDropped}
	}

	buf := wire.Wrap(raw, 1)
	h, err := buf.ReadHeader()
	if err != nil {
		// unreachable with len(raw) > HeaderSize
		return Outcome{Kind: OutcomeDropped}
	}

	opcodes, ok := r.handlers[h.Domain]
	if !ok {
		r.logger.Warn("unknown domain",
			zap.Uint8("domain", uint8(h.Domain)),
			zap.Uint8("opcode", uint8(h.Opcode)),
			zap.Int("size", len(raw)))
		return Outcome{Kind: OutcomeUnknownDomain, Header: h}
	}

	handlers := opcodes[h.Opcode]
	if len(handlers) == 0 {
		r.logger.Info("unhandled frame",
			zap.Stringer("domain", h.Domain),
			zap.Uint8("opcode", uint8(h.Opcode)),
			zap.Int("size", len(raw)))
		return Outcome{Kind: OutcomeUnhandled, Header: h}
	}

	out := Outcome{
		Kind:    OutcomeDispatched,
		Header:  h,
		Results: make([]Result, 0, len(handlers)),
	}
	payload := buf.Pos()
	for i, handler := range handlers {
		// every handler of a fan-out list reads the payload from its first byte
		_ = buf.SeekUnaligned(payload)

		res, err := r.invoke(handler, buf, conn)
		if err != nil {
			herr := &HandlerError{Header: h, Index: i, Err: err}
			r.metrics.IncHandlerFailures()
			r.logger.Error("handler failed", zap.Stringer("frame", h), zap.Int("index", i), zap.Error(err))
			out.Failures = append(out.Failures, herr)
			continue
		}
		r.logger.Debug("handler done", zap.Stringer("frame", h), zap.Int("index", i),
			zap.Bool("ok", res.OK), zap.Any("data", res.Data))
		out.Results = append(out.Results, res)
	}
	return out
}

func (r *Registry) invoke(h Handler, buf *wire.Buffer, conn network.Sender) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			stack := make([]byte, stackBufLen)
			l := runtime.Stack(stack, false)
			r.logger.Sugar().Errorf("handler panic %v: %s", p, stack[:l])
			err = fmt.Errorf("%w: %v", ErrHandlerPanic, p)
		}
	}()

	return h(buf, conn)
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("dispatch: handler %d for %s: %v", e.Index, e.Header, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
