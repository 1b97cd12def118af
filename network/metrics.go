package network

import "time"

// Dispatch outcome labels.
const (
	OutcomeDispatched    = "dispatched"
	OutcomeDropped       = "dropped"
	OutcomeUnhandled     = "unhandled"
	OutcomeUnknownDomain = "unknown_domain"
)

// ClientMetrics defines the interface for protocol client metrics tracking.
type ClientMetrics interface {
	// Connection metrics
	// Increment the count of live connections
	IncConns()
	// Decrement the count of live connections
	DecConns()
	// Increment the count of reconnections by reconnect type
	IncReconnects(kind string)

	// Data transfer metrics
	AddSentBytes(bytes int)
	AddReceivedBytes(bytes int)
	IncSentFrames()
	IncReceivedFrames()

	// Error metrics
	IncReadErrors()
	IncWriteErrors()

	// Dispatch metrics
	// Increment the count of inbound frames by outcome label
	IncDispatch(outcome string)
	IncHandlerFailures()
	ObserveDispatchDuration(duration time.Duration)

	// Scheduled task metrics
	IncTaskRuns()
	IncTaskFailures()

	// Shutdown the metrics tracking system
	Close() error
}

type NoopClientMetrics struct{}

func (n *NoopClientMetrics) IncConns()                               {}
func (n *NoopClientMetrics) DecConns()                               {}
func (n *NoopClientMetrics) IncReconnects(kind string)               {}
func (n *NoopClientMetrics) AddSentBytes(bytes int)                  {}
func (n *NoopClientMetrics) AddReceivedBytes(bytes int)              {}
func (n *NoopClientMetrics) IncSentFrames()                          {}
func (n *NoopClientMetrics) IncReceivedFrames()                      {}
func (n *NoopClientMetrics) IncReadErrors()                          {}
func (n *NoopClientMetrics) IncWriteErrors()                         {}
func (n *NoopClientMetrics) IncDispatch(outcome string)              {}
func (n *NoopClientMetrics) IncHandlerFailures()                     {}
func (n *NoopClientMetrics) ObserveDispatchDuration(d time.Duration) {}
func (n *NoopClientMetrics) IncTaskRuns()                            {}
func (n *NoopClientMetrics) IncTaskFailures()                        {}
func (n *NoopClientMetrics) Close() error                            { return nil }

var _ ClientMetrics = (*NoopClientMetrics)(nil)
