package metrics

import (
	"errors"
	"time"

	"github.com/Forevka/IrinaWebSocketClient/metrics"
	"github.com/Forevka/IrinaWebSocketClient/network"
	prom "github.com/prometheus/client_golang/prometheus"
)

type (
	// ClientMetrics holds the protocol client metrics: connection state,
	// traffic, dispatch outcomes and scheduled task health.
	ClientMetrics struct {
		// connection metrics
		activeConns metrics.Gauge
		reconnects  metrics.Counter

		// traffic metrics
		receivedBytes  metrics.Counter
		sentBytes      metrics.Counter
		receivedFrames metrics.Counter
		sentFrames     metrics.Counter

		// dispatch metrics
		dispatched       metrics.Counter
		handlerFailures  metrics.Counter
		dispatchDuration metrics.Histogram

		// task metrics
		taskRuns metrics.Counter

		// error metrics
		errorsTotal metrics.Counter

		all []metrics.Metrics
	}
	// ClientMetricsConf defines the configuration for client metrics
	ClientMetricsConf struct {
		Namespace string
		Subsystem string
		// Registerer defaults to the process-wide prometheus registry.
		Registerer prom.Registerer
	}
)

var _ network.ClientMetrics = (*ClientMetrics)(nil)

// NewClientMetrics registers the client metric vectors.
func NewClientMetrics(conf ClientMetricsConf) *ClientMetrics {
	opt := func(name, help string, labels ...string) *metrics.VectorOption {
		return &metrics.VectorOption{
			Namespace:  conf.Namespace,
			Subsystem:  conf.Subsystem,
			Name:       name,
			Help:       help,
			Labels:     labels,
			Registerer: conf.Registerer,
		}
	}

	m := &ClientMetrics{
		activeConns:     metrics.NewGauge(opt("active_connections", "current number of live connections")),
		reconnects:      metrics.NewCounter(opt("reconnects_total", "connections established by reconnect type", "type")),
		receivedBytes:   metrics.NewCounter(opt("received_bytes_total", "total bytes received")),
		sentBytes:       metrics.NewCounter(opt("sent_bytes_total", "total bytes sent")),
		receivedFrames:  metrics.NewCounter(opt("received_frames_total", "total frames received")),
		sentFrames:      metrics.NewCounter(opt("sent_frames_total", "total frames sent")),
		dispatched:      metrics.NewCounter(opt("frames_dispatched_total", "inbound frames by dispatch outcome", "outcome")),
		handlerFailures: metrics.NewCounter(opt("handler_failures_total", "handler invocations that returned an error or panicked")),
		dispatchDuration: metrics.NewHistogram(&metrics.HistogramVecOpts{
			VectorOption: *opt("dispatch_duration_seconds", "time spent running the handlers of one frame"),
			Buckets:      []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		}),
		taskRuns:    metrics.NewCounter(opt("task_runs_total", "scheduled task invocations")),
		errorsTotal: metrics.NewCounter(opt("errors_total", "errors by type", "type")), // read/write/task
	}
	m.all = []metrics.Metrics{
		m.activeConns, m.reconnects, m.receivedBytes, m.sentBytes, m.receivedFrames,
		m.sentFrames, m.dispatched, m.handlerFailures, m.dispatchDuration, m.taskRuns, m.errorsTotal,
	}
	return m
}

// IncConns implements network.ClientMetrics.
func (c *ClientMetrics) IncConns() {
	c.activeConns.Inc()
}

// DecConns implements network.ClientMetrics.
func (c *ClientMetrics) DecConns() {
	c.activeConns.Dec()
}

// IncReconnects implements network.ClientMetrics.
func (c *ClientMetrics) IncReconnects(kind string) {
	c.reconnects.Inc(kind)
}

// AddReceivedBytes implements network.ClientMetrics.
func (c *ClientMetrics) AddReceivedBytes(bytes int) {
	c.receivedBytes.Add(float64(bytes))
}

// AddSentBytes implements network.ClientMetrics.
func (c *ClientMetrics) AddSentBytes(bytes int) {
	c.sentBytes.Add(float64(bytes))
}

// IncReceivedFrames implements network.ClientMetrics.
func (c *ClientMetrics) IncReceivedFrames() {
	c.receivedFrames.Inc()
}

// IncSentFrames implements network.ClientMetrics.
func (c *ClientMetrics) IncSentFrames() {
	c.sentFrames.Inc()
}

// IncReadErrors implements network.ClientMetrics.
func (c *ClientMetrics) IncReadErrors() {
	c.errorsTotal.Inc("read")
}

// IncWriteErrors implements network.ClientMetrics.
func (c *ClientMetrics) IncWriteErrors() {
	c.errorsTotal.Inc("write")
}

// IncDispatch implements network.ClientMetrics.
func (c *ClientMetrics) IncDispatch(outcome string) {
	c.dispatched.Inc(outcome)
}

// IncHandlerFailures implements network.ClientMetrics.
func (c *ClientMetrics) IncHandlerFailures() {
	c.handlerFailures.Inc()
}

// ObserveDispatchDuration implements network.ClientMetrics.
func (c *ClientMetrics) ObserveDispatchDuration(duration time.Duration) {
	c.dispatchDuration.Observe(duration.Seconds())
}

// IncTaskRuns implements network.ClientMetrics.
func (c *ClientMetrics) IncTaskRuns() {
	c.taskRuns.Inc()
}

// IncTaskFailures implements network.ClientMetrics.
func (c *ClientMetrics) IncTaskFailures() {
	c.errorsTotal.Inc("task")
}

// Close implements network.ClientMetrics.
func (c *ClientMetrics) Close() error {
	var errs []error
	for _, m := range c.all {
		if err := m.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
