package metrics

import (
	"errors"

	"github.com/Forevka/IrinaWebSocketClient/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

var ErrUnregister = errors.New("metrics: failed to unregister collector")

type (
	// VectorOption defines options for creating metric vectors.
	VectorOption struct {
		Namespace string
		Subsystem string
		Name      string
		Help      string
		Labels    []string
		// Registerer defaults to the process-wide prometheus registry.
		Registerer prom.Registerer
	}
	// Metrics defines the interface for metrics collection and reporting.
	Metrics interface {
		// Close unregisters the metric.
		Close() error
	}
	// Counter defines the interface for a counter metric.
	Counter interface {
		Metrics
		Inc(labels ...string)
		Add(delta float64, labels ...string)
	}
	// Gauge defines the interface for a gauge metric.
	Gauge interface {
		Metrics
		Set(value float64, labels ...string)
		Inc(labels ...string)
		Dec(labels ...string)
		Add(delta float64, labels ...string)
		Sub(delta float64, labels ...string)
	}
	// Histogram defines the interface for a histogram metric.
	Histogram interface {
		Metrics
		Observe(value float64, labels ...string)
	}
)

func update(fn func()) {
	if !prometheus.Enabled() {
		return
	}
	fn()
}

func registerer(r prom.Registerer) prom.Registerer {
	if r == nil {
		return prom.DefaultRegisterer
	}
	return r
}

// register registers c, returning the collector already registered under the
// same descriptor when there is one.
func register[T prom.Collector](r prom.Registerer, c T) T {
	if err := r.Register(c); err != nil {
		var are prom.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func unregister(r prom.Registerer, c prom.Collector) error {
	if r.Unregister(c) {
		return nil
	}
	return ErrUnregister
}
