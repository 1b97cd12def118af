package metrics

import (
	prom "github.com/prometheus/client_golang/prometheus"
)

type promCounter struct {
	reg     prom.Registerer
	counter *prom.CounterVec
}

var _ Counter = (*promCounter)(nil)

func NewCounter(conf *VectorOption) Counter {
	if conf == nil {
		return nil
	}
	reg := registerer(conf.Registerer)
	vec := register(reg, prom.NewCounterVec(prom.CounterOpts{
		Namespace: conf.Namespace,
		Subsystem: conf.Subsystem,
		Name:      conf.Name,
		Help:      conf.Help,
	}, conf.Labels))
	return &promCounter{
		reg:     reg,
		counter: vec,
	}
}

// Add implements Counter.
func (p *promCounter) Add(delta float64, labels ...string) {
	update(func() {
		p.counter.WithLabelValues(labels...).Add(delta)
	})
}

// Close implements Counter.
func (p *promCounter) Close() error {
	return unregister(p.reg, p.counter)
}

// Inc implements Counter.
func (p *promCounter) Inc(labels ...string) {
	update(func() {
		p.counter.WithLabelValues(labels...).Inc()
	})
}
