// Package metrics exposes Prometheus counters for button creation and presses.
// A nil *Metrics is valid and records nothing.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "picobuttons"

type Metrics struct {
	ButtonsCreated prometheus.Counter
	ButtonFailures *prometheus.CounterVec
	Presses        *prometheus.CounterVec
}

// New creates the counters and registers them with reg when it is non-nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ButtonsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "buttons_created_total",
			Help:      "Buttons injected into messages.",
		}),
		ButtonFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "button_failures_total",
			Help:      "Button creations abandoned, by failure kind.",
		}, []string{"kind"}),
		Presses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "presses_total",
			Help:      "Button presses by dispatch result.",
		}, []string{"result"}),
	}
	if reg != nil {
		reg.MustRegister(m.ButtonsCreated, m.ButtonFailures, m.Presses)
	}
	return m
}

func (m *Metrics) Created() {
	if m == nil {
		return
	}
	m.ButtonsCreated.Inc()
}

func (m *Metrics) Failed(kind string) {
	if m == nil {
		return
	}
	m.ButtonFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) Pressed(result string) {
	if m == nil {
		return
	}
	m.Presses.WithLabelValues(result).Inc()
}
