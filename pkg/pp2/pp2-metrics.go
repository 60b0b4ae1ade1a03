// Copyright (c) 2023 Seagate Technology LLC and/or its Affiliates

// This file implements the controller metrics
package pp2

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics : attach and memory counters of the controllers sharing a memory domain.
// A nil *Metrics records nothing.
type Metrics struct {
	AttachTotal        *prometheus.CounterVec
	AttachStepFailures *prometheus.CounterVec
	DetachTotal        prometheus.Counter
	MemBytes           prometheus.GaugeFunc

	// Mem is the domain MemBytes reports on.
	Mem *MemType
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
// A nil mem gets a "pp2" domain of its own, which controllers configured
// with these metrics and no Mem of their own allocate from.
func NewMetrics(reg prometheus.Registerer, mem *MemType) *Metrics {
	if mem == nil {
		mem = NewMemType("pp2", 0)
	}
	m := &Metrics{
		Mem: mem,
		AttachTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pp2_attach_total",
				Help: "Number of controller attach attempts by result",
			},
			[]string{"result"},
		),
		AttachStepFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pp2_attach_step_failures_total",
				Help: "Number of failed attach attempts by the step that failed",
			},
			[]string{"step"},
		),
		DetachTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pp2_detach_total",
				Help: "Number of controller detach calls",
			},
		),
		MemBytes: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name:        "pp2_mem_in_use_bytes",
				Help:        "Bytes of control structures allocated from the memory domain",
				ConstLabels: prometheus.Labels{"type": mem.Name},
			},
			func() float64 { return float64(mem.InUse()) },
		),
	}
	if reg != nil {
		reg.MustRegister(m.AttachTotal, m.AttachStepFailures, m.DetachTotal, m.MemBytes)
	}
	return m
}

func (m *Metrics) observeAttach(step Step, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.AttachTotal.WithLabelValues("failure").Inc()
		m.AttachStepFailures.WithLabelValues(step.String()).Inc()
		return
	}
	m.AttachTotal.WithLabelValues("success").Inc()
}

func (m *Metrics) observeDetach() {
	if m == nil {
		return
	}
	m.DetachTotal.Inc()
}
