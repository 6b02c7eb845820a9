// Package metrics accumulates per-run statistics from experiment steps.
package metrics

import "github.com/san-kum/phsim/internal/experiment"

type Metric interface {
	Name() string
	Observe(s experiment.Step)
	Value() float64
	Reset()
}

func Defaults() []Metric {
	return []Metric{NewChurn(), NewFidelity(), NewPHSwing()}
}

// Observer feeds every step to each metric.
func Observer(ms []Metric) experiment.Observer {
	return experiment.ObserverFunc(func(s experiment.Step) {
		for _, m := range ms {
			m.Observe(s)
		}
	})
}

// Values collects the current values keyed by metric name.
func Values(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
