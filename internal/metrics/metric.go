// Package metrics turns equilibrium solver events into numbers: in-process
// Metrics for reports and a Prometheus Collector for long-running use.
package metrics

import (
	"sort"

	"github.com/san-kum/ionize/internal/equilibrium"
)

// Metric is a solver Observer that reduces what it sees to one value.
type Metric interface {
	equilibrium.Observer
	Name() string
	Value() float64
	Reset()
}

// Standard returns a fresh instance of every built-in Metric.
func Standard() []Metric {
	return []Metric{NewIterations(), NewBisections(), NewTitrationSteps(), NewReliability()}
}

// Attach adds every metric to s as an observer.
func Attach(s *equilibrium.Solver, metrics ...Metric) {
	for _, m := range metrics {
		s.AddObserver(m)
	}
}

// Values collects the metrics by name.
func Values(metrics ...Metric) map[string]float64 {
	out := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// Names returns the keys of values in sorted order.
func Names(values map[string]float64) []string {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
