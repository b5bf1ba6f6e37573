package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/ionize/internal/equilibrium"
)

const namespace = "ionize"

// Collector exports solver activity as Prometheus metrics. It is an
// equilibrium.Observer.
type Collector struct {
	iterations    *prometheus.CounterVec
	solves        prometheus.Counter
	failures      *prometheus.CounterVec
	ionicStrength prometheus.Histogram
	pH            prometheus.Histogram
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		iterations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "solver",
				Name:      "iterations_total",
				Help:      "Solver iterations by loop.",
			},
			[]string{"stage"},
		),
		solves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "solves_total",
			Help:      "Converged equilibrium solves.",
		}),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "solver",
				Name:      "failures_total",
				Help:      "Failed solves by loop; domain failures use stage \"domain\".",
			},
			[]string{"stage"},
		),
		ionicStrength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "ionic_strength_molar",
			Help:      "Ionic strength of converged solutions in mol/L.",
			Buckets:   prometheus.ExponentialBuckets(1e-7, 10, 9),
		}),
		pH: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "solver",
			Name:      "ph",
			Help:      "pH of converged solutions.",
			Buckets:   prometheus.LinearBuckets(0, 1, 15),
		}),
	}
	for _, m := range []prometheus.Collector{c.iterations, c.solves, c.failures, c.ionicStrength, c.pH} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) OnIteration(stage equilibrium.Stage, _ int, _, _, _ float64) {
	c.iterations.WithLabelValues(string(stage)).Inc()
}

func (c *Collector) OnConverged(state equilibrium.State) {
	c.solves.Inc()
	c.ionicStrength.Observe(state.IonicStrength)
	c.pH.Observe(state.PH)
}

func (c *Collector) OnFailure(err error) {
	stage := "domain"
	var ce *equilibrium.ConvergenceError
	if errors.As(err, &ce) {
		stage = string(ce.Stage)
	}
	c.failures.WithLabelValues(stage).Inc()
}
