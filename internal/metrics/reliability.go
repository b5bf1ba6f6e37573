package metrics

import (
	"sync"

	"github.com/san-kum/ionize/internal/equilibrium"
)

// Reliability is the fraction of solves that converged. It is 1 before
// any solve is observed.
type Reliability struct {
	name      string
	mu        sync.Mutex
	converged int
	failures  int
}

func NewReliability() *Reliability {
	return &Reliability{name: "reliability"}
}

func (r *Reliability) Name() string { return r.name }

func (r *Reliability) OnIteration(equilibrium.Stage, int, float64, float64, float64) {}

func (r *Reliability) OnConverged(equilibrium.State) {
	r.mu.Lock()
	r.converged++
	r.mu.Unlock()
}

func (r *Reliability) OnFailure(error) {
	r.mu.Lock()
	r.failures++
	r.mu.Unlock()
}

func (r *Reliability) Value() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := r.converged + r.failures
	if total == 0 {
		return 1.0
	}
	return float64(r.converged) / float64(total)
}

func (r *Reliability) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converged = 0
	r.failures = 0
}
