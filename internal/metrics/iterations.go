package metrics

import (
	"sync"

	"github.com/san-kum/ionize/internal/equilibrium"
)

// Iterations is the mean number of ionic-strength iterations per
// converged solve.
type Iterations struct {
	name    string
	mu      sync.Mutex
	total   int
	samples int
}

func NewIterations() *Iterations {
	return &Iterations{name: "ionic_strength_iterations"}
}

func (m *Iterations) Name() string { return m.name }

func (m *Iterations) OnIteration(equilibrium.Stage, int, float64, float64, float64) {}
func (m *Iterations) OnFailure(error)                                              {}

func (m *Iterations) OnConverged(state equilibrium.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total += state.Iterations
	m.samples++
}

func (m *Iterations) Value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *Iterations) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = 0
	m.samples = 0
}

// Bisections is the mean number of pH bisection steps per converged solve,
// summed over all ionic-strength iterations.
type Bisections struct {
	name    string
	mu      sync.Mutex
	total   int
	samples int
}

func NewBisections() *Bisections {
	return &Bisections{name: "ph_bisections"}
}

func (m *Bisections) Name() string { return m.name }

func (m *Bisections) OnIteration(equilibrium.Stage, int, float64, float64, float64) {}
func (m *Bisections) OnFailure(error)                                              {}

func (m *Bisections) OnConverged(state equilibrium.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total += state.PHIterations
	m.samples++
}

func (m *Bisections) Value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.samples == 0 {
		return 0
	}
	return float64(m.total) / float64(m.samples)
}

func (m *Bisections) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = 0
	m.samples = 0
}

// TitrationSteps counts titrant trials, bracketing and bisection alike.
type TitrationSteps struct {
	name  string
	mu    sync.Mutex
	steps int
}

func NewTitrationSteps() *TitrationSteps {
	return &TitrationSteps{name: "titration_steps"}
}

func (m *TitrationSteps) Name() string { return m.name }

func (m *TitrationSteps) OnIteration(stage equilibrium.Stage, _ int, _, _, _ float64) {
	if stage != equilibrium.StageTitration {
		return
	}
	m.mu.Lock()
	m.steps++
	m.mu.Unlock()
}

func (m *TitrationSteps) OnConverged(equilibrium.State) {}
func (m *TitrationSteps) OnFailure(error)               {}

func (m *TitrationSteps) Value() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return float64(m.steps)
}

func (m *TitrationSteps) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = 0
}
