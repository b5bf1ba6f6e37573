package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/san-kum/ionize/internal/database"
	"github.com/san-kum/ionize/internal/equilibrium"
)

func buffer() []equilibrium.Species {
	db := database.Default()
	return []equilibrium.Species{
		{Ion: db.Get("tris"), Concentration: 0.05},
		{Ion: db.Get("acetic acid"), Concentration: 0.025},
	}
}

func TestStandardMetrics(t *testing.T) {
	s := equilibrium.Default()
	ms := Standard()
	Attach(s, ms...)

	state, err := s.Solve(buffer(), 25)
	if err != nil {
		t.Fatal(err)
	}

	values := Values(ms...)
	if len(values) != 4 {
		t.Fatalf("expected 4 metrics, got %d", len(values))
	}
	if values["ionic_strength_iterations"] != float64(state.Iterations) {
		t.Errorf("expected %d iterations, got %f", state.Iterations, values["ionic_strength_iterations"])
	}
	if values["ph_bisections"] != float64(state.PHIterations) {
		t.Errorf("expected %d bisections, got %f", state.PHIterations, values["ph_bisections"])
	}
	if values["titration_steps"] != 0 {
		t.Errorf("expected no titration steps, got %f", values["titration_steps"])
	}
	if values["reliability"] != 1 {
		t.Errorf("expected reliability 1, got %f", values["reliability"])
	}

	names := Names(values)
	if names[0] != "ionic_strength_iterations" || names[3] != "titration_steps" {
		t.Errorf("unexpected order %v", names)
	}
}

func TestTitrationSteps(t *testing.T) {
	s := equilibrium.Default()
	steps := NewTitrationSteps()
	s.AddObserver(steps)

	db := database.Default()
	species := []equilibrium.Species{{Ion: db.Get("tris"), Concentration: 0.05}}
	if _, _, err := s.Titrate(species, db.Get("hydrochloric acid"), 8.0, 25); err != nil {
		t.Fatal(err)
	}
	if steps.Value() < 2 {
		t.Errorf("expected several titration steps, got %f", steps.Value())
	}

	steps.Reset()
	if steps.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", steps.Value())
	}
}

func TestReliability(t *testing.T) {
	r := NewReliability()
	if r.Value() != 1 {
		t.Errorf("expected 1 before any solve, got %f", r.Value())
	}

	cfg := equilibrium.DefaultConfig()
	cfg.MaxIonicStrengthIterations = 1
	starved := equilibrium.New(cfg, nil)
	starved.AddObserver(r)

	healthy := equilibrium.Default()
	healthy.AddObserver(r)

	if _, err := healthy.Solve(buffer(), 25); err != nil {
		t.Fatal(err)
	}
	if _, err := starved.Solve(buffer(), 25); err == nil {
		t.Fatal("expected convergence failure with one iteration")
	}
	if r.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", r.Value())
	}

	r.Reset()
	if r.Value() != 1 {
		t.Errorf("expected 1 after reset, got %f", r.Value())
	}
}

func TestIterationsReset(t *testing.T) {
	m := NewIterations()
	m.OnConverged(equilibrium.State{Iterations: 3})
	m.OnConverged(equilibrium.State{Iterations: 5})
	if m.Value() != 4 {
		t.Errorf("expected mean 4, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func family(t *testing.T, reg *prometheus.Registry, name string) *dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func counterByLabel(f *dto.MetricFamily, value string) float64 {
	for _, m := range f.GetMetric() {
		for _, l := range m.GetLabel() {
			if l.GetValue() == value {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatal(err)
	}

	s := equilibrium.Default()
	s.AddObserver(c)
	state, err := s.Solve(buffer(), 25)
	if err != nil {
		t.Fatal(err)
	}

	iterations := family(t, reg, "ionize_solver_iterations_total")
	if got := counterByLabel(iterations, "ionic_strength"); got != float64(state.Iterations) {
		t.Errorf("expected %d outer iterations, got %f", state.Iterations, got)
	}
	if got := counterByLabel(iterations, "charge"); got != float64(state.PHIterations) {
		t.Errorf("expected %d bisections, got %f", state.PHIterations, got)
	}

	solves := family(t, reg, "ionize_solver_solves_total")
	if got := solves.GetMetric()[0].GetCounter().GetValue(); got != 1 {
		t.Errorf("expected 1 solve, got %f", got)
	}

	hist := family(t, reg, "ionize_solver_ph")
	if got := hist.GetMetric()[0].GetHistogram().GetSampleCount(); got != 1 {
		t.Errorf("expected 1 pH sample, got %d", got)
	}

	cfg := equilibrium.DefaultConfig()
	cfg.MaxIonicStrengthIterations = 1
	starved := equilibrium.New(cfg, nil)
	starved.AddObserver(c)
	if _, err := starved.Solve(buffer(), 25); err == nil {
		t.Fatal("expected convergence failure")
	}
	failures := family(t, reg, "ionize_solver_failures_total")
	if got := counterByLabel(failures, "ionic_strength"); got != 1 {
		t.Errorf("expected 1 ionic strength failure, got %f", got)
	}
}

func TestCollectorDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewCollector(reg); err != nil {
		t.Fatal(err)
	}
	if _, err := NewCollector(reg); err == nil {
		t.Error("expected error registering twice")
	}
}
