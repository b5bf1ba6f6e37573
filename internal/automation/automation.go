// Package automation runs scripted sequences of buffer preparations and
// Monte Carlo tolerance studies on top of the config and analysis layers.
package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/san-kum/ionize/internal/analysis"
	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/config"
	"github.com/san-kum/ionize/internal/solution"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted list of buffers to prepare.
type Scenario struct {
	Name        string `yaml:"name" validate:"required"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps" validate:"required,min=1,dive"`
}

// Step is one buffer. A preset, when named, is the starting point and the
// other fields override it.
type Step struct {
	Name        string                  `yaml:"name" validate:"required"`
	Preset      string                  `yaml:"preset"`
	Buffer      config.BufferConfig     `yaml:"buffer"`
	Temperature *float64                `yaml:"temperature" validate:"omitempty,gte=0,lte=100"`
	Titration   *config.TitrationConfig `yaml:"titration"`
	CO2         float64                 `yaml:"co2" validate:"gte=0"`
	Curve       *CurveStep              `yaml:"curve"`
}

// CurveStep adds a titration curve to a step.
type CurveStep struct {
	Titrant string  `yaml:"titrant" validate:"required"`
	Max     float64 `yaml:"max" validate:"gt=0"`
	Steps   int     `yaml:"steps" validate:"gte=2"`
}

var validate = validator.New()

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := validate.Struct(&scenario); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &scenario, nil
}

// Config resolves the step against base: preset first, then the step's
// own fields.
func (s Step) Config(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		cfg.Buffer, cfg.Titration, cfg.CO2 = p.Buffer, p.Titration, p.CO2
	}
	if len(s.Buffer.Ions) > 0 {
		cfg.Buffer = s.Buffer
		cfg.Titration = nil
	}
	if s.Titration != nil {
		cfg.Titration = s.Titration
	}
	if s.CO2 > 0 {
		cfg.CO2 = s.CO2
	}
	if s.Temperature != nil {
		cfg.Temperature = *s.Temperature
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Result is one executed step.
type Result struct {
	Step     string
	Config   *config.Config
	Solution *solution.Solution
	Curve    *analysis.Sweep
}

// RunScenario executes all steps in order. It stops at the first failing
// step and returns the results completed so far. Progress is logged to the
// logger carried by ctx.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, db solution.Resolver, opts ...solution.Option) ([]Result, error) {
	log := zerolog.Ctx(ctx)
	results := make([]Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		log.Info().Int("step", i+1).Int("of", len(scenario.Steps)).Str("name", step.Name).Msg("running step")

		cfg, err := step.Config(base)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		sol, err := cfg.Build(db, opts...)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}
		if _, err := sol.Equilibrium(); err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
		}

		res := Result{Step: step.Name, Config: cfg, Solution: sol}
		if step.Curve != nil {
			titrant, err := db.Load(step.Curve.Titrant)
			if err != nil {
				return results, fmt.Errorf("step %d (%s): %w", i+1, step.Name, err)
			}
			res.Curve, err = analysis.TitrationCurve(ctx, sol, titrant, step.Curve.Max, step.Curve.Steps)
			if err != nil {
				return results, fmt.Errorf("step %d (%s) curve: %w", i+1, step.Name, err)
			}
		}
		results = append(results, res)
	}

	return results, nil
}

// MonteCarloConfig perturbs every concentration of a buffer by a uniform
// relative error of at most Perturbation.
type MonteCarloConfig struct {
	Trials       int
	Perturbation float64
	Seed         int64
}

// MonteCarloResult is one perturbed preparation. Err is set when it could
// not be solved.
type MonteCarloResult struct {
	Trial          int
	Concentrations []float64
	PH             float64
	Conductivity   float64
	Err            error
}

// RunMonteCarlo solves Trials randomly perturbed copies of base. A zero
// Seed draws one from the clock.
func RunMonteCarlo(ctx context.Context, base *solution.Solution, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Trials < 1 {
		return nil, chem.Domainf("monte carlo", "trials", "must be positive, got %d", cfg.Trials)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation >= 1 {
		return nil, chem.Domainf("monte carlo", "perturbation", "must be in [0, 1), got %g", cfg.Perturbation)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	conc := base.Concentrations()
	results := make([]MonteCarloResult, cfg.Trials)
	for trial := range results {
		perturbed := make([]float64, len(conc))
		for k, c := range conc {
			perturbed[k] = c * (1 + (rng.Float64()-0.5)*2*cfg.Perturbation)
		}
		results[trial] = MonteCarloResult{Trial: trial, Concentrations: perturbed}
	}

	ions := base.Ions()
	opts := []solution.Option{solution.WithTemperature(base.Temperature()), solution.WithSolver(base.Solver())}
	err := analysis.ParallelFor(ctx, cfg.Trials, func(k int) error {
		r := &results[k]
		s, err := solution.New(ions, r.Concentrations, opts...)
		if err != nil {
			r.Err = err
			return nil
		}
		if r.PH, err = s.PH(); err != nil {
			r.Err = err
			return nil
		}
		r.Conductivity, r.Err = s.Conductivity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Stats summarizes the solved trials of a Monte Carlo run.
type Stats struct {
	Trials   int
	Failed   int
	MeanPH   float64
	StdDevPH float64
	MinPH    float64
	MaxPH    float64
}

// MonteCarloStats computes summary statistics from Monte Carlo results
func MonteCarloStats(results []MonteCarloResult) Stats {
	st := Stats{Trials: len(results), MinPH: math.NaN(), MaxPH: math.NaN(), MeanPH: math.NaN(), StdDevPH: math.NaN()}
	pH := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			st.Failed++
			continue
		}
		pH = append(pH, r.PH)
	}
	if len(pH) == 0 {
		return st
	}
	st.MinPH, st.MaxPH = floats.Min(pH), floats.Max(pH)
	if len(pH) == 1 {
		st.MeanPH, st.StdDevPH = pH[0], 0
		return st
	}
	st.MeanPH, st.StdDevPH = stat.MeanStdDev(pH, nil)
	return st
}
