package analysis

import (
	"context"
	"math"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/ion"
	"github.com/san-kum/ionize/internal/solution"
	"gonum.org/v1/gonum/floats"
)

// Point is the solved state at one value of the swept parameter.
type Point struct {
	X                 float64 `json:"x"`
	PH                float64 `json:"pH"`
	IonicStrength     float64 `json:"ionic_strength"`
	Conductivity      float64 `json:"conductivity"`
	BufferingCapacity float64 `json:"buffering_capacity"`
}

// Sweep is an ordered series of Points over one parameter.
type Sweep struct {
	Param  string  `json:"param"`
	Points []Point `json:"points"`
}

// Columns names the fields of Rows.
func (s *Sweep) Columns() []string {
	return []string{s.Param, "pH", "ionic_strength", "conductivity", "buffering_capacity"}
}

func (s *Sweep) Rows() [][]float64 {
	rows := make([][]float64, len(s.Points))
	for k, p := range s.Points {
		rows[k] = []float64{p.X, p.PH, p.IonicStrength, p.Conductivity, p.BufferingCapacity}
	}
	return rows
}

func (s *Sweep) X() []float64 {
	out := make([]float64, len(s.Points))
	for k, p := range s.Points {
		out[k] = p.X
	}
	return out
}

func (s *Sweep) PH() []float64 {
	out := make([]float64, len(s.Points))
	for k, p := range s.Points {
		out[k] = p.PH
	}
	return out
}

// Steepest returns the midpoint of the interval with the largest |dpH/dx|,
// and the pH there. It returns NaNs for fewer than two points.
func (s *Sweep) Steepest() (x, pH float64) {
	x, pH = math.NaN(), math.NaN()
	best := -1.0
	for k := 1; k < len(s.Points); k++ {
		a, b := s.Points[k-1], s.Points[k]
		dx := b.X - a.X
		if dx == 0 {
			continue
		}
		if slope := math.Abs((b.PH - a.PH) / dx); slope > best {
			best = slope
			x, pH = 0.5*(a.X+b.X), 0.5*(a.PH+b.PH)
		}
	}
	return x, pH
}

func checkSteps(op string, steps int) error {
	if steps < 2 {
		return chem.Domainf(op, "steps", "need at least 2, got %d", steps)
	}
	return nil
}

func checkRange(op, field string, lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || hi <= lo {
		return chem.Domainf(op, field, "need finite lo < hi, got [%g, %g]", lo, hi)
	}
	return nil
}

// evaluate solves build(x) for every x in parallel.
func evaluate(ctx context.Context, param string, xs []float64, build func(x float64) (*solution.Solution, error)) (*Sweep, error) {
	sweep := &Sweep{Param: param, Points: make([]Point, len(xs))}
	err := ParallelFor(ctx, len(xs), func(k int) error {
		s, err := build(xs[k])
		if err != nil {
			return err
		}
		p, err := measure(s)
		if err != nil {
			return err
		}
		p.X = xs[k]
		sweep.Points[k] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sweep, nil
}

func measure(s *solution.Solution) (Point, error) {
	state, err := s.Equilibrium()
	if err != nil {
		return Point{}, err
	}
	sigma, err := s.Conductivity()
	if err != nil {
		return Point{}, err
	}
	beta, err := s.BufferingCapacity()
	if err != nil {
		return Point{}, err
	}
	return Point{
		PH:                state.PH,
		IonicStrength:     state.IonicStrength,
		Conductivity:      sigma,
		BufferingCapacity: beta,
	}, nil
}

// TitrationCurve adds titrant to base in steps evenly spaced amounts from 0
// to maxAmount mol/L.
func TitrationCurve(ctx context.Context, base *solution.Solution, titrant *ion.Ion, maxAmount float64, steps int) (*Sweep, error) {
	const op = "titration curve"
	if titrant == nil {
		return nil, chem.Domainf(op, "titrant", "must not be nil")
	}
	if err := checkSteps(op, steps); err != nil {
		return nil, err
	}
	if err := checkRange(op, "amount", 0, maxAmount); err != nil {
		return nil, err
	}
	xs := floats.Span(make([]float64, steps), 0, maxAmount)
	return evaluate(ctx, titrant.Name(), xs, func(x float64) (*solution.Solution, error) {
		if x == 0 {
			return base, nil
		}
		return base.Add(titrant, x)
	})
}

// TemperatureSweep solves base's composition at steps temperatures from lo
// to hi degC.
func TemperatureSweep(ctx context.Context, base *solution.Solution, lo, hi float64, steps int) (*Sweep, error) {
	const op = "temperature sweep"
	if err := checkSteps(op, steps); err != nil {
		return nil, err
	}
	if err := checkRange(op, "temperature", lo, hi); err != nil {
		return nil, err
	}
	xs := floats.Span(make([]float64, steps), lo, hi)
	return evaluate(ctx, "temperature", xs, func(t float64) (*solution.Solution, error) {
		return solution.New(base.Ions(), base.Concentrations(),
			solution.WithTemperature(t), solution.WithSolver(base.Solver()))
	})
}

// IonicStrengthSweep adds equal amounts of cation and anion, an inert
// salt, from 0 to maxConcentration mol/L.
func IonicStrengthSweep(ctx context.Context, base *solution.Solution, cation, anion *ion.Ion, maxConcentration float64, steps int) (*Sweep, error) {
	const op = "ionic strength sweep"
	if cation == nil || anion == nil {
		return nil, chem.Domainf(op, "salt", "both ions are required")
	}
	if err := checkSteps(op, steps); err != nil {
		return nil, err
	}
	if err := checkRange(op, "concentration", 0, maxConcentration); err != nil {
		return nil, err
	}
	xs := floats.Span(make([]float64, steps), 0, maxConcentration)
	return evaluate(ctx, "salt", xs, func(c float64) (*solution.Solution, error) {
		if c == 0 {
			return base, nil
		}
		s, err := base.Add(cation, c)
		if err != nil {
			return nil, err
		}
		return s.Add(anion, c)
	})
}

// DilutionSweep dilutes base by steps log-spaced factors from lo to hi.
func DilutionSweep(ctx context.Context, base *solution.Solution, lo, hi float64, steps int) (*Sweep, error) {
	const op = "dilution sweep"
	if err := checkSteps(op, steps); err != nil {
		return nil, err
	}
	if err := checkRange(op, "factor", lo, hi); err != nil {
		return nil, err
	}
	if lo <= 0 {
		return nil, chem.Domainf(op, "factor", "must be positive, got %g", lo)
	}
	xs := floats.LogSpan(make([]float64, steps), lo, hi)
	return evaluate(ctx, "dilution", xs, func(f float64) (*solution.Solution, error) {
		return base.Dilute(f)
	})
}
