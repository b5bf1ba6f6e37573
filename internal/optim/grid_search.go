package optim

import (
	"context"
	"math"
	"sort"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/solution"
	"gonum.org/v1/gonum/floats"
)

// Objective scores a Solution; lower is better.
type Objective func(s *solution.Solution) (float64, error)

// Builder turns one grid point into a Solution.
type Builder func(params map[string]float64) (*solution.Solution, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Range returns n evenly spaced values from lo to hi.
func Range(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// Result is the best grid point and what the search cost.
type Result struct {
	Params    map[string]float64 `json:"params"`
	Score     float64            `json:"score"`
	Evaluated int                `json:"evaluated"`
	Failed    int                `json:"failed"`
}

// Search evaluates every grid point. Points whose Solution cannot be built
// or solved are counted as failed and skipped.
func (g *GridSearch) Search(ctx context.Context, build Builder, objective Objective) (*Result, error) {
	if len(g.paramNames) == 0 || len(g.paramNames) != len(g.ranges) {
		return nil, chem.Domainf("grid search", "params", "%d names for %d ranges", len(g.paramNames), len(g.ranges))
	}
	for k, r := range g.ranges {
		if len(r) == 0 {
			return nil, chem.Domainf("grid search", "ranges", "%s has no values", g.paramNames[k])
		}
	}

	res := &Result{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), build, objective, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return nil, chem.Domainf("grid search", "grid", "no point could be evaluated (%d failed)", res.Failed)
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	objective Objective,
	res *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		res.Evaluated++
		s, err := build(current)
		if err != nil {
			res.Failed++
			return nil
		}
		val, err := objective(s)
		if err != nil || math.IsNaN(val) {
			res.Failed++
			return nil
		}
		if val < res.Score {
			res.Score = val
			res.Params = make(map[string]float64, len(current))
			for k, v := range current {
				res.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, objective, res); err != nil {
			return err
		}
	}
	return nil
}

// Composition builds Solutions whose ions are the grid parameters, named as
// r resolves them, with the parameter values as concentrations. Fixed
// components are added to every point.
func Composition(r solution.Resolver, fixed map[string]float64, opts ...solution.Option) Builder {
	return func(params map[string]float64) (*solution.Solution, error) {
		conc := make(map[string]float64, len(fixed)+len(params))
		for k, v := range fixed {
			conc[k] = v
		}
		for k, v := range params {
			conc[k] = v
		}
		names := make([]string, 0, len(conc))
		for name := range conc {
			names = append(names, name)
		}
		sort.Strings(names)
		values := make([]float64, len(names))
		for k, name := range names {
			values[k] = conc[name]
		}
		return solution.FromNames(r, names, values, opts...)
	}
}

// TargetPH scores the distance from pH.
func TargetPH(pH float64) Objective {
	return func(s *solution.Solution) (float64, error) {
		got, err := s.PH()
		if err != nil {
			return 0, err
		}
		return math.Abs(got - pH), nil
	}
}

// TargetConductivity scores the relative distance from sigma in S/m.
func TargetConductivity(sigma float64) Objective {
	return func(s *solution.Solution) (float64, error) {
		got, err := s.Conductivity()
		if err != nil {
			return 0, err
		}
		return math.Abs(got-sigma) / sigma, nil
	}
}

// MaxBuffering prefers the highest buffering capacity.
func MaxBuffering() Objective {
	return func(s *solution.Solution) (float64, error) {
		beta, err := s.BufferingCapacity()
		if err != nil {
			return 0, err
		}
		return -beta, nil
	}
}

// Weighted sums the objectives scaled by their weights.
func Weighted(objectives []Objective, weights []float64) Objective {
	return func(s *solution.Solution) (float64, error) {
		sum := 0.0
		for k, obj := range objectives {
			v, err := obj(s)
			if err != nil {
				return 0, err
			}
			sum += weights[k] * v
		}
		return sum, nil
	}
}
