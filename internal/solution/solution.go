package solution

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/san-kum/ionize/internal/aqueous"
	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/ion"
)

// Solution is an immutable mixture of ions at one temperature.
type Solution struct {
	ions        []*ion.Ion
	conc        []float64
	temperature float64
	solver      *equilibrium.Solver
	cache       *cache
}

type cache struct {
	once  sync.Once
	state equilibrium.State
	err   error
}

type options struct {
	temperature float64
	solver      *equilibrium.Solver
}

type Option func(*options)

// WithTemperature sets the temperature in degC. The default is 25.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithSolver replaces the default solver. Without it every Solution gets
// a water solver of its own.
func WithSolver(s *equilibrium.Solver) Option {
	return func(o *options) { o.solver = s }
}

// New builds a Solution from parallel ion and concentration (mol/L) slices.
func New(ions []*ion.Ion, concentrations []float64, opts ...Option) (*Solution, error) {
	o := options{temperature: chem.ReferenceT}
	for _, opt := range opts {
		opt(&o)
	}
	if o.solver == nil {
		o.solver = equilibrium.Default()
	}
	if err := validate(ions, concentrations, o.temperature); err != nil {
		return nil, err
	}
	return &Solution{
		ions:        slices.Clone(ions),
		conc:        slices.Clone(concentrations),
		temperature: o.temperature,
		solver:      o.solver,
		cache:       &cache{},
	}, nil
}

// Water returns a Solution with no solutes.
func Water(opts ...Option) *Solution {
	s, err := New(nil, nil, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Resolver turns ion names into ions. *database.Database satisfies it.
type Resolver interface {
	Load(name string) (*ion.Ion, error)
}

// FromNames resolves names through db and builds a Solution.
func FromNames(db Resolver, names []string, concentrations []float64, opts ...Option) (*Solution, error) {
	ions := make([]*ion.Ion, len(names))
	for k, name := range names {
		i, err := db.Load(name)
		if err != nil {
			return nil, err
		}
		ions[k] = i
	}
	return New(ions, concentrations, opts...)
}

func validate(ions []*ion.Ion, conc []float64, t float64) error {
	const op = "solution"
	if len(ions) != len(conc) {
		return chem.Domainf(op, "concentrations", "%d values for %d ions", len(conc), len(ions))
	}
	if err := aqueous.CheckTemperature(t); err != nil {
		return err
	}
	seen := make(map[string]bool, len(ions))
	for k, i := range ions {
		if i == nil {
			return chem.Domainf(op, "ions", "entry %d is nil", k)
		}
		c := conc[k]
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			return chem.Domainf(op, "concentrations", "%s: must be finite and non-negative, got %g", i.Name(), c)
		}
		key := normalize(i.Name())
		if seen[key] {
			return chem.Domainf(op, "ions", "%s appears more than once", i.Name())
		}
		seen[key] = true
	}
	return nil
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// derive builds a Solution that shares the solver and temperature of s.
func (s *Solution) derive(ions []*ion.Ion, conc []float64) (*Solution, error) {
	return New(ions, conc, WithTemperature(s.temperature), WithSolver(s.solver))
}

// withState returns s with its cache already filled.
func (s *Solution) withState(state equilibrium.State) *Solution {
	s.cache.once.Do(func() { s.cache.state = state })
	return s
}

// Equilibrium returns the solved state, computing it on first use.
func (s *Solution) Equilibrium() (equilibrium.State, error) {
	s.cache.once.Do(func() {
		state, err := s.solver.Solve(s.Species(), s.temperature)
		if err != nil {
			s.cache.err = fmt.Errorf("solve %s: %w", s, err)
			return
		}
		s.cache.state = state
	})
	return s.cache.state, s.cache.err
}

func (s *Solution) PH() (float64, error) {
	state, err := s.Equilibrium()
	return state.PH, err
}

func (s *Solution) IonicStrength() (float64, error) {
	state, err := s.Equilibrium()
	return state.IonicStrength, err
}

func (s *Solution) Temperature() float64        { return s.temperature }
func (s *Solution) Solver() *equilibrium.Solver { return s.solver }
func (s *Solution) Len() int                    { return len(s.ions) }
func (s *Solution) Ions() []*ion.Ion            { return slices.Clone(s.ions) }
func (s *Solution) Concentrations() []float64   { return slices.Clone(s.conc) }

// Species returns the composition in the solver's form.
func (s *Solution) Species() []equilibrium.Species {
	out := make([]equilibrium.Species, len(s.ions))
	for k, i := range s.ions {
		out[k] = equilibrium.Species{Ion: i, Concentration: s.conc[k]}
	}
	return out
}

// index finds i by identity or equality; -1 when absent.
func (s *Solution) index(i *ion.Ion) int {
	for k, own := range s.ions {
		if own == i || own.Equal(i) {
			return k
		}
	}
	return -1
}

func (s *Solution) indexOf(name string) int {
	key := normalize(name)
	for k, own := range s.ions {
		if normalize(own.Name()) == key {
			return k
		}
	}
	return -1
}

// Concentration returns the total concentration of i in mol/L.
func (s *Solution) Concentration(i *ion.Ion) (float64, error) {
	k := s.index(i)
	if k < 0 {
		name := "<nil>"
		if i != nil {
			name = i.Name()
		}
		return 0, &chem.LookupError{Name: name, Where: "solution"}
	}
	return s.conc[k], nil
}

// ConcentrationOf is Concentration by name.
func (s *Solution) ConcentrationOf(name string) (float64, error) {
	k := s.indexOf(name)
	if k < 0 {
		return 0, &chem.LookupError{Name: name, Where: "solution"}
	}
	return s.conc[k], nil
}

// Contains reports whether i is part of the mixture.
func (s *Solution) Contains(i *ion.Ion) bool { return s.index(i) >= 0 }

// Equal compares composition and temperature. The solver is not part of
// identity.
func (s *Solution) Equal(other *Solution) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.temperature != other.temperature || len(s.ions) != len(other.ions) {
		return false
	}
	for k := range s.ions {
		if !s.ions[k].Equal(other.ions[k]) || s.conc[k] != other.conc[k] {
			return false
		}
	}
	return true
}

func (s *Solution) String() string {
	if len(s.ions) == 0 {
		return fmt.Sprintf("Solution(water, %.1f degC)", s.temperature)
	}
	parts := make([]string, len(s.ions))
	for k, i := range s.ions {
		parts[k] = fmt.Sprintf("%s %.4g M", i.Name(), s.conc[k])
	}
	return fmt.Sprintf("Solution(%s; %.1f degC)", strings.Join(parts, ", "), s.temperature)
}
