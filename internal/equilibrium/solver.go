package equilibrium

import (
	"fmt"
	"math"

	"github.com/san-kum/ionize/internal/activity"
	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/ion"
)

const (
	bracketStep       = 2.0
	ionicStrengthTiny = 1e-12
)

// Species is one solute at its total (analytical) concentration in mol/L.
type Species struct {
	Ion           *ion.Ion
	Concentration float64
}

// State is a converged equilibrium. Hydronium and Hydroxide are
// concentrations in mol/L.
type State struct {
	PH            float64 `json:"pH" yaml:"ph"`
	IonicStrength float64 `json:"ionic_strength" yaml:"ionic_strength"`
	Temperature   float64 `json:"temperature" yaml:"temperature"`
	Hydronium     float64 `json:"hydronium" yaml:"hydronium"`
	Hydroxide     float64 `json:"hydroxide" yaml:"hydroxide"`
	Iterations    int     `json:"iterations" yaml:"iterations"`
	PHIterations  int     `json:"ph_iterations" yaml:"ph_iterations"`
}

// Context returns the ambient condition an Ion needs to answer queries at
// this equilibrium.
func (s State) Context() ion.Context {
	return ion.Context{PH: s.PH, IonicStrength: s.IonicStrength, Temperature: s.Temperature}
}

// Solver computes equilibria. It is safe for concurrent use once all
// observers are attached.
type Solver struct {
	cfg       Config
	model     *activity.Model
	observers []Observer
}

// New returns a Solver. A nil model selects water.
func New(cfg Config, model *activity.Model) *Solver {
	if model == nil {
		model = activity.Default
	}
	return &Solver{cfg: cfg, model: model}
}

// Default returns a water Solver with DefaultConfig.
func Default() *Solver {
	return New(DefaultConfig(), nil)
}

func (s *Solver) AddObserver(o Observer) { s.observers = append(s.observers, o) }
func (s *Solver) Config() Config         { return s.cfg }
func (s *Solver) Model() *activity.Model { return s.model }

// Solve finds the pH and ionic strength of the species at temperature t.
func (s *Solver) Solve(species []Species, t float64) (State, error) {
	if err := s.cfg.Validate(); err != nil {
		return State{}, err
	}
	if err := s.checkSpecies(species); err != nil {
		return State{}, err
	}
	kw, err := s.model.Solvent().Dissociation(t)
	if err != nil {
		return State{}, err
	}

	active := make([]Species, 0, len(species))
	for _, sp := range species {
		if sp.Concentration > 0 {
			active = append(active, sp)
		}
	}
	if len(active) == 0 {
		state := water(kw, t)
		s.converged(state)
		return state, nil
	}

	ionicStrength := 0.0
	phIterations := 0
	lastPH, lastResidual := math.NaN(), math.NaN()
	for iter := 1; iter <= s.cfg.MaxIonicStrengthIterations; iter++ {
		b, err := s.newBalance(active, ionicStrength, t, kw)
		if err != nil {
			return State{}, s.failed(err)
		}
		pH, n, err := s.bisect(b, ionicStrength)
		phIterations += n
		if err != nil {
			return State{}, s.failed(err)
		}

		next := b.ionicStrength(pH)
		residual := math.Abs(next - ionicStrength)
		s.iteration(StageIonicStrength, iter, pH, next, residual)
		lastPH, lastResidual = pH, residual

		if residual <= s.cfg.IonicStrengthTolerance*math.Max(next, ionicStrengthTiny) {
			hyd, oh := b.water(pH)
			state := State{
				PH:            pH,
				IonicStrength: next,
				Temperature:   t,
				Hydronium:     hyd,
				Hydroxide:     oh,
				Iterations:    iter,
				PHIterations:  phIterations,
			}
			s.converged(state)
			return state, nil
		}
		ionicStrength = next
	}

	return State{}, s.failed(&ConvergenceError{
		Stage:         StageIonicStrength,
		Iterations:    s.cfg.MaxIonicStrengthIterations,
		PH:            lastPH,
		IonicStrength: ionicStrength,
		Residual:      lastResidual,
	})
}

// checkSpecies also requires every ion to share the solver's activity
// model.
func (s *Solver) checkSpecies(species []Species) error {
	for k, sp := range species {
		if sp.Ion == nil {
			return chem.Domainf("equilibrium", "species", "entry %d has no ion", k)
		}
		if sp.Ion.Model() != s.model {
			return chem.Domainf("equilibrium", "model", "%s uses a different activity model than the solver", sp.Ion.Name())
		}
		c := sp.Concentration
		if math.IsNaN(c) || math.IsInf(c, 0) || c < 0 {
			return chem.Domainf("equilibrium", "concentration", "%s: must be finite and non-negative, got %g", sp.Ion.Name(), c)
		}
	}
	return nil
}

// water is the closed-form equilibrium of the pure solvent. At I ~ 1e-7 the
// activity coefficients are unity to within 1e-3.
func water(kw, t float64) State {
	h := math.Sqrt(kw)
	return State{
		PH:            -math.Log10(h),
		IonicStrength: h,
		Temperature:   t,
		Hydronium:     h,
		Hydroxide:     h,
	}
}

// balance holds everything that depends on ionic strength but not on pH.
type balance struct {
	conc    []float64
	spec    []*ion.Speciation
	gammaH  float64
	gammaOH float64
	kw      float64
}

func (s *Solver) newBalance(species []Species, ionicStrength, t, kw float64) (*balance, error) {
	b := &balance{
		conc: make([]float64, len(species)),
		spec: make([]*ion.Speciation, len(species)),
		kw:   kw,
	}
	for k, sp := range species {
		spec, err := sp.Ion.Speciate(ionicStrength, t)
		if err != nil {
			return nil, fmt.Errorf("speciate %s: %w", sp.Ion.Name(), err)
		}
		b.conc[k] = sp.Concentration
		b.spec[k] = spec
	}
	var err error
	if b.gammaH, err = s.model.Coefficient(1, ionicStrength, t); err != nil {
		return nil, err
	}
	if b.gammaOH, err = s.model.Coefficient(-1, ionicStrength, t); err != nil {
		return nil, err
	}
	return b, nil
}

// water returns the concentrations of H+ and OH- at pH. pH is the activity
// scale, so the concentrations carry the activity coefficients.
func (b *balance) water(pH float64) (hydronium, hydroxide float64) {
	aH := math.Pow(10, -pH)
	return aH / b.gammaH, b.kw / aH / b.gammaOH
}

// charge is the electroneutrality residual in mol/L.
func (b *balance) charge(pH float64) float64 {
	hyd, oh := b.water(pH)
	sum := hyd - oh
	for k, spec := range b.spec {
		sum += b.conc[k] * spec.Charge(pH)
	}
	return sum
}

func (b *balance) ionicStrength(pH float64) float64 {
	hyd, oh := b.water(pH)
	sum := hyd + oh
	for k, spec := range b.spec {
		_, z2 := spec.Moments(pH)
		sum += b.conc[k] * z2
	}
	return sum / 2
}

// bisect finds the root of the charge residual. It returns the pH and the
// number of iterations used.
func (s *Solver) bisect(b *balance, ionicStrength float64) (float64, int, error) {
	lo, hi := s.cfg.PHMin, s.cfg.PHMax
	for b.charge(lo) < 0 && lo > s.cfg.PHMin-s.cfg.PHLimit {
		lo = math.Max(lo-bracketStep, s.cfg.PHMin-s.cfg.PHLimit)
	}
	for b.charge(hi) > 0 && hi < s.cfg.PHMax+s.cfg.PHLimit {
		hi = math.Min(hi+bracketStep, s.cfg.PHMax+s.cfg.PHLimit)
	}
	if fl, fh := b.charge(lo), b.charge(hi); fl < 0 || fh > 0 {
		return 0, 0, chem.Domainf("equilibrium", "pH", "no charge balance in [%g, %g] (residual %g, %g)", lo, hi, fl, fh)
	}

	mid, residual := 0.5*(lo+hi), 0.0
	for iter := 1; iter <= s.cfg.MaxPHIterations; iter++ {
		mid = 0.5 * (lo + hi)
		residual = b.charge(mid)
		s.iteration(StageCharge, iter, mid, ionicStrength, residual)

		if math.Abs(residual) < s.cfg.ChargeTolerance || hi-lo < s.cfg.PHTolerance {
			return mid, iter, nil
		}
		if residual > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, s.cfg.MaxPHIterations, &ConvergenceError{
		Stage:         StageCharge,
		Iterations:    s.cfg.MaxPHIterations,
		PH:            mid,
		IonicStrength: ionicStrength,
		Residual:      residual,
	}
}

// KW returns the self-ionization constant used by the solver at t.
func (s *Solver) KW(t float64) (float64, error) {
	return s.model.Solvent().Dissociation(t)
}
