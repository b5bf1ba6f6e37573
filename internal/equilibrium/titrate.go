package equilibrium

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/ion"
)

const (
	titrantSeed = 1e-4 // mol/L, first trial amount
	titrantMax  = 20.0 // mol/L, beyond any aqueous solution
)

// Titrate finds the concentration of titrant that must be added to species
// to bring the solution to targetPH. It returns that amount and the
// resulting equilibrium.
func (s *Solver) Titrate(species []Species, titrant *ion.Ion, targetPH, t float64) (float64, State, error) {
	if titrant == nil {
		return 0, State{}, chem.Domainf("titrate", "titrant", "must not be nil")
	}
	if math.IsNaN(targetPH) || math.IsInf(targetPH, 0) {
		return 0, State{}, chem.Domainf("titrate", "target pH", "must be finite, got %g", targetPH)
	}

	solve := func(amount float64) (State, error) {
		return s.Solve(WithSpecies(species, titrant, amount), t)
	}

	start, err := solve(0)
	if err != nil {
		return 0, State{}, err
	}
	if math.Abs(start.PH-targetPH) <= s.cfg.TitrationTolerance {
		return 0, start, nil
	}
	// +1 when the titrant must raise the pH.
	direction := math.Copysign(1, targetPH-start.PH)

	lo, hi := 0.0, titrantSeed
	var hiState State
	for n := 1; ; n++ {
		if hiState, err = solve(hi); err != nil {
			return 0, State{}, err
		}
		s.iteration(StageTitration, n, hiState.PH, hiState.IonicStrength, hiState.PH-targetPH)
		if n == 1 && (hiState.PH-start.PH)*direction <= 0 {
			return 0, State{}, chem.Domainf("titrate", "titrant",
				"%s moves pH from %.3f away from %.3f", titrant.Name(), start.PH, targetPH)
		}
		if (hiState.PH-targetPH)*direction >= 0 {
			break
		}
		lo = hi
		if hi *= 2; hi > titrantMax {
			return 0, State{}, chem.Domainf("titrate", "target pH",
				"%.3f not reachable with %s (pH %.3f at %g mol/L)", targetPH, titrant.Name(), hiState.PH, lo)
		}
	}
	if math.Abs(hiState.PH-targetPH) <= s.cfg.TitrationTolerance {
		return hi, hiState, nil
	}

	mid := hi
	var state State
	for iter := 1; iter <= s.cfg.MaxTitrationIterations; iter++ {
		mid = 0.5 * (lo + hi)
		if state, err = solve(mid); err != nil {
			return 0, State{}, err
		}
		residual := state.PH - targetPH
		s.iteration(StageTitration, iter, state.PH, state.IonicStrength, residual)

		if math.Abs(residual) <= s.cfg.TitrationTolerance {
			return mid, state, nil
		}
		if residual*direction < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0, State{}, s.failed(&ConvergenceError{
		Stage:         StageTitration,
		Iterations:    s.cfg.MaxTitrationIterations,
		PH:            state.PH,
		IonicStrength: state.IonicStrength,
		Residual:      state.PH - targetPH,
	})
}

// WithSpecies returns a copy of species with amount of i added. An entry
// for an equal ion absorbs the amount; otherwise a new entry is appended.
func WithSpecies(species []Species, i *ion.Ion, amount float64) []Species {
	out := make([]Species, len(species), len(species)+1)
	copy(out, species)
	for k := range out {
		if out[k].Ion.Equal(i) {
			out[k].Concentration += amount
			return out
		}
	}
	return append(out, Species{Ion: i, Concentration: amount})
}
