package solution

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/ion"
)

func (s *Solution) fromSpecies(species []equilibrium.Species) (*Solution, error) {
	ions := make([]*ion.Ion, len(species))
	conc := make([]float64, len(species))
	for k, sp := range species {
		ions[k] = sp.Ion
		conc[k] = sp.Concentration
	}
	return s.derive(ions, conc)
}

// Titrate returns the Solution reached by adding titrant until the pH is
// targetPH.
func (s *Solution) Titrate(titrant *ion.Ion, targetPH float64) (*Solution, error) {
	amount, state, err := s.solver.Titrate(s.Species(), titrant, targetPH, s.temperature)
	if err != nil {
		return nil, err
	}
	out, err := s.fromSpecies(equilibrium.WithSpecies(s.Species(), titrant, amount))
	if err != nil {
		return nil, err
	}
	return out.withState(state), nil
}

// EquilibrateCO2 returns the Solution after dissolving CO2 at partial
// pressure pCO2 (atm).
func (s *Solution) EquilibrateCO2(pCO2 float64) (*Solution, error) {
	state, species, err := s.solver.SolveCO2(s.Species(), pCO2, s.temperature)
	if err != nil {
		return nil, err
	}
	out, err := s.fromSpecies(species)
	if err != nil {
		return nil, err
	}
	return out.withState(state), nil
}

// Dilute returns the Solution with every concentration divided by factor.
func (s *Solution) Dilute(factor float64) (*Solution, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return nil, chem.Domainf("dilute", "factor", "must be positive and finite, got %g", factor)
	}
	conc := make([]float64, len(s.conc))
	for k, c := range s.conc {
		conc[k] = c / factor
	}
	return s.derive(s.ions, conc)
}

// Add returns the Solution with c mol/L more of i.
func (s *Solution) Add(i *ion.Ion, c float64) (*Solution, error) {
	if i == nil {
		return nil, chem.Domainf("add", "ion", "must not be nil")
	}
	if k := s.indexOf(i.Name()); k >= 0 && !s.ions[k].Equal(i) {
		return nil, chem.Domainf("add", "ion", "a different ion named %s is already present", i.Name())
	}
	return s.fromSpecies(equilibrium.WithSpecies(s.Species(), i, c))
}

// Mix returns the Solution formed from (1-fraction) parts of s and fraction
// parts of other by volume. The temperature is volume-weighted.
func (s *Solution) Mix(other *Solution, fraction float64) (*Solution, error) {
	if other == nil {
		return nil, chem.Domainf("mix", "other", "must not be nil")
	}
	if math.IsNaN(fraction) || fraction < 0 || fraction > 1 {
		return nil, chem.Domainf("mix", "fraction", "must be in [0, 1], got %g", fraction)
	}

	species := s.Species()
	for k := range species {
		species[k].Concentration *= 1 - fraction
	}
	for k, i := range other.ions {
		if j := s.indexOf(i.Name()); j >= 0 && !s.ions[j].Equal(i) {
			return nil, chem.Domainf("mix", "ion", "%s differs between the two solutions", i.Name())
		}
		species = equilibrium.WithSpecies(species, i, other.conc[k]*fraction)
	}

	ions := make([]*ion.Ion, len(species))
	conc := make([]float64, len(species))
	for k, sp := range species {
		ions[k], conc[k] = sp.Ion, sp.Concentration
	}
	t := (1-fraction)*s.temperature + fraction*other.temperature
	return New(ions, conc, WithTemperature(t), WithSolver(s.solver))
}
