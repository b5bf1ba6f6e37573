package equilibrium

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/ion"
)

// CarbonicAcid is dissolved CO2 treated as the diprotic acid H2CO3*.
var CarbonicAcid = ion.MustNew("carbonic acid",
	[]int{-2, -1},
	[]float64{10.329, 6.351},
	[]float64{-71.8e-9, -46.1e-9},
	ion.WithEnthalpy([]float64{14850, 9150}),
)

type henrySolvent interface {
	HenryCO2(t float64) (float64, error)
}

// CarbonateSpecies returns the carbonic acid dissolved at partial pressure
// pCO2 (atm) and temperature t.
func (s *Solver) CarbonateSpecies(pCO2, t float64) (Species, error) {
	if math.IsNaN(pCO2) || math.IsInf(pCO2, 0) || pCO2 < 0 {
		return Species{}, chem.Domainf("carbonate", "pCO2", "must be finite and non-negative, got %g", pCO2)
	}
	h, ok := s.model.Solvent().(henrySolvent)
	if !ok {
		return Species{}, chem.Domainf("carbonate", "solvent", "%T has no CO2 solubility", s.model.Solvent())
	}
	kH, err := h.HenryCO2(t)
	if err != nil {
		return Species{}, err
	}
	return Species{Ion: CarbonicAcid, Concentration: kH * pCO2}, nil
}

// SolveCO2 solves species equilibrated with CO2 at partial pressure pCO2.
// Dissolved carbonate adds to any carbonic acid already present.
func (s *Solver) SolveCO2(species []Species, pCO2, t float64) (State, []Species, error) {
	co2, err := s.CarbonateSpecies(pCO2, t)
	if err != nil {
		return State{}, nil, err
	}
	merged := WithSpecies(species, co2.Ion, co2.Concentration)
	state, err := s.Solve(merged, t)
	if err != nil {
		return State{}, nil, err
	}
	return state, merged, nil
}
