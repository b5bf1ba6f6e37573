package ion

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
	"gonum.org/v1/gonum/floats"
)

// AbsoluteMobility returns the fully ionized mobilities at temperature t and
// zero ionic strength.
func (i *Ion) AbsoluteMobility(t float64) ([]float64, error) {
	out := make([]float64, len(i.mobility))
	for k, m := range i.mobility {
		corrected, err := i.model.MobilityTemperatureCorrection(m, t, i.referenceT)
		if err != nil {
			return nil, err
		}
		out[k] = corrected
	}
	return out, nil
}

// RobinsonStokesMobility returns the fully ionized mobilities corrected for
// ionic strength:
//
//	mu = mu_abs - (A*mu_abs + B*sign(z)) * sqrt(I)/(1 + 1.5*sqrt(I))
//
// The magnitude never drops below zero.
func (i *Ion) RobinsonStokesMobility(ionicStrength, t float64) ([]float64, error) {
	if ionicStrength < 0 || math.IsNaN(ionicStrength) {
		return nil, chem.Domainf("ion "+i.name, "ionic strength", "must be non-negative, got %g", ionicStrength)
	}
	abs, err := i.AbsoluteMobility(t)
	if err != nil {
		return nil, err
	}
	if ionicStrength == 0 {
		return abs, nil
	}
	coeff, err := i.model.OnsagerCoefficients(t)
	if err != nil {
		return nil, err
	}

	sq := math.Sqrt(ionicStrength)
	factor := sq / (1 + chem.Pitts*sq)
	for k, m := range abs {
		sign := math.Copysign(1, float64(i.valence[k]))
		reduced := m - (coeff.Relaxation*m+coeff.Electrophoretic*sign)*factor
		if reduced*sign < 0 {
			reduced = 0
		}
		abs[k] = reduced
	}
	return abs, nil
}

// Mobility returns the effective mobility sum(alpha*mu) in m^2/(V s).
func (i *Ion) Mobility(pH, ionicStrength, t float64) (float64, error) {
	fractions, mobilities, err := i.transport(pH, ionicStrength, t)
	if err != nil {
		return 0, err
	}
	return floats.Dot(fractions, mobilities), nil
}

// MolarConductivity returns the conductivity contributed per mol/L of the
// ion, in S/m per mol/L.
func (i *Ion) MolarConductivity(pH, ionicStrength, t float64) (float64, error) {
	fractions, mobilities, err := i.transport(pH, ionicStrength, t)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for k, z := range i.valence {
		sum += float64(z) * fractions[k] * mobilities[k]
	}
	return chem.LitersPerM3 * chem.Faraday * sum, nil
}

// Diffusivity returns the effective diffusivity in m^2/s from the
// Nernst-Einstein relation. The neutral state diffuses like the charge state
// closest to it.
func (i *Ion) Diffusivity(pH, ionicStrength, t float64) (float64, error) {
	s, err := i.Speciate(ionicStrength, t)
	if err != nil {
		return 0, err
	}
	mobilities, err := i.RobinsonStokesMobility(ionicStrength, t)
	if err != nil {
		return 0, err
	}

	thermal := chem.GasConstant * chem.Kelvin(t) / chem.Faraday
	perState := make([]float64, len(i.valence))
	for k, z := range i.valence {
		perState[k] = mobilities[k] / float64(z) * thermal
	}

	nearest := i.neutralIndex()
	if nearest == len(i.valence) || (nearest > 0 && -i.valence[nearest-1] < i.valence[nearest]) {
		nearest--
	}

	return floats.Dot(s.Fractions(pH), perState) + s.Neutral(pH)*perState[nearest], nil
}

func (i *Ion) transport(pH, ionicStrength, t float64) ([]float64, []float64, error) {
	s, err := i.Speciate(ionicStrength, t)
	if err != nil {
		return nil, nil, err
	}
	mobilities, err := i.RobinsonStokesMobility(ionicStrength, t)
	if err != nil {
		return nil, nil, err
	}
	return s.Fractions(pH), mobilities, nil
}
