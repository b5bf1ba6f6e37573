package ion

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
	"gonum.org/v1/gonum/floats"
)

// Speciation caches the ionic-strength and temperature dependent weights of
// an ion so that fractions can be evaluated cheaply across many pH values.
type Speciation struct {
	valence []float64 // zero-inserted ladder
	logL    []float64
	logGamH float64
	neutral int
}

// Speciate computes the weights at ionic strength I and temperature t.
func (i *Ion) Speciate(ionicStrength, t float64) (*Speciation, error) {
	logL, err := i.logL(ionicStrength, t)
	if err != nil {
		return nil, err
	}
	gammaH, err := i.model.Coefficient(1, ionicStrength, t)
	if err != nil {
		return nil, err
	}

	z0 := i.valenceZero()
	valence := make([]float64, len(z0))
	for k, z := range z0 {
		valence[k] = float64(z)
	}
	return &Speciation{
		valence: valence,
		logL:    logL,
		logGamH: math.Log10(gammaH),
		neutral: i.neutralIndex(),
	}, nil
}

// distribution returns the fraction of every state including neutral.
func (s *Speciation) distribution(pH float64) []float64 {
	logH := -pH - s.logGamH
	out := make([]float64, len(s.valence))
	for k, z := range s.valence {
		out[k] = s.logL[k] + z*logH
	}
	peak := floats.Max(out)
	for k := range out {
		out[k] = math.Pow(10, out[k]-peak)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// Fractions returns the ionization fraction of each non-zero charge state,
// in the order of Ion.Valence.
func (s *Speciation) Fractions(pH float64) []float64 {
	all := s.distribution(pH)
	return append(all[:s.neutral:s.neutral], all[s.neutral+1:]...)
}

// Neutral returns the fraction in the uncharged state.
func (s *Speciation) Neutral(pH float64) float64 {
	return s.distribution(pH)[s.neutral]
}

// Charge returns the mean charge sum(z*alpha).
func (s *Speciation) Charge(pH float64) float64 {
	return floats.Dot(s.valence, s.distribution(pH))
}

// Moments returns sum(z*alpha) and sum(z^2*alpha) in one pass.
func (s *Speciation) Moments(pH float64) (charge, chargeSquared float64) {
	d := s.distribution(pH)
	for k, z := range s.valence {
		charge += z * d[k]
		chargeSquared += z * z * d[k]
	}
	return charge, chargeSquared
}

// IonizationFraction returns the fraction of the ion in each non-zero
// charge state at the given conditions.
func (i *Ion) IonizationFraction(pH, ionicStrength, t float64) ([]float64, error) {
	s, err := i.Speciate(ionicStrength, t)
	if err != nil {
		return nil, err
	}
	return s.Fractions(pH), nil
}

// NeutralFraction returns the fraction in the uncharged state.
func (i *Ion) NeutralFraction(pH, ionicStrength, t float64) (float64, error) {
	s, err := i.Speciate(ionicStrength, t)
	if err != nil {
		return 0, err
	}
	return s.Neutral(pH), nil
}

// Charge returns the effective (mean) charge of the ion.
func (i *Ion) Charge(pH, ionicStrength, t float64) (float64, error) {
	s, err := i.Speciate(ionicStrength, t)
	if err != nil {
		return 0, err
	}
	return s.Charge(pH), nil
}

const (
	pIMin       = -2.0
	pIMax       = 16.0
	pITolerance = 1e-10
	pIMaxIter   = 200
)

// IsoelectricPoint returns the pH at which an ampholyte carries no net
// charge.
func (i *Ion) IsoelectricPoint(ionicStrength, t float64) (float64, error) {
	if !i.Ampholyte() {
		return 0, chem.Domainf("ion "+i.name, "valence", "isoelectric point requires both positive and negative states")
	}
	s, err := i.Speciate(ionicStrength, t)
	if err != nil {
		return 0, err
	}

	lo, hi := pIMin, pIMax
	for iter := 0; iter < pIMaxIter && hi-lo > pITolerance; iter++ {
		mid := 0.5 * (lo + hi)
		if s.Charge(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}
