package ion

import (
	"math"

	"github.com/san-kum/ionize/internal/aqueous"
	"github.com/san-kum/ionize/internal/chem"
)

// Temperature ranges beyond which the integrated corrections lose accuracy.
const (
	vantHoffRange  = 20.0
	clarkGlewRange = 100.0
)

// TemperaturePKa returns the pKa values corrected to temperature t at zero
// ionic strength.
func (i *Ion) TemperaturePKa(t float64) ([]float64, error) {
	if err := aqueous.CheckTemperature(t); err != nil {
		return nil, err
	}
	out := make([]float64, len(i.pKa))
	switch {
	case t == i.referenceT || i.enthalpy == nil:
		copy(out, i.pKa)
	case i.heatCapacity == nil:
		i.vantHoff(out, t)
	default:
		i.clarkGlew(out, t)
	}
	return out, nil
}

// ExtrapolationWarning reports whether correcting to t stretches the
// available thermodynamic data beyond its usual range of validity, or
// whether no temperature data exists at all.
func (i *Ion) ExtrapolationWarning(t float64) bool {
	dT := math.Abs(t - i.referenceT)
	switch {
	case dT == 0:
		return false
	case i.enthalpy == nil:
		return true
	case i.heatCapacity == nil:
		return dT > vantHoffRange
	default:
		return dT > clarkGlewRange
	}
}

func (i *Ion) vantHoff(out []float64, t float64) {
	tk := chem.Kelvin(t)
	tRef := chem.Kelvin(i.referenceT)
	for k := range out {
		out[k] = i.pKa[k] - i.enthalpy[k]/(chem.Ln10*chem.GasConstant)*(1/tRef-1/tk)
	}
}

func (i *Ion) clarkGlew(out []float64, t float64) {
	i.vantHoff(out, t)
	tk := chem.Kelvin(t)
	tRef := chem.Kelvin(i.referenceT)
	shape := tRef/tk - 1 + math.Log(tk/tRef)
	for k := range out {
		out[k] -= i.heatCapacity[k] / (chem.Ln10 * chem.GasConstant) * shape
	}
}

// Acidity returns the concentration-based acidity constant of each
// transition, corrected for temperature and ionic strength. Entry k belongs
// to the transition between charge states Valence()[k] and its neighbour
// toward neutral.
func (i *Ion) Acidity(ionicStrength, t float64) ([]float64, error) {
	pKa, err := i.TemperaturePKa(t)
	if err != nil {
		return nil, err
	}

	z0 := i.valenceZero()
	gamma, err := i.model.Coefficients(z0, ionicStrength, t)
	if err != nil {
		return nil, err
	}
	gammaH, err := i.model.Coefficient(1, ionicStrength, t)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(pKa))
	for k := range pKa {
		out[k] = math.Pow(10, -pKa[k]) * gamma[k+1] / gamma[k] / gammaH
	}
	return out, nil
}

// PKa returns -log10 of Acidity.
func (i *Ion) PKa(ionicStrength, t float64) ([]float64, error) {
	ka, err := i.Acidity(ionicStrength, t)
	if err != nil {
		return nil, err
	}
	for k := range ka {
		ka[k] = -math.Log10(ka[k])
	}
	return ka, nil
}

// L returns the cumulative acidity products over the zero-inserted ladder,
// anchored at L = 1 for the neutral state. The abundance of state k relative
// to neutral is L[k]*[H+]^z[k].
func (i *Ion) L(ionicStrength, t float64) ([]float64, error) {
	logL, err := i.logL(ionicStrength, t)
	if err != nil {
		return nil, err
	}
	for k := range logL {
		logL[k] = math.Pow(10, logL[k])
	}
	return logL, nil
}

// logL is L in log10 form, which keeps extreme ladders finite.
func (i *Ion) logL(ionicStrength, t float64) ([]float64, error) {
	ka, err := i.Acidity(ionicStrength, t)
	if err != nil {
		return nil, err
	}
	n0 := i.neutralIndex()
	out := make([]float64, len(ka)+1)
	for k := n0 + 1; k < len(out); k++ {
		out[k] = out[k-1] - math.Log10(ka[k-1])
	}
	for k := n0 - 1; k >= 0; k-- {
		out[k] = out[k+1] + math.Log10(ka[k])
	}
	return out, nil
}
