// Package activity implements the extended Debye-Huckel activity model and
// the viscosity-based mobility corrections used by the ion package.
//
// The activity coefficient follows Bahga et al. (2010), eq. 6:
//
//	log10(gamma) = z^2 * (0.1*I - A(T)*sqrt(I)/(1 + 1.5*sqrt(I)))
package activity

import (
	"math"

	"github.com/san-kum/ionize/internal/aqueous"
	"github.com/san-kum/ionize/internal/chem"
)

const (
	linearTerm = 0.1 // L/mol, Davies-type linear term

	onsagerRelaxationRef      = 0.2297   // (L/mol)^1/2 at 25 degC
	onsagerElectrophoreticRef = 31.41e-9 // m^2/(V s) (L/mol)^1/2 at 25 degC
)

// Model evaluates activity corrections against a solvent.
type Model struct {
	solvent aqueous.Solvent
}

// New returns a Model backed by the given solvent. A nil solvent selects water.
func New(solvent aqueous.Solvent) *Model {
	if solvent == nil {
		solvent = aqueous.Water{}
	}
	return &Model{solvent: solvent}
}

// Default is the water-backed model used when no solvent is configured.
var Default = New(aqueous.Water{})

// Solvent returns the backing solvent.
func (m *Model) Solvent() aqueous.Solvent {
	return m.solvent
}

// DebyeHuckelA returns A(T).
func (m *Model) DebyeHuckelA(t float64) (float64, error) {
	return m.solvent.DebyeHuckel(t)
}

// Coefficient returns the single-ion activity coefficient of charge z at
// ionic strength I (mol/L) and temperature t (degC).
func (m *Model) Coefficient(z int, ionicStrength, t float64) (float64, error) {
	if ionicStrength < 0 || math.IsNaN(ionicStrength) {
		return 0, chem.Domainf("activity", "ionic strength", "must be non-negative, got %g", ionicStrength)
	}
	a, err := m.solvent.DebyeHuckel(t)
	if err != nil {
		return 0, err
	}
	if z == 0 || ionicStrength == 0 {
		return 1, nil
	}
	return coefficient(float64(z*z), ionicStrength, a), nil
}

// Coefficients evaluates Coefficient for each charge in zs.
func (m *Model) Coefficients(zs []int, ionicStrength, t float64) ([]float64, error) {
	out := make([]float64, len(zs))
	for i, z := range zs {
		g, err := m.Coefficient(z, ionicStrength, t)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

func coefficient(z2, ionicStrength, a float64) float64 {
	sq := math.Sqrt(ionicStrength)
	return math.Pow(10, z2*(linearTerm*ionicStrength-a*sq/(1+chem.Pitts*sq)))
}

// MobilityTemperatureCorrection rescales a mobility measured at tRef to t
// with Walden's rule, mu*eta = const.
func (m *Model) MobilityTemperatureCorrection(mobility, t, tRef float64) (float64, error) {
	eta, err := m.solvent.Viscosity(t)
	if err != nil {
		return 0, err
	}
	etaRef, err := m.solvent.Viscosity(tRef)
	if err != nil {
		return 0, err
	}
	return mobility * etaRef / eta, nil
}

// Onsager holds the Robinson-Stokes coefficients at one temperature.
type Onsager struct {
	Relaxation      float64 // dimensionless per (mol/L)^1/2
	Electrophoretic float64 // m^2/(V s) per (mol/L)^1/2
}

// OnsagerCoefficients returns the Robinson-Stokes relaxation and
// electrophoretic coefficients at t.
func (m *Model) OnsagerCoefficients(t float64) (Onsager, error) {
	eps, err := m.solvent.Dielectric(t)
	if err != nil {
		return Onsager{}, err
	}
	epsRef, err := m.solvent.Dielectric(chem.ReferenceT)
	if err != nil {
		return Onsager{}, err
	}
	eta, err := m.solvent.Viscosity(t)
	if err != nil {
		return Onsager{}, err
	}
	etaRef, err := m.solvent.Viscosity(chem.ReferenceT)
	if err != nil {
		return Onsager{}, err
	}

	ratio := chem.Kelvin(chem.ReferenceT) * epsRef / (chem.Kelvin(t) * eps)
	return Onsager{
		Relaxation:      onsagerRelaxationRef * math.Pow(ratio, 1.5),
		Electrophoretic: onsagerElectrophoreticRef * (etaRef / eta) * math.Sqrt(ratio),
	}, nil
}
