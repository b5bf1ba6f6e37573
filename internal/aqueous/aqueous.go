// Package aqueous models water as the solvent: dielectric constant,
// viscosity, self-ionization and the Debye-Huckel coefficient as functions
// of temperature in degrees Celsius.
package aqueous

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
)

const (
	debyeHuckelRef = 0.5102 // (L/mol)^1/2 at 25 degC
	henryCO2Ref    = 0.0334 // mol/(L atm) at 25 degC
	henryCO2Slope  = 2400.0 // K, van't Hoff slope of the CO2 solubility
)

// Water is the default solvent. It carries no state; the methods are
// grouped on a type so callers can swap in another Solvent.
type Water struct{}

// Solvent is the contract the property corrections consume.
type Solvent interface {
	Dielectric(t float64) (float64, error)
	Viscosity(t float64) (float64, error)
	Dissociation(t float64) (float64, error)
	DebyeHuckel(t float64) (float64, error)
}

var _ Solvent = Water{}

// CheckTemperature rejects temperatures outside liquid water.
func CheckTemperature(t float64) error {
	if math.IsNaN(t) || t < chem.FreezingT || t > chem.BoilingT {
		return chem.Domainf("aqueous", "temperature", "%.2f degC outside [%.0f, %.0f]", t, chem.FreezingT, chem.BoilingT)
	}
	return nil
}

// Dielectric returns the relative permittivity of water (Malmberg & Maryott).
func (Water) Dielectric(t float64) (float64, error) {
	if err := CheckTemperature(t); err != nil {
		return 0, err
	}
	return dielectric(t), nil
}

// Viscosity returns the dynamic viscosity of water in Pa s.
func (Water) Viscosity(t float64) (float64, error) {
	if err := CheckTemperature(t); err != nil {
		return 0, err
	}
	return viscosity(t), nil
}

// Dissociation returns Kw, the self-ionization constant of water.
func (Water) Dissociation(t float64) (float64, error) {
	if err := CheckTemperature(t); err != nil {
		return 0, err
	}
	return dissociation(t), nil
}

// DebyeHuckel returns the Debye-Huckel A coefficient, scaled from its
// 25 degC value by (T eps)^-3/2.
func (Water) DebyeHuckel(t float64) (float64, error) {
	if err := CheckTemperature(t); err != nil {
		return 0, err
	}
	return debyeHuckel(t), nil
}

// HenryCO2 returns the Henry's-law solubility of CO2 in mol/(L atm).
func (Water) HenryCO2(t float64) (float64, error) {
	if err := CheckTemperature(t); err != nil {
		return 0, err
	}
	return henryCO2Ref * math.Exp(henryCO2Slope*(1/chem.Kelvin(t)-1/chem.Kelvin(chem.ReferenceT))), nil
}

// DielectricRatio returns (T_ref eps_ref)/(T eps), the scaling shared by the
// Debye-Huckel and Onsager coefficients.
func DielectricRatio(t float64) float64 {
	ref := chem.Kelvin(chem.ReferenceT) * dielectric(chem.ReferenceT)
	return ref / (chem.Kelvin(t) * dielectric(t))
}

func dielectric(t float64) float64 {
	return 87.740 - 0.40008*t + 9.398e-4*t*t - 1.410e-6*t*t*t
}

func viscosity(t float64) float64 {
	return 2.414e-5 * math.Pow(10, 247.8/(chem.Kelvin(t)-140))
}

func dissociation(t float64) float64 {
	tk := chem.Kelvin(t)
	pKw := 4470.99/tk - 6.0875 + 0.01706*tk
	return math.Pow(10, -pKw)
}

func debyeHuckel(t float64) float64 {
	return debyeHuckelRef * math.Pow(DielectricRatio(t), 1.5)
}
