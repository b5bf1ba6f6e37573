package equilibrium

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
)

// Config holds iteration budgets and tolerances. ChargeTolerance is in
// mol/L, IonicStrengthTolerance is relative and the pH tolerances are in pH
// units. The bracket may grow by PHLimit beyond [PHMin, PHMax].
type Config struct {
	MaxPHIterations            int     `yaml:"max_ph_iterations" json:"max_ph_iterations" validate:"gt=0"`
	MaxIonicStrengthIterations int     `yaml:"max_ionic_strength_iterations" json:"max_ionic_strength_iterations" validate:"gt=0"`
	MaxTitrationIterations     int     `yaml:"max_titration_iterations" json:"max_titration_iterations" validate:"gt=0"`
	ChargeTolerance            float64 `yaml:"charge_tolerance" json:"charge_tolerance" validate:"gt=0"`
	PHTolerance                float64 `yaml:"ph_tolerance" json:"ph_tolerance" validate:"gt=0"`
	IonicStrengthTolerance     float64 `yaml:"ionic_strength_tolerance" json:"ionic_strength_tolerance" validate:"gt=0"`
	TitrationTolerance         float64 `yaml:"titration_tolerance" json:"titration_tolerance" validate:"gt=0"`
	PHMin                      float64 `yaml:"ph_min" json:"ph_min"`
	PHMax                      float64 `yaml:"ph_max" json:"ph_max" validate:"gtfield=PHMin"`
	PHLimit                    float64 `yaml:"ph_limit" json:"ph_limit" validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		MaxPHIterations:            200,
		MaxIonicStrengthIterations: 100,
		MaxTitrationIterations:     100,
		ChargeTolerance:            1e-12,
		PHTolerance:                1e-10,
		IonicStrengthTolerance:     1e-6,
		TitrationTolerance:         1e-4,
		PHMin:                      0,
		PHMax:                      14,
		PHLimit:                    4,
	}
}

// Validate reports the first unusable setting.
func (c Config) Validate() error {
	const op = "equilibrium config"
	counts := []struct {
		field string
		value int
	}{
		{"max pH iterations", c.MaxPHIterations},
		{"max ionic strength iterations", c.MaxIonicStrengthIterations},
		{"max titration iterations", c.MaxTitrationIterations},
	}
	for _, f := range counts {
		if f.value <= 0 {
			return chem.Domainf(op, f.field, "must be positive, got %d", f.value)
		}
	}

	tolerances := []struct {
		field string
		value float64
	}{
		{"charge tolerance", c.ChargeTolerance},
		{"pH tolerance", c.PHTolerance},
		{"ionic strength tolerance", c.IonicStrengthTolerance},
		{"titration tolerance", c.TitrationTolerance},
	}
	for _, f := range tolerances {
		if !(f.value > 0) || math.IsInf(f.value, 0) {
			return chem.Domainf(op, f.field, "must be positive and finite, got %g", f.value)
		}
	}

	if math.IsNaN(c.PHMin) || math.IsNaN(c.PHMax) || c.PHMin >= c.PHMax {
		return chem.Domainf(op, "pH range", "[%g, %g] is empty", c.PHMin, c.PHMax)
	}
	if !(c.PHLimit >= 0) || math.IsInf(c.PHLimit, 0) {
		return chem.Domainf(op, "pH limit", "must be non-negative, got %g", c.PHLimit)
	}
	return nil
}
