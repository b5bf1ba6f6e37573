package solution

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
)

// Mobilities below this magnitude (m^2/(V s)) are treated as immobile.
const immobile = 1e-15

// Kohlrausch returns the Kohlrausch regulating function
// sum(c*|z|/|mu|) over ions with non-vanishing effective mobility.
func (s *Solution) Kohlrausch() (float64, error) {
	tr, err := s.transport()
	if err != nil {
		return 0, err
	}
	return kohlrausch(tr.ions), nil
}

func kohlrausch(carriers []carrier) float64 {
	sum := 0.0
	for _, c := range carriers {
		if math.Abs(c.mobility) > immobile {
			sum += c.concentration * math.Abs(c.charge) / math.Abs(c.mobility)
		}
	}
	return sum
}

// Alberty returns the Alberty regulating function for weak monovalent
// systems, sum(c*|z|/|mu|) evaluated for each ion at its lowest-charge
// state and reference mobility.
func (s *Solution) Alberty() (float64, error) {
	sum := 0.0
	for k, i := range s.ions {
		valence := i.Valence()
		mobility := i.ReferenceMobility()
		best := 0
		for j := range valence {
			if abs(valence[j]) < abs(valence[best]) {
				best = j
			}
		}
		if math.Abs(mobility[best]) > immobile {
			sum += s.conc[k] * float64(abs(valence[best])) / math.Abs(mobility[best])
		}
	}
	return sum, nil
}

func abs(z int) int {
	if z < 0 {
		return -z
	}
	return z
}

// Jovin returns the Jovin function sum(c*s), with s = +1 for purely
// cationic ions, -1 for purely anionic ions and 0 for ampholytes.
func (s *Solution) Jovin() (float64, error) {
	sum := 0.0
	for k, i := range s.ions {
		sum += s.conc[k] * float64(i.Sign())
	}
	return sum, nil
}

// Gas returns the Kohlrausch function extended with water's own H+ and OH-.
func (s *Solution) Gas() (float64, error) {
	tr, err := s.transport()
	if err != nil {
		return 0, err
	}
	return kohlrausch(append(tr.ions, tr.hydronium, tr.hydroxide)), nil
}

// BufferingCapacity returns d(base)/d(pH) in mol/L per pH unit:
// ln10 * ([H+] + [OH-] + sum(c*(<z^2> - <z>^2))).
func (s *Solution) BufferingCapacity() (float64, error) {
	state, err := s.Equilibrium()
	if err != nil {
		return 0, err
	}
	sum := state.Hydronium + state.Hydroxide
	for k, i := range s.ions {
		spec, err := i.Speciate(state.IonicStrength, s.temperature)
		if err != nil {
			return 0, err
		}
		z, z2 := spec.Moments(state.PH)
		sum += s.conc[k] * (z2 - z*z)
	}
	return chem.Ln10 * sum, nil
}

// Debye returns the Debye screening length in metres.
func (s *Solution) Debye() (float64, error) {
	state, err := s.Equilibrium()
	if err != nil {
		return 0, err
	}
	eps, err := s.solver.Model().Solvent().Dielectric(s.temperature)
	if err != nil {
		return 0, err
	}
	num := eps * chem.Permittivity * chem.GasConstant * chem.Kelvin(s.temperature)
	den := 2 * chem.Faraday * chem.Faraday * chem.LitersPerM3 * state.IonicStrength
	return math.Sqrt(num / den), nil
}
