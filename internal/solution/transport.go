package solution

import (
	"math"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/ion"
	"gonum.org/v1/gonum/floats"
)

// Limiting mobilities of water's own ions at 25 degC, m^2/(V s).
const (
	HydroniumMobility = 362.4e-9
	HydroxideMobility = -205.5e-9
)

// carrier is one current-carrying component at the solved state.
type carrier struct {
	concentration float64 // mol/L
	charge        float64 // mean charge
	mobility      float64 // effective, m^2/(V s)
	conductivity  float64 // S/m
}

// transport is the per-carrier breakdown of the solved state. Index k
// matches the ions of the Solution; hydronium and hydroxide follow.
type transport struct {
	ions      []carrier
	hydronium carrier
	hydroxide carrier
	total     float64
}

func (s *Solution) transport() (*transport, error) {
	state, err := s.Equilibrium()
	if err != nil {
		return nil, err
	}
	ctx := state.Context()

	tr := &transport{ions: make([]carrier, len(s.ions))}
	for k, i := range s.ions {
		snap := i.At(ctx)
		z, err := snap.Charge()
		if err != nil {
			return nil, err
		}
		mu, err := snap.Mobility()
		if err != nil {
			return nil, err
		}
		molar, err := snap.MolarConductivity()
		if err != nil {
			return nil, err
		}
		tr.ions[k] = carrier{
			concentration: s.conc[k],
			charge:        z,
			mobility:      mu,
			conductivity:  s.conc[k] * molar,
		}
	}

	muH, err := s.waterMobility(HydroniumMobility, state.IonicStrength)
	if err != nil {
		return nil, err
	}
	muOH, err := s.waterMobility(HydroxideMobility, state.IonicStrength)
	if err != nil {
		return nil, err
	}
	tr.hydronium = waterCarrier(state.Hydronium, 1, muH)
	tr.hydroxide = waterCarrier(state.Hydroxide, -1, muOH)

	parts := make([]float64, 0, len(tr.ions)+2)
	for _, c := range tr.ions {
		parts = append(parts, c.conductivity)
	}
	parts = append(parts, tr.hydronium.conductivity, tr.hydroxide.conductivity)
	tr.total = floats.Sum(parts)
	return tr, nil
}

func waterCarrier(conc, z, mu float64) carrier {
	return carrier{
		concentration: conc,
		charge:        z,
		mobility:      mu,
		conductivity:  chem.LitersPerM3 * chem.Faraday * conc * z * mu,
	}
}

// waterMobility corrects a limiting mobility of H+ or OH- for temperature
// and ionic strength the same way ion mobilities are corrected.
func (s *Solution) waterMobility(mu, ionicStrength float64) (float64, error) {
	model := s.solver.Model()
	corrected, err := model.MobilityTemperatureCorrection(mu, s.temperature, chem.ReferenceT)
	if err != nil {
		return 0, err
	}
	if ionicStrength <= 0 {
		return corrected, nil
	}
	coeff, err := model.OnsagerCoefficients(s.temperature)
	if err != nil {
		return 0, err
	}
	sq := math.Sqrt(ionicStrength)
	sign := math.Copysign(1, mu)
	reduced := corrected - (coeff.Relaxation*corrected+coeff.Electrophoretic*sign)*sq/(1+chem.Pitts*sq)
	if reduced*sign < 0 {
		return 0, nil
	}
	return reduced, nil
}

// Conductivity returns the electrical conductivity in S/m.
func (s *Solution) Conductivity() (float64, error) {
	tr, err := s.transport()
	if err != nil {
		return 0, err
	}
	return tr.total, nil
}

// Transference returns the fraction of current carried by i, or 0 when i
// is not in the mixture.
func (s *Solution) Transference(i *ion.Ion) (float64, error) {
	return s.share(s.index(i), func(c carrier, total float64) float64 { return c.conductivity / total })
}

// TransferenceOf is Transference by name.
func (s *Solution) TransferenceOf(name string) (float64, error) {
	return s.share(s.indexOf(name), func(c carrier, total float64) float64 { return c.conductivity / total })
}

// WaterTransference returns the fraction of current carried by H+ and OH-.
func (s *Solution) WaterTransference() (float64, error) {
	tr, err := s.transport()
	if err != nil {
		return 0, err
	}
	return (tr.hydronium.conductivity + tr.hydroxide.conductivity) / tr.total, nil
}

// ZoneTransfer returns the moles of i transported across a zone boundary
// per Faraday of charge passed, 1000*F*c*mu/sigma. It is signed with the
// direction of migration and 0 when i is absent.
func (s *Solution) ZoneTransfer(i *ion.Ion) (float64, error) {
	return s.share(s.index(i), zoneTransfer)
}

// ZoneTransferOf is ZoneTransfer by name.
func (s *Solution) ZoneTransferOf(name string) (float64, error) {
	return s.share(s.indexOf(name), zoneTransfer)
}

func zoneTransfer(c carrier, total float64) float64 {
	return chem.LitersPerM3 * chem.Faraday * c.concentration * c.mobility / total
}

func (s *Solution) share(k int, f func(carrier, float64) float64) (float64, error) {
	if k < 0 {
		return 0, nil
	}
	tr, err := s.transport()
	if err != nil {
		return 0, err
	}
	return f(tr.ions[k], tr.total), nil
}

// Mobility returns the effective mobility of i at the solved state.
func (s *Solution) Mobility(i *ion.Ion) (float64, error) {
	state, err := s.Equilibrium()
	if err != nil {
		return 0, err
	}
	return i.At(state.Context()).Mobility()
}

// Properties is the per-ion summary of a solved Solution.
type Properties struct {
	Name          string  `json:"name"`
	Concentration float64 `json:"concentration"`
	Charge        float64 `json:"charge"`
	Mobility      float64 `json:"mobility"`
	Transference  float64 `json:"transference"`
	ZoneTransfer  float64 `json:"zone_transfer"`
}

// Properties returns one row per ion in composition order.
func (s *Solution) Properties() ([]Properties, error) {
	tr, err := s.transport()
	if err != nil {
		return nil, err
	}
	out := make([]Properties, len(s.ions))
	for k, i := range s.ions {
		c := tr.ions[k]
		out[k] = Properties{
			Name:          i.Name(),
			Concentration: c.concentration,
			Charge:        c.charge,
			Mobility:      c.mobility,
			Transference:  c.conductivity / tr.total,
			ZoneTransfer:  zoneTransfer(c, tr.total),
		}
	}
	return out, nil
}
