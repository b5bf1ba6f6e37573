package ion

import (
	"encoding/json"
	"slices"

	"github.com/san-kum/ionize/internal/chem"
)

// Record is the serialized form of an Ion, shared by the JSON encoding and
// the YAML ion tables.
type Record struct {
	Name                 string    `json:"name" yaml:"name"`
	Valence              []int     `json:"valence" yaml:"valence"`
	PKa                  []float64 `json:"reference_pKa" yaml:"pka"`
	Mobility             []float64 `json:"reference_mobility" yaml:"mobility"`
	Enthalpy             []float64 `json:"enthalpy,omitempty" yaml:"enthalpy,omitempty"`
	HeatCapacity         []float64 `json:"heat_capacity,omitempty" yaml:"heat_capacity,omitempty"`
	ReferenceTemperature *float64  `json:"reference_temperature,omitempty" yaml:"reference_temperature,omitempty"`
}

// Record returns the serialized form.
func (i *Ion) Record() Record {
	t := i.referenceT
	return Record{
		Name:                 i.name,
		Valence:              slices.Clone(i.valence),
		PKa:                  slices.Clone(i.pKa),
		Mobility:             slices.Clone(i.mobility),
		Enthalpy:             slices.Clone(i.enthalpy),
		HeatCapacity:         slices.Clone(i.heatCapacity),
		ReferenceTemperature: &t,
	}
}

// FromRecord rebuilds an Ion. A missing reference temperature means 25 degC.
func FromRecord(r Record, opts ...Option) (*Ion, error) {
	t := chem.ReferenceT
	if r.ReferenceTemperature != nil {
		t = *r.ReferenceTemperature
	}
	all := []Option{WithReferenceTemperature(t)}
	if r.Enthalpy != nil {
		all = append(all, WithEnthalpy(r.Enthalpy))
	}
	if r.HeatCapacity != nil {
		all = append(all, WithHeatCapacity(r.HeatCapacity))
	}
	return New(r.Name, r.Valence, r.PKa, r.Mobility, append(all, opts...)...)
}

func (i *Ion) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Record())
}

func (i *Ion) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	built, err := FromRecord(r)
	if err != nil {
		return err
	}
	*i = *built
	return nil
}
