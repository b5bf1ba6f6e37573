package solution

import (
	"encoding/json"

	"github.com/san-kum/ionize/internal/ion"
)

// Record is the serialized form of a Solution.
type Record struct {
	Ions           []ion.Record `json:"ions" yaml:"ions"`
	Concentrations []float64    `json:"concentrations" yaml:"concentrations"`
	Temperature    float64      `json:"temperature" yaml:"temperature"`
}

func (s *Solution) Record() Record {
	r := Record{
		Ions:           make([]ion.Record, len(s.ions)),
		Concentrations: s.Concentrations(),
		Temperature:    s.temperature,
	}
	for k, i := range s.ions {
		r.Ions[k] = i.Record()
	}
	return r
}

// FromRecord rebuilds a Solution. Options after the record's temperature
// take precedence.
func FromRecord(r Record, opts ...Option) (*Solution, error) {
	ions := make([]*ion.Ion, len(r.Ions))
	for k, rec := range r.Ions {
		i, err := ion.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		ions[k] = i
	}
	all := append([]Option{WithTemperature(r.Temperature)}, opts...)
	return New(ions, r.Concentrations, all...)
}

func (s *Solution) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Record())
}

func (s *Solution) UnmarshalJSON(data []byte) error {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	built, err := FromRecord(r)
	if err != nil {
		return err
	}
	*s = *built
	return nil
}
