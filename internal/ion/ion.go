package ion

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/san-kum/ionize/internal/activity"
	"github.com/san-kum/ionize/internal/aqueous"
	"github.com/san-kum/ionize/internal/chem"
)

// Ion is an immutable description of one chemical species.
type Ion struct {
	name         string
	valence      []int
	pKa          []float64
	mobility     []float64
	enthalpy     []float64
	heatCapacity []float64
	referenceT   float64
	corrections  []Correction
	model        *activity.Model
}

// Correction records a mobility whose sign was forced to match its charge.
type Correction struct {
	Valence   int
	Original  float64
	Corrected float64
}

func (c Correction) String() string {
	return fmt.Sprintf("z=%+d: mobility %g -> %g", c.Valence, c.Original, c.Corrected)
}

type options struct {
	enthalpy     []float64
	heatCapacity []float64
	referenceT   float64
	model        *activity.Model
}

// Option configures optional thermodynamic data.
type Option func(*options)

// WithEnthalpy sets the ionization enthalpy (J/mol) of each charge state.
func WithEnthalpy(dH []float64) Option {
	return func(o *options) { o.enthalpy = slices.Clone(dH) }
}

// WithHeatCapacity sets the ionization heat capacity (J/(mol K)) of each
// charge state. It requires WithEnthalpy.
func WithHeatCapacity(dCp []float64) Option {
	return func(o *options) { o.heatCapacity = slices.Clone(dCp) }
}

// WithReferenceTemperature sets the temperature (degC) of the reference data.
func WithReferenceTemperature(t float64) Option {
	return func(o *options) { o.referenceT = t }
}

// WithModel selects the activity model; the default is water.
func WithModel(m *activity.Model) Option {
	return func(o *options) { o.model = m }
}

// New validates the reference data and builds an Ion. The charge states may
// be given in any order; all per-state vectors are sorted with them.
func New(name string, valence []int, pKa, mobility []float64, opts ...Option) (*Ion, error) {
	o := options{referenceT: chem.ReferenceT, model: activity.Default}
	for _, opt := range opts {
		opt(&o)
	}
	if o.model == nil {
		o.model = activity.Default
	}

	if err := validate(name, valence, pKa, mobility, o); err != nil {
		return nil, err
	}

	i := &Ion{
		name:         name,
		valence:      slices.Clone(valence),
		pKa:          slices.Clone(pKa),
		mobility:     slices.Clone(mobility),
		enthalpy:     o.enthalpy,
		heatCapacity: o.heatCapacity,
		referenceT:   o.referenceT,
		model:        o.model,
	}
	i.sortStates()

	if err := i.checkLadder(); err != nil {
		return nil, err
	}
	i.forceSigns()
	return i, nil
}

// NewSimple builds a single-state ion.
func NewSimple(name string, valence int, pKa, mobility float64, opts ...Option) (*Ion, error) {
	return New(name, []int{valence}, []float64{pKa}, []float64{mobility}, opts...)
}

// MustNew is New for static tables; it panics on invalid data.
func MustNew(name string, valence []int, pKa, mobility []float64, opts ...Option) *Ion {
	i, err := New(name, valence, pKa, mobility, opts...)
	if err != nil {
		panic(err)
	}
	return i
}

func validate(name string, valence []int, pKa, mobility []float64, o options) error {
	op := "ion " + name
	if strings.TrimSpace(name) == "" {
		return chem.Domainf("ion", "name", "must not be empty")
	}
	if len(valence) == 0 {
		return chem.Domainf(op, "valence", "at least one charge state required")
	}
	if len(pKa) != len(valence) {
		return chem.Domainf(op, "pKa", "length %d does not match %d charge states", len(pKa), len(valence))
	}
	if len(mobility) != len(valence) {
		return chem.Domainf(op, "mobility", "length %d does not match %d charge states", len(mobility), len(valence))
	}
	if o.enthalpy != nil && len(o.enthalpy) != len(valence) {
		return chem.Domainf(op, "enthalpy", "length %d does not match %d charge states", len(o.enthalpy), len(valence))
	}
	if o.heatCapacity != nil {
		if o.enthalpy == nil {
			return chem.Domainf(op, "heat capacity", "requires enthalpy")
		}
		if len(o.heatCapacity) != len(valence) {
			return chem.Domainf(op, "heat capacity", "length %d does not match %d charge states", len(o.heatCapacity), len(valence))
		}
	}
	if aqueous.CheckTemperature(o.referenceT) != nil {
		return chem.Domainf(op, "reference temperature", "%.2f degC outside liquid water", o.referenceT)
	}
	for _, group := range [][]float64{pKa, mobility, o.enthalpy, o.heatCapacity} {
		for _, v := range group {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return chem.Domainf(op, "properties", "non-finite value %v", v)
			}
		}
	}
	return nil
}

type state struct {
	z        int
	pKa      float64
	mobility float64
	dH       float64
	dCp      float64
}

func (i *Ion) sortStates() {
	states := make([]state, len(i.valence))
	for k := range states {
		states[k] = state{z: i.valence[k], pKa: i.pKa[k], mobility: i.mobility[k]}
		if i.enthalpy != nil {
			states[k].dH = i.enthalpy[k]
		}
		if i.heatCapacity != nil {
			states[k].dCp = i.heatCapacity[k]
		}
	}
	sort.SliceStable(states, func(a, b int) bool { return states[a].z < states[b].z })

	for k, s := range states {
		i.valence[k] = s.z
		i.pKa[k] = s.pKa
		i.mobility[k] = s.mobility
		if i.enthalpy != nil {
			i.enthalpy[k] = s.dH
		}
		if i.heatCapacity != nil {
			i.heatCapacity[k] = s.dCp
		}
	}
}

// checkLadder requires consecutive non-zero charges and pKa values that fall
// as the charge rises.
func (i *Ion) checkLadder() error {
	op := "ion " + i.name
	for k, z := range i.valence {
		if z == 0 {
			return chem.Domainf(op, "valence", "charge state 0 is implicit and must not be listed")
		}
		if k == 0 {
			continue
		}
		prev := i.valence[k-1]
		want := prev + 1
		if want == 0 {
			want = 1
		}
		if z != want {
			return chem.Domainf(op, "valence", "charge states %v are not consecutive", i.valence)
		}
		if i.pKa[k] >= i.pKa[k-1] {
			return chem.Domainf(op, "pKa", "must decrease with increasing charge, got %v for %v", i.pKa, i.valence)
		}
	}
	return nil
}

func (i *Ion) forceSigns() {
	for k, z := range i.valence {
		m := i.mobility[k]
		if forced := math.Copysign(m, float64(z)); forced != m {
			i.corrections = append(i.corrections, Correction{Valence: z, Original: m, Corrected: forced})
			i.mobility[k] = forced
		}
	}
}

// Name returns the ion name.
func (i *Ion) Name() string { return i.name }

// Valence returns a copy of the sorted charge states.
func (i *Ion) Valence() []int { return slices.Clone(i.valence) }

// ReferencePKa returns a copy of the reference pKa values.
func (i *Ion) ReferencePKa() []float64 { return slices.Clone(i.pKa) }

// ReferenceMobility returns a copy of the sign-checked reference mobilities.
func (i *Ion) ReferenceMobility() []float64 { return slices.Clone(i.mobility) }

// Enthalpy returns a copy of the ionization enthalpies, or nil.
func (i *Ion) Enthalpy() []float64 { return slices.Clone(i.enthalpy) }

// HeatCapacity returns a copy of the ionization heat capacities, or nil.
func (i *Ion) HeatCapacity() []float64 { return slices.Clone(i.heatCapacity) }

// ReferenceTemperature returns the temperature of the reference data.
func (i *Ion) ReferenceTemperature() float64 { return i.referenceT }

// Corrections returns the sign corrections applied at construction.
func (i *Ion) Corrections() []Correction { return slices.Clone(i.corrections) }

// Model returns the activity model used for corrections.
func (i *Ion) Model() *activity.Model { return i.model }

// Ampholyte reports whether the ion has both acidic and basic states.
func (i *Ion) Ampholyte() bool {
	return i.valence[0] < 0 && i.valence[len(i.valence)-1] > 0
}

// Sign returns +1 for purely cationic ions, -1 for purely anionic ions and 0
// for ampholytes.
func (i *Ion) Sign() int {
	switch {
	case i.valence[0] > 0:
		return 1
	case i.valence[len(i.valence)-1] < 0:
		return -1
	default:
		return 0
	}
}

// Equal compares identity and reference data. Attached corrections and the
// activity model are not part of identity.
func (i *Ion) Equal(other *Ion) bool {
	if i == nil || other == nil {
		return i == other
	}
	return i.name == other.name &&
		slices.Equal(i.valence, other.valence) &&
		slices.Equal(i.pKa, other.pKa) &&
		slices.Equal(i.mobility, other.mobility) &&
		slices.Equal(i.enthalpy, other.enthalpy) &&
		slices.Equal(i.heatCapacity, other.heatCapacity) &&
		i.referenceT == other.referenceT
}

func (i *Ion) String() string {
	parts := make([]string, len(i.valence))
	for k, z := range i.valence {
		parts[k] = fmt.Sprintf("%+d: (pKa %.3f, mu %.3g)", z, i.pKa[k], i.mobility[k])
	}
	return fmt.Sprintf("Ion(%s; %s)", i.name, strings.Join(parts, ", "))
}

// valenceZero returns the charge ladder with the neutral state inserted.
func (i *Ion) valenceZero() []int {
	out := make([]int, 0, len(i.valence)+1)
	inserted := false
	for _, z := range i.valence {
		if !inserted && z > 0 {
			out = append(out, 0)
			inserted = true
		}
		out = append(out, z)
	}
	if !inserted {
		out = append(out, 0)
	}
	return out
}

func (i *Ion) neutralIndex() int {
	for k, z := range i.valence {
		if z > 0 {
			return k
		}
	}
	return len(i.valence)
}
