package ion

import "github.com/san-kum/ionize/internal/chem"

// Context is an explicit ambient condition.
type Context struct {
	PH            float64 `json:"pH" yaml:"ph"`
	IonicStrength float64 `json:"ionic_strength" yaml:"ionic_strength"`
	Temperature   float64 `json:"temperature" yaml:"temperature"`
}

// DefaultContext is neutral water at the reference temperature.
func DefaultContext() Context {
	return Context{PH: 7, IonicStrength: 0, Temperature: chem.ReferenceT}
}

// Snapshot binds an Ion to one Context. It holds no mutable state.
type Snapshot struct {
	ion *Ion
	ctx Context
}

// At returns a Snapshot of the ion at ctx.
func (i *Ion) At(ctx Context) Snapshot {
	return Snapshot{ion: i, ctx: ctx}
}

func (s Snapshot) Ion() *Ion        { return s.ion }
func (s Snapshot) Context() Context { return s.ctx }

func (s Snapshot) PKa() ([]float64, error) {
	return s.ion.PKa(s.ctx.IonicStrength, s.ctx.Temperature)
}

func (s Snapshot) Acidity() ([]float64, error) {
	return s.ion.Acidity(s.ctx.IonicStrength, s.ctx.Temperature)
}

func (s Snapshot) IonizationFraction() ([]float64, error) {
	return s.ion.IonizationFraction(s.ctx.PH, s.ctx.IonicStrength, s.ctx.Temperature)
}

func (s Snapshot) Charge() (float64, error) {
	return s.ion.Charge(s.ctx.PH, s.ctx.IonicStrength, s.ctx.Temperature)
}

func (s Snapshot) Mobility() (float64, error) {
	return s.ion.Mobility(s.ctx.PH, s.ctx.IonicStrength, s.ctx.Temperature)
}

func (s Snapshot) Diffusivity() (float64, error) {
	return s.ion.Diffusivity(s.ctx.PH, s.ctx.IonicStrength, s.ctx.Temperature)
}

func (s Snapshot) MolarConductivity() (float64, error) {
	return s.ion.MolarConductivity(s.ctx.PH, s.ctx.IonicStrength, s.ctx.Temperature)
}
