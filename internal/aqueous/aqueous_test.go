package aqueous

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ionize/internal/chem"
)

func sweep() []float64 {
	temps := make([]float64, 0, 50)
	for i := 0; i < 50; i++ {
		temps = append(temps, 10+80*float64(i)/49)
	}
	return temps
}

func TestMonotonicity(t *testing.T) {
	w := Water{}
	tests := []struct {
		name       string
		fn         func(float64) (float64, error)
		increasing bool
	}{
		{"dielectric", w.Dielectric, false},
		{"viscosity", w.Viscosity, false},
		{"dissociation", w.Dissociation, true},
		{"debye_huckel", w.DebyeHuckel, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := math.NaN()
			for _, temp := range sweep() {
				v, err := tt.fn(temp)
				if err != nil {
					t.Fatalf("unexpected error at %.1f: %v", temp, err)
				}
				if !math.IsNaN(prev) {
					if tt.increasing && v <= prev {
						t.Errorf("expected increase at %.1f: %g <= %g", temp, v, prev)
					}
					if !tt.increasing && v >= prev {
						t.Errorf("expected decrease at %.1f: %g >= %g", temp, v, prev)
					}
				}
				prev = v
			}
		})
	}
}

func TestReferenceValues(t *testing.T) {
	w := Water{}

	visc, _ := w.Viscosity(25)
	if math.Abs(visc-8.9e-4) > 1e-5 {
		t.Errorf("expected viscosity ~8.9e-4, got %g", visc)
	}

	kw, _ := w.Dissociation(25)
	if pKw := -math.Log10(kw); math.Abs(pKw-14.0) > 0.02 {
		t.Errorf("expected pKw ~14, got %f", pKw)
	}

	a, _ := w.DebyeHuckel(25)
	if a != debyeHuckelRef {
		t.Errorf("expected A(25) = %f, got %f", debyeHuckelRef, a)
	}

	h, _ := w.HenryCO2(25)
	if math.Abs(h-henryCO2Ref) > 1e-12 {
		t.Errorf("expected Henry constant %f, got %f", henryCO2Ref, h)
	}
}

func TestTemperatureDomain(t *testing.T) {
	w := Water{}
	for _, temp := range []float64{-5, 120, math.NaN()} {
		if _, err := w.Viscosity(temp); !errors.Is(err, chem.ErrDomain) {
			t.Errorf("expected domain error at %v, got %v", temp, err)
		}
	}
}
