package activity

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ionize/internal/chem"
)

func TestCoefficientLimits(t *testing.T) {
	m := New(nil)

	tests := []struct {
		name string
		z    int
		I    float64
	}{
		{"zero ionic strength", 2, 0},
		{"neutral", 0, 0.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := m.Coefficient(tt.z, tt.I, 25)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g != 1 {
				t.Errorf("expected gamma 1, got %f", g)
			}
		})
	}
}

func TestCoefficientDecreasesWithStrength(t *testing.T) {
	m := New(nil)
	prev := 1.0
	for _, I := range []float64{0.001, 0.01, 0.05, 0.1} {
		g, err := m.Coefficient(1, I, 25)
		if err != nil {
			t.Fatal(err)
		}
		if g >= prev {
			t.Errorf("expected gamma to decrease at I=%g: %f >= %f", I, g, prev)
		}
		prev = g
	}
}

func TestCoefficientChargeScaling(t *testing.T) {
	m := New(nil)
	g1, _ := m.Coefficient(1, 0.01, 25)
	g2, _ := m.Coefficient(-2, 0.01, 25)

	// log gamma scales with z^2
	if math.Abs(math.Log10(g2)-4*math.Log10(g1)) > 1e-12 {
		t.Errorf("expected z^2 scaling, got %g vs %g", math.Log10(g2), 4*math.Log10(g1))
	}
}

func TestCoefficientDomain(t *testing.T) {
	m := New(nil)
	if _, err := m.Coefficient(1, -0.1, 25); !errors.Is(err, chem.ErrDomain) {
		t.Errorf("expected domain error for negative ionic strength, got %v", err)
	}
	if _, err := m.Coefficient(1, 0.1, -10); !errors.Is(err, chem.ErrDomain) {
		t.Errorf("expected domain error below freezing, got %v", err)
	}
}

func TestDebyeHuckelAIncreasing(t *testing.T) {
	m := New(nil)
	prev := 0.0
	for temp := 10.0; temp <= 90; temp += 5 {
		a, err := m.DebyeHuckelA(temp)
		if err != nil {
			t.Fatal(err)
		}
		if a <= prev {
			t.Errorf("expected A to increase at %.0f", temp)
		}
		prev = a
	}
}

func TestMobilityTemperatureCorrection(t *testing.T) {
	m := New(nil)
	ref := 50e-9

	same, _ := m.MobilityTemperatureCorrection(ref, 25, 25)
	if same != ref {
		t.Errorf("expected unchanged mobility at reference, got %g", same)
	}

	prev := 0.0
	for temp := 10.0; temp <= 90; temp += 10 {
		mu, err := m.MobilityTemperatureCorrection(ref, temp, 25)
		if err != nil {
			t.Fatal(err)
		}
		if mu <= prev {
			t.Errorf("expected mobility to grow with temperature at %.0f", temp)
		}
		prev = mu
	}
}

func TestOnsagerReference(t *testing.T) {
	o, err := New(nil).OnsagerCoefficients(25)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(o.Relaxation-onsagerRelaxationRef) > 1e-12 {
		t.Errorf("expected relaxation %f, got %f", onsagerRelaxationRef, o.Relaxation)
	}
	if math.Abs(o.Electrophoretic-onsagerElectrophoreticRef) > 1e-20 {
		t.Errorf("expected electrophoretic %g, got %g", onsagerElectrophoreticRef, o.Electrophoretic)
	}
}
