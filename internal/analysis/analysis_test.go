package analysis

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/database"
	"github.com/san-kum/ionize/internal/solution"
)

var db = database.Default()

func mustSolution(t *testing.T, names []string, conc []float64) *solution.Solution {
	t.Helper()
	s, err := solution.FromNames(db, names, conc)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestTitrationCurve(t *testing.T) {
	base := mustSolution(t, []string{"acetic acid"}, []float64{0.01})
	curve, err := TitrationCurve(context.Background(), base, db.Get("sodium"), 0.02, 41)
	if err != nil {
		t.Fatal(err)
	}
	if len(curve.Points) != 41 {
		t.Fatalf("expected 41 points, got %d", len(curve.Points))
	}
	if curve.Points[0].X != 0 || curve.Points[40].X != 0.02 {
		t.Errorf("expected span [0, 0.02], got [%g, %g]", curve.Points[0].X, curve.Points[40].X)
	}
	for k := 1; k < len(curve.Points); k++ {
		if curve.Points[k].PH <= curve.Points[k-1].PH {
			t.Errorf("pH not increasing at %d: %f -> %f", k, curve.Points[k-1].PH, curve.Points[k].PH)
		}
	}

	x, pH := curve.Steepest()
	if math.Abs(x-0.01) > 0.001 {
		t.Errorf("expected equivalence near 0.01 M, got %g", x)
	}
	if pH < 6.5 || pH > 11 {
		t.Errorf("expected basic equivalence pH, got %f", pH)
	}
}

func TestTemperatureSweep(t *testing.T) {
	base := mustSolution(t, []string{"tris", "hydrochloric acid"}, []float64{0.05, 0.025})
	sweep, err := TemperatureSweep(context.Background(), base, 10, 40, 7)
	if err != nil {
		t.Fatal(err)
	}
	pH := sweep.PH()
	for k := 1; k < len(pH); k++ {
		if pH[k] >= pH[k-1] {
			t.Errorf("expected tris pH to fall with temperature, got %v", pH)
			break
		}
	}
	if sweep.Param != "temperature" {
		t.Errorf("expected param temperature, got %s", sweep.Param)
	}
}

func TestIonicStrengthSweep(t *testing.T) {
	base := mustSolution(t, []string{"acetic acid", "sodium"}, []float64{0.02, 0.01})
	sweep, err := IonicStrengthSweep(context.Background(), base, db.Get("sodium"), db.Get("hydrochloric acid"), 0.1, 6)
	if err != nil {
		t.Fatal(err)
	}
	for k := 1; k < len(sweep.Points); k++ {
		if sweep.Points[k].IonicStrength <= sweep.Points[k-1].IonicStrength {
			t.Errorf("ionic strength not increasing at %d", k)
		}
		if sweep.Points[k].Conductivity <= sweep.Points[k-1].Conductivity {
			t.Errorf("conductivity not increasing at %d", k)
		}
	}
}

func TestDilutionSweep(t *testing.T) {
	base := mustSolution(t, []string{"hydrochloric acid"}, []float64{0.01})
	sweep, err := DilutionSweep(context.Background(), base, 1, 1000, 4)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{2.04, 3.0, 4.0, 5.0}
	for k, p := range sweep.Points {
		if math.Abs(p.PH-want[k]) > 0.05 {
			t.Errorf("factor %g: expected pH %f, got %f", p.X, want[k], p.PH)
		}
	}
}

func TestSweepTable(t *testing.T) {
	base := mustSolution(t, []string{"hydrochloric acid"}, []float64{0.01})
	sweep, err := DilutionSweep(context.Background(), base, 1, 10, 2)
	if err != nil {
		t.Fatal(err)
	}
	cols := sweep.Columns()
	rows := sweep.Rows()
	if cols[0] != "dilution" || len(cols) != 5 {
		t.Errorf("unexpected columns %v", cols)
	}
	if len(rows) != 2 || len(rows[0]) != len(cols) {
		t.Fatalf("unexpected table shape %dx%d", len(rows), len(rows[0]))
	}
	if rows[1][1] != sweep.Points[1].PH {
		t.Errorf("expected pH column %f, got %f", sweep.Points[1].PH, rows[1][1])
	}

	short := &Sweep{Points: []Point{{X: 1, PH: 7}}}
	if x, _ := short.Steepest(); !math.IsNaN(x) {
		t.Errorf("expected NaN for single point, got %f", x)
	}
}

func TestSweepInvalid(t *testing.T) {
	ctx := context.Background()
	base := solution.Water()
	sodium := db.Get("sodium")

	tests := []struct {
		name string
		run  func() error
	}{
		{"one step", func() error { _, err := TitrationCurve(ctx, base, sodium, 0.1, 1); return err }},
		{"nil titrant", func() error { _, err := TitrationCurve(ctx, base, nil, 0.1, 5); return err }},
		{"no amount", func() error { _, err := TitrationCurve(ctx, base, sodium, 0, 5); return err }},
		{"reversed temperature", func() error { _, err := TemperatureSweep(ctx, base, 40, 10, 5); return err }},
		{"nil salt", func() error { _, err := IonicStrengthSweep(ctx, base, sodium, nil, 0.1, 5); return err }},
		{"zero dilution", func() error { _, err := DilutionSweep(ctx, base, 0, 10, 5); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, chem.ErrDomain) {
				t.Errorf("expected domain error, got %v", err)
			}
		})
	}

	if _, err := TemperatureSweep(ctx, base, 10, 120, 5); !errors.Is(err, chem.ErrDomain) {
		t.Errorf("expected domain error above boiling, got %v", err)
	}
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	base := mustSolution(t, []string{"acetic acid"}, []float64{0.01})
	if _, err := TitrationCurve(ctx, base, db.Get("sodium"), 0.02, 20); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestParallelFor(t *testing.T) {
	for _, n := range []int{0, 1, 3, 17, 256} {
		seen := make([]int32, n)
		err := ParallelFor(context.Background(), n, func(k int) error {
			atomic.AddInt32(&seen[k], 1)
			return nil
		})
		if err != nil {
			t.Fatal(err)
		}
		for k, c := range seen {
			if c != 1 {
				t.Errorf("n=%d: index %d visited %d times", n, k, c)
			}
		}
	}

	boom := errors.New("boom")
	err := ParallelFor(context.Background(), 100, func(k int) error {
		if k == 50 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}

	var calls int32
	err = ParallelFor(context.Background(), 4096, func(k int) error {
		atomic.AddInt32(&calls, 1)
		if k == 0 {
			return boom
		}
		time.Sleep(100 * time.Microsecond)
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if n := atomic.LoadInt32(&calls); n >= 4096 {
		t.Errorf("expected the other chunks to stop after the failure, got %d calls", n)
	}
}

func BenchmarkTitrationCurve(b *testing.B) {
	base, err := solution.FromNames(db, []string{"phosphoric acid"}, []float64{0.01})
	if err != nil {
		b.Fatal(err)
	}
	sodium := db.Get("sodium")
	for i := 0; i < b.N; i++ {
		if _, err := TitrationCurve(context.Background(), base, sodium, 0.03, 64); err != nil {
			b.Fatal(err)
		}
	}
}
