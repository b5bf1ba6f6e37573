package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/ionize/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseIons(t *testing.T) {
	ions, err := parseIons([]string{"tris=0.05", "hydrochloric acid = 0.02"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(ions) != 2 {
		t.Fatalf("expected 2 ions, got %d", len(ions))
	}
	if ions[1].Name != "hydrochloric acid" || ions[1].Concentration != 0.02 {
		t.Errorf("expected hydrochloric acid at 0.02, got %+v", ions[1])
	}

	for _, bad := range []string{"tris", "tris=abc", "=0.1"} {
		if _, err := parseIons([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseRange(t *testing.T) {
	lo, hi, n, err := parseRange("0.001:0.1:25")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if lo != 0.001 || hi != 0.1 || n != 25 {
		t.Errorf("expected 0.001:0.1:25, got %g:%g:%d", lo, hi, n)
	}
	for _, bad := range []string{"1:2", "a:2:3", "1:b:3", "1:2:c"} {
		if _, _, _, err := parseRange(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestSolveStoresRun(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "solve", "acetic acid=0.01", "--data", dir)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for _, want := range []string{"pH", "conductivity", "acetic acid", "run id"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q:\n%s", want, out)
		}
	}

	st, err := storage.Open("dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Kind != storage.KindSolve {
		t.Fatalf("expected one solve run, got %+v", runs)
	}
	if runs[0].State.PH < 3.2 || runs[0].State.PH > 3.5 {
		t.Errorf("expected pH near 3.4, got %g", runs[0].State.PH)
	}
}

func TestSolveNoSave(t *testing.T) {
	dir := t.TempDir()
	if _, err := run(t, "solve", "--preset", "tris-hcl", "--save=false", "--data", dir); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("expected nothing stored, got %d entries", len(entries))
	}
}

func TestUnknownPreset(t *testing.T) {
	if _, err := run(t, "solve", "--preset", "nope", "--data", t.TempDir()); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestUnknownIon(t *testing.T) {
	if _, err := run(t, "solve", "unobtainium=0.1", "--data", t.TempDir()); err == nil {
		t.Error("expected error for unknown ion")
	}
}

func TestCurveShowExport(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, "curve", "acetic acid=0.01", "--max", "0.02", "--steps", "11", "--store", "sqlite", "--data", dir)
	if err != nil {
		t.Fatalf("curve failed: %v", err)
	}
	if !strings.Contains(out, "steepest rise") {
		t.Errorf("expected steepest rise in output:\n%s", out)
	}

	st, err := storage.Open("sqlite", dir)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := st.List()
	st.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %d (%v)", len(runs), err)
	}
	id := runs[0].ID

	out, err = run(t, "show", id[:8], "--store", "sqlite", "--data", dir)
	if err != nil {
		t.Fatalf("show failed: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("expected show to print the full id:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "run.json")
	if _, err := run(t, "export", id, "--out", path, "--store", "sqlite", "--data", dir); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var exported struct {
		ID   string      `json:"id"`
		Rows [][]float64 `json:"rows"`
	}
	if err := json.Unmarshal(data, &exported); err != nil {
		t.Fatalf("invalid export: %v", err)
	}
	if exported.ID != id || len(exported.Rows) != 11 {
		t.Errorf("expected run %s with 11 rows, got %s with %d", id, exported.ID, len(exported.Rows))
	}
}

func TestShowMissing(t *testing.T) {
	if _, err := run(t, "show", "deadbeef", "--data", t.TempDir()); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestSearch(t *testing.T) {
	out, err := run(t, "search", "acid", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "acetic acid") {
		t.Errorf("expected acetic acid in results:\n%s", out)
	}
	if strings.Contains(out, "sodium") {
		t.Errorf("expected sodium to be filtered out:\n%s", out)
	}
}

func TestIon(t *testing.T) {
	out, err := run(t, "ion", "glycine", "--ph", "7", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("ion failed: %v", err)
	}
	if !strings.Contains(out, "isoelectric point") {
		t.Errorf("expected an isoelectric point for glycine:\n%s", out)
	}
}

func TestPresets(t *testing.T) {
	out, err := run(t, "presets", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("presets failed: %v", err)
	}
	for _, want := range []string{"tris-hcl", "rainwater", "hydrochloric acid to pH 8.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestTitrate(t *testing.T) {
	out, err := run(t, "titrate", "tris=0.05", "--titrant", "hydrochloric acid", "--ph", "8", "--save=false", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("titrate failed: %v", err)
	}
	if !strings.Contains(out, "add ") {
		t.Errorf("expected titrant amount in output:\n%s", out)
	}
}

func TestOptimize(t *testing.T) {
	out, err := run(t, "optimize", "tris=0.05",
		"--vary", "hydrochloric acid", "--range", "0:0.05:51", "--ph", "8",
		"--save=false", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("optimize failed: %v", err)
	}
	if !strings.Contains(out, "hydrochloric acid = ") {
		t.Errorf("expected best concentration in output:\n%s", out)
	}

	if _, err := run(t, "optimize", "tris=0.05", "--vary", "sodium", "--data", t.TempDir()); err == nil {
		t.Error("expected error for --vary without --range")
	}
}

func TestSweep(t *testing.T) {
	out, err := run(t, "sweep", "temperature", "tris=0.05", "hydrochloric acid=0.025",
		"--from", "10", "--to", "40", "--steps", "4", "--save=false", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if !strings.Contains(out, "BETA") {
		t.Errorf("expected sweep table:\n%s", out)
	}
	if _, err := run(t, "sweep", "pressure", "--data", t.TempDir()); err == nil {
		t.Error("expected error for unknown sweep")
	}
}

func TestBench(t *testing.T) {
	out, err := run(t, "bench", "acetate", "--reps", "3", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("bench failed: %v", err)
	}
	if !strings.Contains(out, "ionize_solver_solves_total") {
		t.Errorf("expected prometheus totals in output:\n%s", out)
	}
}

func TestScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := "name: gels\nsteps:\n  - name: running\n    preset: tris-glycine\n  - name: stacking\n    preset: tris-hcl\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	out, err := run(t, "scenario", path, "--data", dir)
	if err != nil {
		t.Fatalf("scenario failed: %v", err)
	}
	if !strings.Contains(out, "stacking") {
		t.Errorf("expected step table:\n%s", out)
	}

	st, err := storage.Open("dir", dir)
	if err != nil {
		t.Fatal(err)
	}
	runs, err := st.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 stored runs, got %d", len(runs))
	}
}

func TestTolerance(t *testing.T) {
	out, err := run(t, "tolerance", "--preset", "acetate", "--trials", "20", "--seed", "7", "--save=false", "--data", t.TempDir())
	if err != nil {
		t.Fatalf("tolerance failed: %v", err)
	}
	if !strings.Contains(out, "std dev") {
		t.Errorf("expected stats in output:\n%s", out)
	}
}
