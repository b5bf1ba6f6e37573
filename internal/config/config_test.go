package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/database"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Temperature != 25 {
		t.Errorf("expected 25 degC, got %f", cfg.Temperature)
	}
	if cfg.Store != "dir" {
		t.Errorf("expected dir store, got %s", cfg.Store)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"hot", func(c *Config) { c.Temperature = 120 }},
		{"negative concentration", func(c *Config) { c.Buffer = buffer(ic("tris", -1)) }},
		{"empty name", func(c *Config) { c.Buffer = buffer(ic("", 0.1)) }},
		{"duplicate ion", func(c *Config) { c.Buffer = buffer(ic("tris", 0.1), ic("tris", 0.2)) }},
		{"unknown store", func(c *Config) { c.Store = "s3" }},
		{"no titrant", func(c *Config) { c.Titration = &TitrationConfig{TargetPH: 7} }},
		{"negative co2", func(c *Config) { c.CO2 = -1 }},
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"solver", func(c *Config) { c.Solver.MaxPHIterations = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Solver.PHMax = cfg.Solver.PHMin
	if err := cfg.Validate(); err == nil {
		t.Error("expected solver range error")
	}
	cfg = DefaultConfig()
	cfg.Solver.PHTolerance = -1
	if err := cfg.Solver.Validate(); !errors.Is(err, chem.ErrDomain) {
		t.Errorf("expected domain error, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ionize.yaml")
	cfg := GetPreset("tris-hcl")
	cfg.Temperature = 30
	cfg.Solver.MaxPHIterations = 50

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Temperature != 30 || loaded.Solver.MaxPHIterations != 50 {
		t.Errorf("round trip lost settings: %+v", loaded)
	}
	if loaded.Titration == nil || loaded.Titration.TargetPH != 8.0 {
		t.Errorf("round trip lost titration: %+v", loaded.Titration)
	}
	if len(loaded.Buffer.Ions) != 1 || loaded.Buffer.Ions[0].Name != "tris" {
		t.Errorf("round trip lost buffer: %+v", loaded.Buffer)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("tris-glycine")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if len(cfg.Buffer.Ions) != 2 {
		t.Errorf("expected 2 ions, got %d", len(cfg.Buffer.Ions))
	}

	cfg.Buffer.Ions[0].Concentration = 9
	if Presets["tris-glycine"].Buffer.Ions[0].Concentration == 9 {
		t.Error("preset modified through returned config")
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(names))
	}
	for k := 1; k < len(names); k++ {
		if names[k] < names[k-1] {
			t.Errorf("presets not sorted: %v", names)
		}
	}
}

func TestPresetsBuild(t *testing.T) {
	db := database.Default()
	for _, name := range ListPresets() {
		cfg := GetPreset(name)
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		s, err := cfg.Build(db)
		if err != nil {
			t.Errorf("%s: build failed: %v", name, err)
			continue
		}
		pH, err := s.PH()
		if err != nil || math.IsNaN(pH) {
			t.Errorf("%s: solve failed: %v", name, err)
		}
		if cfg.Titration != nil && math.Abs(pH-cfg.Titration.TargetPH) > 0.01 {
			t.Errorf("%s: expected pH %f, got %f", name, cfg.Titration.TargetPH, pH)
		}
	}
}

func TestBuildUnknownIon(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Buffer = buffer(ic("unobtainium", 0.1))
	if _, err := cfg.Build(database.Default()); !errors.Is(err, chem.ErrLookup) {
		t.Errorf("expected lookup error, got %v", err)
	}
}
