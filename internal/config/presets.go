package config

import "sort"

func buffer(ions ...IonConfig) BufferConfig { return BufferConfig{Ions: ions} }
func ic(name string, c float64) IonConfig  { return IonConfig{Name: name, Concentration: c} }

// Presets are common electrophoresis and laboratory buffers.
var Presets = map[string]*Config{
	"tris-hcl": {
		Buffer:    buffer(ic("tris", 0.05)),
		Titration: &TitrationConfig{Titrant: "hydrochloric acid", TargetPH: 8.0},
	},
	"tris-glycine": {
		Buffer: buffer(ic("tris", 0.025), ic("glycine", 0.192)),
	},
	"tris-acetate": {
		Buffer: buffer(ic("tris", 0.04), ic("acetic acid", 0.02)),
	},
	"tris-borate": {
		Buffer: buffer(ic("tris", 0.089), ic("boric acid", 0.089)),
	},
	"phosphate": {
		Buffer:    buffer(ic("phosphoric acid", 0.01)),
		Titration: &TitrationConfig{Titrant: "sodium", TargetPH: 7.4},
	},
	"acetate": {
		Buffer:    buffer(ic("acetic acid", 0.1)),
		Titration: &TitrationConfig{Titrant: "sodium", TargetPH: 4.75},
	},
	"mes-histidine": {
		Buffer: buffer(ic("mes", 0.025), ic("histidine", 0.025)),
	},
	"hepes": {
		Buffer:    buffer(ic("hepes", 0.025)),
		Titration: &TitrationConfig{Titrant: "sodium", TargetPH: 7.5},
	},
	"citrate": {
		Buffer:    buffer(ic("citric acid", 0.01)),
		Titration: &TitrationConfig{Titrant: "sodium", TargetPH: 5.0},
	},
	"rainwater": {
		CO2: 4.2e-4,
	},
}

// GetPreset returns a complete, independent Config for the named preset,
// or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Buffer.Ions = append([]IonConfig(nil), p.Buffer.Ions...)
	if p.Titration != nil {
		t := *p.Titration
		cfg.Titration = &t
	}
	cfg.CO2 = p.CO2
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
