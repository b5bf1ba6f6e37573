package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/solution"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir = "runs"
	DefaultStore   = "dir"
)

type Config struct {
	Temperature float64            `yaml:"temperature" validate:"gte=0,lte=100"`
	Buffer      BufferConfig       `yaml:"buffer"`
	Titration   *TitrationConfig   `yaml:"titration,omitempty"`
	CO2         float64            `yaml:"co2,omitempty" validate:"gte=0"`
	Solver      equilibrium.Config `yaml:"solver"`
	IonTable    string             `yaml:"ion_table,omitempty"`
	DataDir     string             `yaml:"data_dir" validate:"required"`
	Store       string             `yaml:"store" validate:"oneof=dir sqlite"`
}

type BufferConfig struct {
	Ions []IonConfig `yaml:"ions" validate:"unique=Name,dive"`
}

type IonConfig struct {
	Name          string  `yaml:"name" validate:"required"`
	Concentration float64 `yaml:"concentration" validate:"gte=0"`
}

type TitrationConfig struct {
	Titrant  string  `yaml:"titrant" validate:"required"`
	TargetPH float64 `yaml:"target_ph" validate:"gte=-4,lte=18"`
}

var validate = validator.New()

func DefaultConfig() *Config {
	return &Config{
		Temperature: chem.ReferenceT,
		Solver:      equilibrium.DefaultConfig(),
		DataDir:     DefaultDataDir,
		Store:       DefaultStore,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks struct constraints and the solver settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return c.Solver.Validate()
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Buffer.Ions = append([]IonConfig(nil), c.Buffer.Ions...)
	if c.Titration != nil {
		t := *c.Titration
		out.Titration = &t
	}
	return &out
}

func (c *Config) Names() []string {
	names := make([]string, len(c.Buffer.Ions))
	for k, ic := range c.Buffer.Ions {
		names[k] = ic.Name
	}
	return names
}

func (c *Config) Concentrations() []float64 {
	conc := make([]float64, len(c.Buffer.Ions))
	for k, ic := range c.Buffer.Ions {
		conc[k] = ic.Concentration
	}
	return conc
}

// Build resolves the buffer through db and applies the titration and CO2
// steps, in that order. opts override the configured temperature and solver.
func (c *Config) Build(db solution.Resolver, opts ...solution.Option) (*solution.Solution, error) {
	all := append([]solution.Option{
		solution.WithTemperature(c.Temperature),
		solution.WithSolver(equilibrium.New(c.Solver, nil)),
	}, opts...)
	s, err := solution.FromNames(db, c.Names(), c.Concentrations(), all...)
	if err != nil {
		return nil, err
	}
	if c.Titration != nil {
		titrant, err := db.Load(c.Titration.Titrant)
		if err != nil {
			return nil, err
		}
		if s, err = s.Titrate(titrant, c.Titration.TargetPH); err != nil {
			return nil, err
		}
	}
	if c.CO2 > 0 {
		if s, err = s.EquilibrateCO2(c.CO2); err != nil {
			return nil, err
		}
	}
	return s, nil
}
