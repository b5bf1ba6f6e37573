// Package storage persists computed runs: the solution that was solved,
// its equilibrium, solver metrics and an optional tabular curve.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/san-kum/ionize/internal/equilibrium"
	"github.com/san-kum/ionize/internal/solution"
)

var ErrNotFound = errors.New("storage: run not found")

// Run kinds written by the CLI.
const (
	KindSolve     = "solve"
	KindTitrate   = "titrate"
	KindCurve     = "curve"
	KindSweep     = "sweep"
	KindOptimize  = "optimize"
	KindBenchmark = "bench"
	KindScenario  = "scenario"
	KindTolerance = "tolerance"
)

type Run struct {
	ID        string             `json:"id"`
	Kind      string             `json:"kind"`
	Label     string             `json:"label"`
	Timestamp time.Time          `json:"timestamp"`
	Solution  solution.Record    `json:"solution"`
	State     equilibrium.State  `json:"state"`
	Metrics   map[string]float64 `json:"metrics,omitempty"`
}

// Curve is a table of numeric columns, such as a titration curve.
type Curve struct {
	Columns []string
	Rows    [][]float64
}

// Column returns the values of the named column, or nil.
func (c *Curve) Column(name string) []float64 {
	for k, col := range c.Columns {
		if col != name {
			continue
		}
		out := make([]float64, len(c.Rows))
		for j, row := range c.Rows {
			if k < len(row) {
				out[j] = row[k]
			}
		}
		return out
	}
	return nil
}

type Store interface {
	// Save stores run with an optional curve and returns its ID. A run
	// without ID or timestamp gets fresh ones.
	Save(run *Run, curve *Curve) (string, error)
	Load(id string) (*Run, error)
	// LoadCurve returns an empty Curve for runs saved without one.
	LoadCurve(id string) (*Curve, error)
	// List returns all runs, oldest first.
	List() ([]Run, error)
	Close() error
}

type options struct {
	log zerolog.Logger
}

type Option func(*options)

func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

func buildOptions(opts []Option) options {
	o := options{log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Open returns the store of the given kind rooted at dir: "dir" keeps one
// directory per run, "sqlite" a single runs.db.
func Open(kind, dir string, opts ...Option) (Store, error) {
	switch kind {
	case "", "dir":
		s := NewDirStore(dir, opts...)
		if err := s.Init(); err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		return OpenSQLite(filepath.Join(dir, "runs.db"), opts...)
	default:
		return nil, fmt.Errorf("storage: unknown store %q", kind)
	}
}

func prepare(run *Run) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Timestamp.IsZero() {
		run.Timestamp = time.Now().UTC()
	}
}

// NewRun builds a Run from a solved Solution.
func NewRun(kind, label string, s *solution.Solution, metrics map[string]float64) (*Run, error) {
	state, err := s.Equilibrium()
	if err != nil {
		return nil, err
	}
	return &Run{
		Kind:     kind,
		Label:    label,
		Solution: s.Record(),
		State:    state,
		Metrics:  metrics,
	}, nil
}
