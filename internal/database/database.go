// Package database provides named reference ions. The built-in table is
// embedded in the binary; Open layers a user YAML file on top of it.
package database

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/san-kum/ionize/internal/chem"
	"github.com/san-kum/ionize/internal/ion"
	"gopkg.in/yaml.v3"
)

//go:embed ions.yaml
var embedded []byte

type table struct {
	Ions []ion.Record `yaml:"ions"`
}

// Database maps normalized names to ions. It is read-only after
// construction and safe for concurrent use.
type Database struct {
	ions   map[string]*ion.Ion
	keys   []string
	source string
	log    zerolog.Logger
}

type Option func(*Database)

// WithLogger directs load warnings to l. The default discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Database) { d.log = l }
}

// New loads the embedded table.
func New(opts ...Option) (*Database, error) {
	d := &Database{
		ions:   make(map[string]*ion.Ion),
		source: "embedded",
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if err := d.merge(embedded, "embedded"); err != nil {
		return nil, err
	}
	d.index()
	return d, nil
}

// Open loads the embedded table and overlays the ions in the YAML file at
// path. Entries with an existing name replace the built-in ones.
func Open(path string, opts ...Option) (*Database, error) {
	d, err := New(opts...)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open ion table: %w", err)
	}
	if err := d.merge(data, path); err != nil {
		return nil, err
	}
	d.source = path
	d.index()
	return d, nil
}

var (
	defaultOnce sync.Once
	defaultDB   *Database
)

// Default returns the shared embedded database. It panics if the embedded
// table is invalid, which a unit test rules out.
func Default() *Database {
	defaultOnce.Do(func() {
		db, err := New()
		if err != nil {
			panic(err)
		}
		defaultDB = db
	})
	return defaultDB
}

func (d *Database) merge(data []byte, source string) error {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parse ion table %s: %w", source, err)
	}
	for _, rec := range t.Ions {
		i, err := ion.FromRecord(rec)
		if err != nil {
			return fmt.Errorf("ion table %s: %w", source, err)
		}
		for _, c := range i.Corrections() {
			d.log.Warn().
				Str("ion", i.Name()).
				Str("source", source).
				Stringer("correction", c).
				Msg("mobility sign corrected")
		}
		key := normalize(i.Name())
		if _, ok := d.ions[key]; ok {
			d.log.Debug().Str("ion", i.Name()).Str("source", source).Msg("ion replaced")
		}
		d.ions[key] = i
	}
	d.log.Debug().Str("source", source).Int("ions", len(t.Ions)).Msg("ion table loaded")
	return nil
}

func (d *Database) index() {
	d.keys = make([]string, 0, len(d.ions))
	for k := range d.ions {
		d.keys = append(d.keys, k)
	}
	sort.Strings(d.keys)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Keys returns every ion name in sorted order.
func (d *Database) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Database) Len() int       { return len(d.keys) }
func (d *Database) Source() string { return d.source }

// Load returns the named ion. Names are case-insensitive.
func (d *Database) Load(name string) (*ion.Ion, error) {
	i, ok := d.ions[normalize(name)]
	if !ok {
		return nil, &chem.LookupError{Name: name, Where: "database"}
	}
	return i, nil
}

// Get is Load for names known to exist; it panics otherwise.
func (d *Database) Get(name string) *ion.Ion {
	i, err := d.Load(name)
	if err != nil {
		panic(err)
	}
	return i
}

// Contains reports whether name resolves.
func (d *Database) Contains(name string) bool {
	_, ok := d.ions[normalize(name)]
	return ok
}

// LoadAll resolves every name, failing on the first unknown one.
func (d *Database) LoadAll(names []string) ([]*ion.Ion, error) {
	out := make([]*ion.Ion, len(names))
	for k, name := range names {
		i, err := d.Load(name)
		if err != nil {
			return nil, err
		}
		out[k] = i
	}
	return out, nil
}

const (
	matchExact = iota
	matchPrefix
	matchToken
	matchSubstring
)

// Search returns the names containing fragment, best matches first: exact,
// then prefix, then a word prefix, then any substring.
func (d *Database) Search(fragment string) []string {
	q := normalize(fragment)
	if q == "" {
		return d.Keys()
	}

	type hit struct {
		name  string
		score int
	}
	var hits []hit
	for _, name := range d.keys {
		if score, ok := rank(name, q); ok {
			hits = append(hits, hit{name, score})
		}
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].score < hits[b].score })

	out := make([]string, len(hits))
	for k, h := range hits {
		out[k] = h.name
	}
	return out
}

func rank(name, q string) (int, bool) {
	switch {
	case name == q:
		return matchExact, true
	case strings.HasPrefix(name, q):
		return matchPrefix, true
	}
	for _, tok := range strings.FieldsFunc(name, func(r rune) bool { return r == ' ' || r == '-' }) {
		if strings.HasPrefix(tok, q) {
			return matchToken, true
		}
	}
	if strings.Contains(name, q) {
		return matchSubstring, true
	}
	return 0, false
}
