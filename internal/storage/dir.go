package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	metadataFile = "metadata.json"
	curveFile    = "curve.csv"
)

// DirStore keeps each run in its own directory as metadata.json plus an
// optional curve.csv.
type DirStore struct {
	baseDir string
	log     zerolog.Logger
}

func NewDirStore(baseDir string, opts ...Option) *DirStore {
	o := buildOptions(opts)
	return &DirStore{baseDir: baseDir, log: o.log}
}

func (s *DirStore) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *DirStore) Dir() string { return s.baseDir }

func (s *DirStore) Save(run *Run, curve *Curve) (string, error) {
	prepare(run)
	runDir := filepath.Join(s.baseDir, run.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(run); err != nil {
		return "", err
	}

	if curve != nil && len(curve.Columns) > 0 {
		if err := writeCurve(filepath.Join(runDir, curveFile), curve); err != nil {
			return "", err
		}
	}
	s.log.Debug().Str("id", run.ID).Str("kind", run.Kind).Msg("run saved")
	return run.ID, nil
}

func writeCurve(path string, curve *Curve) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(curve.Columns); err != nil {
		return err
	}
	for _, row := range curve.Rows {
		rec := make([]string, len(row))
		for k, v := range row {
			rec[k] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *DirStore) List() ([]Run, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Run{}, nil
		}
		return nil, err
	}

	runs := make([]Run, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, err := s.Load(entry.Name())
		if err != nil {
			s.log.Warn().Err(err).Str("dir", entry.Name()).Msg("skipping unreadable run")
			continue
		}
		runs = append(runs, *run)
	}
	sort.SliceStable(runs, func(a, b int) bool { return runs[a].Timestamp.Before(runs[b].Timestamp) })
	return runs, nil
}

func (s *DirStore) Load(id string) (*Run, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}

func (s *DirStore) LoadCurve(id string) (*Curve, error) {
	if _, err := s.Load(id); err != nil {
		return nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, id, curveFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Curve{}, nil
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Curve{}, nil
	}

	curve := &Curve{Columns: records[0], Rows: make([][]float64, 0, len(records)-1)}
	for _, record := range records[1:] {
		row := make([]float64, len(record))
		for k, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("curve %s: %w", id, err)
			}
			row[k] = v
		}
		curve.Rows = append(curve.Rows, row)
	}
	return curve, nil
}

func (s *DirStore) Close() error { return nil }
