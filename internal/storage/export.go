package storage

import (
	"encoding/json"
	"io"
)

// Export is the self-contained JSON form of a run and its curve.
type Export struct {
	*Run
	Columns []string    `json:"columns,omitempty"`
	Rows    [][]float64 `json:"rows,omitempty"`
}

// ExportJSON writes run and curve as one indented JSON document.
func ExportJSON(w io.Writer, run *Run, curve *Curve) error {
	data := Export{Run: run}
	if curve != nil {
		data.Columns = curve.Columns
		data.Rows = curve.Rows
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// ExportStored loads a run from s and writes it with ExportJSON.
func ExportStored(w io.Writer, s Store, id string) error {
	run, err := s.Load(id)
	if err != nil {
		return err
	}
	curve, err := s.LoadCurve(id)
	if err != nil {
		return err
	}
	return ExportJSON(w, run, curve)
}
