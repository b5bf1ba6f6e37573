package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		kind       TEXT NOT NULL,
		label      TEXT NOT NULL,
		created_at TEXT NOT NULL,
		payload    BLOB NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS curves (
		run_id  TEXT PRIMARY KEY REFERENCES runs(id),
		columns BLOB NOT NULL,
		rows    BLOB NOT NULL
	)`,
}

// SQLiteStore keeps runs in a single SQLite file. Runs are stored as JSON
// payloads next to the columns List sorts on.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
	log  zerolog.Logger
}

func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	o := buildOptions(opts)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	return &SQLiteStore{db: db, path: path, log: o.log}, nil
}

func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) Save(run *Run, curve *Curve) (_ string, retErr error) {
	prepare(run)
	payload, err := json.Marshal(run)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.Exec(`INSERT INTO runs(id, kind, label, created_at, payload) VALUES(?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET kind=excluded.kind, label=excluded.label,
		created_at=excluded.created_at, payload=excluded.payload`,
		run.ID, run.Kind, run.Label, run.Timestamp.UTC().Format(time.RFC3339Nano), payload); err != nil {
		return "", fmt.Errorf("upsert run %s: %w", run.ID, err)
	}
	if curve != nil && len(curve.Columns) > 0 {
		columns, err := json.Marshal(curve.Columns)
		if err != nil {
			return "", err
		}
		rows, err := json.Marshal(curve.Rows)
		if err != nil {
			return "", err
		}
		if _, err := tx.Exec(`INSERT INTO curves(run_id, columns, rows) VALUES(?,?,?)
			ON CONFLICT(run_id) DO UPDATE SET columns=excluded.columns, rows=excluded.rows`,
			run.ID, columns, rows); err != nil {
			return "", fmt.Errorf("upsert curve %s: %w", run.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	s.log.Debug().Str("id", run.ID).Str("kind", run.Kind).Msg("run saved")
	return run.ID, nil
}

func (s *SQLiteStore) Load(id string) (*Run, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM runs WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("select run %s: %w", id, err)
	}
	var run Run
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("decode run %s: %w", id, err)
	}
	return &run, nil
}

func (s *SQLiteStore) LoadCurve(id string) (*Curve, error) {
	if _, err := s.Load(id); err != nil {
		return nil, err
	}
	var columns, rows []byte
	err := s.db.QueryRow(`SELECT columns, rows FROM curves WHERE run_id = ?`, id).Scan(&columns, &rows)
	if errors.Is(err, sql.ErrNoRows) {
		return &Curve{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select curve %s: %w", id, err)
	}
	curve := &Curve{}
	if err := json.Unmarshal(columns, &curve.Columns); err != nil {
		return nil, fmt.Errorf("decode curve %s: %w", id, err)
	}
	if err := json.Unmarshal(rows, &curve.Rows); err != nil {
		return nil, fmt.Errorf("decode curve %s: %w", id, err)
	}
	return curve, nil
}

func (s *SQLiteStore) List() ([]Run, error) {
	rows, err := s.db.Query(`SELECT id, payload FROM runs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("select runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			id      string
			payload []byte
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		var run Run
		if err := json.Unmarshal(payload, &run); err != nil {
			s.log.Warn().Err(err).Str("id", id).Msg("skipping unreadable run")
			continue
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
