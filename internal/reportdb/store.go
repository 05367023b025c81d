// Package reportdb persists the diagnostics and verdicts of checking runs in a
// SQLite database.
package reportdb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/funvibe/tyck/internal/diagnostics"
	"github.com/funvibe/tyck/internal/source"
)

// Verdict is the stored outcome of the checks of one function.
type Verdict struct {
	Fn         string
	Covered    bool
	Confluent  bool
	Terminates bool
}

// Run is everything recorded about one checking run.
type Run struct {
	ID       string
	File     string
	Started  time.Time
	Problems []*diagnostics.DiagnosticError
	Verdicts []Verdict
}

// RunSummary is a row of the run listing.
type RunSummary struct {
	ID      string
	File    string
	Started time.Time
	Errors  int
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id      TEXT PRIMARY KEY,
		file    TEXT NOT NULL,
		started INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS diagnostics (
		run_id   TEXT NOT NULL REFERENCES runs(id),
		seq      INTEGER NOT NULL,
		code     TEXT NOT NULL,
		severity TEXT NOT NULL,
		stage    TEXT NOT NULL,
		file     TEXT NOT NULL,
		line     INTEGER NOT NULL,
		col      INTEGER NOT NULL,
		message  TEXT NOT NULL,
		hint     TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
	`CREATE TABLE IF NOT EXISTS verdicts (
		run_id     TEXT NOT NULL REFERENCES runs(id),
		fn         TEXT NOT NULL,
		covered    INTEGER NOT NULL,
		confluent  INTEGER NOT NULL,
		terminates INTEGER NOT NULL,
		PRIMARY KEY (run_id, fn)
	)`,
}

// Store is an open report database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and brings its schema up to date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening report db %s: %w", path, err)
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrating report db %s: %w", path, err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun writes a run in one transaction.
func (s *Store) SaveRun(r Run) (err error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("saving run %s: %w", r.ID, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
			err = fmt.Errorf("saving run %s: %w", r.ID, err)
		}
	}()

	if _, err = tx.Exec(`INSERT INTO runs (id, file, started) VALUES (?, ?, ?)`,
		r.ID, r.File, r.Started.UnixNano()); err != nil {
		return err
	}
	for i, d := range r.Problems {
		if _, err = tx.Exec(`INSERT INTO diagnostics
			(run_id, seq, code, severity, stage, file, line, col, message, hint)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, i, string(d.Code), d.Severity.String(), d.Stage.String(),
			d.Pos.File, d.Pos.Line, d.Pos.Column, d.Message, d.Hint); err != nil {
			return err
		}
	}
	for _, v := range r.Verdicts {
		if _, err = tx.Exec(`INSERT INTO verdicts (run_id, fn, covered, confluent, terminates) VALUES (?, ?, ?, ?, ?)`,
			r.ID, v.Fn, v.Covered, v.Confluent, v.Terminates); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Diagnostics returns the diagnostics of a run in report order. Severity and
// stage come back from the code's catalog entry.
func (s *Store) Diagnostics(runID string) ([]*diagnostics.DiagnosticError, error) {
	rows, err := s.db.Query(`SELECT code, file, line, col, message, hint
		FROM diagnostics WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading diagnostics of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []*diagnostics.DiagnosticError
	for rows.Next() {
		var code, message, hint string
		var pos source.Pos
		if err := rows.Scan(&code, &pos.File, &pos.Line, &pos.Column, &message, &hint); err != nil {
			return nil, fmt.Errorf("loading diagnostics of %s: %w", runID, err)
		}
		d := diagnostics.NewError(diagnostics.ErrorCode(code), pos)
		d.Message, d.Hint = message, hint
		out = append(out, d)
	}
	return out, rows.Err()
}

// Verdicts returns the verdicts of a run ordered by function name.
func (s *Store) Verdicts(runID string) ([]Verdict, error) {
	rows, err := s.db.Query(`SELECT fn, covered, confluent, terminates
		FROM verdicts WHERE run_id = ? ORDER BY fn`, runID)
	if err != nil {
		return nil, fmt.Errorf("loading verdicts of %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Verdict
	for rows.Next() {
		var v Verdict
		if err := rows.Scan(&v.Fn, &v.Covered, &v.Confluent, &v.Terminates); err != nil {
			return nil, fmt.Errorf("loading verdicts of %s: %w", runID, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Runs lists stored runs, newest first, with their error counts.
func (s *Store) Runs() ([]RunSummary, error) {
	rows, err := s.db.Query(`SELECT r.id, r.file, r.started,
		(SELECT COUNT(*) FROM diagnostics d WHERE d.run_id = r.id AND d.severity = ?)
		FROM runs r ORDER BY r.started DESC`, diagnostics.SeverityError.String())
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started int64
		if err := rows.Scan(&r.ID, &r.File, &started, &r.Errors); err != nil {
			return nil, fmt.Errorf("listing runs: %w", err)
		}
		r.Started = time.Unix(0, started)
		out = append(out, r)
	}
	return out, rows.Err()
}
