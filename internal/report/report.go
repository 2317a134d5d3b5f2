// Package report persists validation runs to a SQLite findings history so
// regressions between runs can be compared from the command line. The
// validation core itself owns no persistence; this store is strictly a CLI
// collaborator.
package report

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arxml-community/arxml-dev-tools/internal/rules"
)

type Store struct {
	db *sql.DB
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	started_at  TEXT NOT NULL,
	elements    INTEGER NOT NULL,
	errors      INTEGER NOT NULL,
	warnings    INTEGER NOT NULL,
	infos       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS findings (
	run_id      INTEGER NOT NULL REFERENCES runs(id),
	path        TEXT NOT NULL,
	rule_id     TEXT NOT NULL,
	severity    TEXT NOT NULL,
	message     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS findings_run ON findings(run_id);
`

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open report db %s: %v", path, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize report db %s: %v", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores one validation pass and its findings; returns the run ID.
func (s *Store) RecordRun(elements int, findings []rules.Finding) (int64, error) {
	var errors, warnings, infos int
	for _, f := range findings {
		switch f.Severity {
		case rules.SeverityError:
			errors++
		case rules.SeverityWarning:
			warnings++
		default:
			infos++
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO runs (started_at, elements, errors, warnings, infos) VALUES (?, ?, ?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339), elements, errors, warnings, infos)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare("INSERT INTO findings (run_id, path, rule_id, severity, message) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, f := range findings {
		if _, err := stmt.Exec(runID, f.Path, f.RuleID, f.Severity.String(), f.Message); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

type Run struct {
	ID        int64
	StartedAt time.Time
	Elements  int
	Errors    int
	Warnings  int
	Infos     int
}

// Runs lists the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		"SELECT id, started_at, elements, errors, warnings, infos FROM runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		if err := rows.Scan(&r.ID, &started, &r.Elements, &r.Errors, &r.Warnings, &r.Infos); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Findings returns the stored findings of one run.
func (s *Store) Findings(runID int64) ([]rules.Finding, error) {
	rows, err := s.db.Query(
		"SELECT path, rule_id, severity, message FROM findings WHERE run_id = ? ORDER BY path, rule_id", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rules.Finding
	for rows.Next() {
		var f rules.Finding
		var severity string
		if err := rows.Scan(&f.Path, &f.RuleID, &severity, &f.Message); err != nil {
			return nil, err
		}
		switch severity {
		case "error":
			f.Severity = rules.SeverityError
		case "warning":
			f.Severity = rules.SeverityWarning
		default:
			f.Severity = rules.SeverityInfo
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
