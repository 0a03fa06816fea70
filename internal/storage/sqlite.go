// Package storage provides the SQLite implementation of RunStore.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/simstream/internal/models"
)

// SQLiteStorage implements RunStore using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

var _ RunStore = (*SQLiteStorage)(nil)

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		reference TEXT NOT NULL,
		stream TEXT NOT NULL,
		reference_fingerprint TEXT,
		reference_rows INTEGER NOT NULL,
		topk INTEGER NOT NULL,
		min_score REAL NOT NULL,
		events INTEGER NOT NULL,
		matches INTEGER NOT NULL,
		output_path TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);

	CREATE TABLE IF NOT EXISTS run_results (
		run_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		event_id TEXT NOT NULL,
		text TEXT NOT NULL,
		matches TEXT NOT NULL,
		top1_score REAL NOT NULL,
		is_match INTEGER NOT NULL,
		scored_at TIMESTAMP NOT NULL,
		PRIMARY KEY (run_id, seq),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordRun inserts run and its results in one transaction. Results keep their order.
func (s *SQLiteStorage) RecordRun(ctx context.Context, run *models.Run, results []models.ScoreResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, reference, stream, reference_fingerprint,
			reference_rows, topk, min_score, events, matches, output_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Reference, run.Stream, run.ReferenceFingerprint,
		run.ReferenceRows, run.TopK, run.MinScore, run.Events, run.Matches, run.OutputPath,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO run_results (run_id, seq, event_id, text, matches, top1_score, is_match, scored_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range results {
		r := &results[i]
		matchesJSON, err := json.Marshal(r.Matches)
		if err != nil {
			return fmt.Errorf("failed to marshal matches: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, r.EventID, r.Text, string(matchesJSON),
			r.Top1Score, r.IsMatch, r.ScoredAt); err != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, err)
		}
	}
	return tx.Commit()
}

const runColumns = `id, started_at, finished_at, reference, stream, reference_fingerprint,
	reference_rows, topk, min_score, events, matches, output_path`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var run models.Run
	var fingerprint sql.NullString
	err := row.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.Reference, &run.Stream, &fingerprint,
		&run.ReferenceRows, &run.TopK, &run.MinScore, &run.Events, &run.Matches, &run.OutputPath)
	if err != nil {
		return nil, err
	}
	run.ReferenceFingerprint = fingerprint.String
	return &run, nil
}

// GetRun returns a run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, &models.NotFoundError{Kind: "run", Path: id}
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns runs newest first with offset and limit.
func (s *SQLiteStorage) ListRuns(ctx context.Context, offset, limit int) ([]*models.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its results.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_results WHERE run_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return &models.NotFoundError{Kind: "run", Path: id}
	}
	return tx.Commit()
}

// GetResults returns the results of a run in scoring order.
func (s *SQLiteStorage) GetResults(ctx context.Context, runID string) ([]models.ScoreResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, text, matches, top1_score, is_match, scored_at
		 FROM run_results WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.ScoreResult
	for rows.Next() {
		var r models.ScoreResult
		var matchesJSON string
		if err := rows.Scan(&r.EventID, &r.Text, &matchesJSON, &r.Top1Score, &r.IsMatch, &r.ScoredAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(matchesJSON), &r.Matches); err != nil {
			return nil, fmt.Errorf("failed to unmarshal matches: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// CountRuns returns the total number of recorded runs.
func (s *SQLiteStorage) CountRuns(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}

// CountResults returns the total number of stored results across runs.
func (s *SQLiteStorage) CountResults(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM run_results`).Scan(&count)
	return count, err
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
