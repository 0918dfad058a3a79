package db

import (
	"fmt"
	"time"
)

// IngestRun records one ingest command.
type IngestRun struct {
	RunID        string
	StartedAt    time.Time
	URLCount     int
	SuccessCount int
	FailedCount  int
	TopKeywords  string
}

// RecordIngestRun stores a finished run.
func (db *DB) RecordIngestRun(run IngestRun) error {
	_, err := db.Exec(`
		INSERT INTO ingest_runs (run_id, started_at, url_count, success_count, failed_count, top_keywords)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.RunID, toMillis(run.StartedAt), run.URLCount, run.SuccessCount, run.FailedCount, NewNullString(run.TopKeywords))
	if err != nil {
		return fmt.Errorf("failed to record ingest run: %w", err)
	}
	return nil
}

// ListIngestRuns returns the most recent runs first.
func (db *DB) ListIngestRuns(limit int) ([]IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.Query(`
		SELECT run_id, started_at, url_count, success_count, failed_count, COALESCE(top_keywords, '')
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []IngestRun
	for rows.Next() {
		var (
			r       IngestRun
			started int64
		)
		if err := rows.Scan(&r.RunID, &started, &r.URLCount, &r.SuccessCount, &r.FailedCount, &r.TopKeywords); err != nil {
			return nil, fmt.Errorf("failed to scan ingest run: %w", err)
		}
		r.StartedAt = fromMillis(started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
