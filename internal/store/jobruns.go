package store

import (
	"context"
	"fmt"
	"time"

	"github.com/awynne/lookout/internal/model"
)

// StartJobRun inserts a RUNNING job row and returns its id.
func (s *Store) StartJobRun(ctx context.Context, name string, now time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"INSERT INTO job_runs (name, status, started_at) VALUES (?, ?, ?)",
		name, string(model.JobRunning), now)
	if err != nil {
		return 0, fmt.Errorf("failed to start job run: %w", err)
	}
	return result.LastInsertId()
}

// FinishJobRun writes the terminal state of a job run.
func (s *Store) FinishJobRun(ctx context.Context, id int64, status model.JobStatus, itemCount int, errMsg string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE job_runs SET status = ?, finished_at = ?, item_count = ?, error = ?
		WHERE id = ?
	`, string(status), now, itemCount, errMsg, id)
	if err != nil {
		return fmt.Errorf("failed to finish job run: %w", err)
	}
	return nil
}

// RecentJobRuns returns the latest job runs, newest first.
func (s *Store) RecentJobRuns(ctx context.Context, limit int) ([]model.JobRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, status, started_at, COALESCE(finished_at, started_at), item_count, COALESCE(error, '')
		FROM job_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query job runs: %w", err)
	}
	defer rows.Close()

	var runs []model.JobRun
	for rows.Next() {
		var r model.JobRun
		if err := rows.Scan(&r.ID, &r.Name, &r.Status, &r.StartedAt, &r.FinishedAt, &r.ItemCount, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan job run: %w", err)
		}
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}
