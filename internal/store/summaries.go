package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/awynne/lookout/internal/model"
)

// SaveSummary persists a finalized analysis. The cluster_id UNIQUE
// constraint rejects a second summary for the same cluster - re-analysis is
// not supported once a summary exists.
func (s *Store) SaveSummary(ctx context.Context, sum *model.StorySummary) error {
	if sum.ID == "" {
		sum.ID = uuid.NewString()
	}
	if sum.CreatedAt.IsZero() {
		sum.CreatedAt = time.Now()
	}

	caps, err := json.Marshal(sum.Capabilities)
	if err != nil {
		return fmt.Errorf("failed to marshal capabilities: %w", err)
	}
	points, err := json.Marshal(sum.KeyPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal key points: %w", err)
	}
	actions, err := json.Marshal(sum.Actions)
	if err != nil {
		return fmt.Errorf("failed to marshal actions: %w", err)
	}
	citations, err := json.Marshal(sum.Citations)
	if err != nil {
		return fmt.Errorf("failed to marshal citations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO story_summaries
			(id, cluster_id, competitor, vertical, capabilities, summary, key_points,
			 why_it_matters, actions, priority, confidence, verification, citations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sum.ID, sum.ClusterID, sum.Competitor, sum.Vertical, string(caps), sum.Summary,
		string(points), sum.WhyItMatters, string(actions), string(sum.Priority),
		sum.Confidence, string(sum.Verification), string(citations), sum.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}

// SummaryFilter narrows ListSummaries. Zero values mean "no filter".
type SummaryFilter struct {
	Priority   model.Priority
	Competitor string
	Since      time.Time
	Limit      int
}

// ListSummaries retrieves summaries matching the filter, most urgent and
// newest first. The query is assembled with squirrel because every filter
// field is optional.
func (s *Store) ListSummaries(ctx context.Context, f SummaryFilter) ([]model.StorySummary, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	q := sq.Select(
		"id", "cluster_id", "competitor", "vertical", "capabilities", "summary",
		"key_points", "why_it_matters", "actions", "priority", "confidence",
		"verification", "citations", "created_at").
		From("story_summaries").
		OrderBy("priority ASC", "created_at DESC").
		Limit(uint64(limit))

	if f.Priority != "" {
		q = q.Where(sq.Eq{"priority": string(f.Priority)})
	}
	if f.Competitor != "" {
		q = q.Where(sq.Eq{"competitor": f.Competitor})
	}
	if !f.Since.IsZero() {
		q = q.Where(sq.GtOrEq{"created_at": f.Since})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

func scanSummaries(rows *sql.Rows) ([]model.StorySummary, error) {
	var sums []model.StorySummary
	for rows.Next() {
		var sum model.StorySummary
		var competitor, vertical, summary, why sql.NullString
		var caps, points, actions, citations string
		err := rows.Scan(
			&sum.ID,
			&sum.ClusterID,
			&competitor,
			&vertical,
			&caps,
			&summary,
			&points,
			&why,
			&actions,
			&sum.Priority,
			&sum.Confidence,
			&sum.Verification,
			&citations,
			&sum.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		sum.Competitor = competitor.String
		sum.Vertical = vertical.String
		sum.Summary = summary.String
		sum.WhyItMatters = why.String
		if err := json.Unmarshal([]byte(caps), &sum.Capabilities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal capabilities: %w", err)
		}
		if err := json.Unmarshal([]byte(points), &sum.KeyPoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal key points: %w", err)
		}
		if err := json.Unmarshal([]byte(actions), &sum.Actions); err != nil {
			return nil, fmt.Errorf("failed to unmarshal actions: %w", err)
		}
		if err := json.Unmarshal([]byte(citations), &sum.Citations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal citations: %w", err)
		}
		sums = append(sums, sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return sums, nil
}

// SummaryCount returns the total summary count.
func (s *Store) SummaryCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM story_summaries").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count summaries: %w", err)
	}
	return count, nil
}

// SummaryCountByPriority returns summary counts keyed by priority.
func (s *Store) SummaryCountByPriority(ctx context.Context) (map[model.Priority]int, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT priority, COUNT(*) FROM story_summaries GROUP BY priority")
	if err != nil {
		return nil, fmt.Errorf("failed to count summaries: %w", err)
	}
	defer rows.Close()

	counts := make(map[model.Priority]int)
	for rows.Next() {
		var p string
		var n int
		if err := rows.Scan(&p, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[model.Priority(p)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return counts, nil
}
