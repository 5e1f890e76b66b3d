package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/awynne/lookout/internal/model"
)

// FindRecentCluster looks for a cluster whose canonical title contains the
// competitor key and which was created after cutoff. SQLite's LIKE is
// case-insensitive for ASCII, matching the lowercase competitor key against
// mixed-case titles.
func (s *Store) FindRecentCluster(ctx context.Context, competitorKey string, cutoff time.Time) (*model.StoryCluster, error) {
	var c model.StoryCluster
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, competitor_key, created_at, updated_at
		FROM story_clusters
		WHERE title LIKE '%' || ? || '%' AND created_at >= ?
		ORDER BY created_at DESC
		LIMIT 1
	`, competitorKey, cutoff).Scan(&c.ID, &c.Title, &c.CompetitorKey, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find cluster: %w", err)
	}
	return &c, nil
}

// CreateCluster inserts a new story cluster and returns it.
func (s *Store) CreateCluster(ctx context.Context, title, competitorKey string, now time.Time) (*model.StoryCluster, error) {
	c := &model.StoryCluster{
		ID:            uuid.NewString(),
		Title:         title,
		CompetitorKey: competitorKey,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO story_clusters (id, title, competitor_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Title, c.CompetitorKey, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create cluster: %w", err)
	}
	return c, nil
}

// TouchCluster bumps a cluster's updated_at.
func (s *Store) TouchCluster(ctx context.Context, id string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, "UPDATE story_clusters SET updated_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("failed to touch cluster: %w", err)
	}
	return nil
}

// LinkItem links an item into a cluster. Returns true when a new link was
// created; the UNIQUE constraint makes repeated links a silent no-op.
func (s *Store) LinkItem(ctx context.Context, clusterID, itemID string, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO story_item_links (cluster_id, item_id, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cluster_id, item_id) DO NOTHING
	`, clusterID, itemID, now)
	if err != nil {
		return false, fmt.Errorf("failed to link item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows > 0, nil
}

// ItemsForCluster retrieves a cluster's linked items joined with their
// source trust tier, in link order.
func (s *Store) ItemsForCluster(ctx context.Context, clusterID string) ([]model.ClusterItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.source_name, i.url, i.title, i.content, i.published_at, i.fetched_at, i.checksum, i.processed,
		       COALESCE(src.trust_tier, 'LOW')
		FROM story_item_links l
		JOIN raw_items i ON i.id = l.item_id
		LEFT JOIN sources src ON src.name = i.source_name
		WHERE l.cluster_id = ?
		ORDER BY l.created_at
	`, clusterID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cluster items: %w", err)
	}
	defer rows.Close()

	var items []model.ClusterItem
	for rows.Next() {
		var item model.ClusterItem
		var published sql.NullTime
		var title, content sql.NullString
		var trust string
		err := rows.Scan(
			&item.ID,
			&item.SourceName,
			&item.URL,
			&title,
			&content,
			&published,
			&item.Fetched,
			&item.Checksum,
			&item.Processed,
			&trust,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cluster item: %w", err)
		}
		item.Title = title.String
		item.Content = content.String
		if published.Valid {
			item.Published = published.Time
		}
		item.Trust = model.TrustTier(trust)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// ClustersNeedingAnalysis returns clusters that have no summary yet,
// oldest first.
func (s *Store) ClustersNeedingAnalysis(ctx context.Context, limit int) ([]model.StoryCluster, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.title, c.competitor_key, c.created_at, c.updated_at
		FROM story_clusters c
		LEFT JOIN story_summaries sm ON sm.cluster_id = c.id
		WHERE sm.id IS NULL
		ORDER BY c.created_at
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query clusters: %w", err)
	}
	defer rows.Close()

	var clusters []model.StoryCluster
	for rows.Next() {
		var c model.StoryCluster
		if err := rows.Scan(&c.ID, &c.Title, &c.CompetitorKey, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cluster: %w", err)
		}
		clusters = append(clusters, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return clusters, nil
}

// ClusterCount returns the total cluster count.
func (s *Store) ClusterCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM story_clusters").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clusters: %w", err)
	}
	return count, nil
}

// LinkCount returns the total story-item link count.
func (s *Store) LinkCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM story_item_links").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return count, nil
}
