// Package store provides SQLite persistence for the pipeline.
//
// # Thread Safety
//
// Store is safe for concurrent use. The underlying sql.DB handles connection
// pooling and serialization. Idempotence guarantees (one link per
// (cluster, item), one notification per (rule, summary)) are carried by
// UNIQUE constraints rather than in-memory locking, so overlapping job
// runners cannot double-insert.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/awynne/lookout/internal/logging"
	"github.com/awynne/lookout/internal/model"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Store handles persistence for every pipeline entity.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store at the given path.
//
// The database is created if it doesn't exist, and migrations are applied
// automatically.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sources (
		name TEXT PRIMARY KEY,
		base_url TEXT NOT NULL,
		feed_url TEXT,
		kind TEXT NOT NULL DEFAULT 'rss',
		source_type TEXT NOT NULL,
		trust_tier TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS raw_items (
		id TEXT PRIMARY KEY,
		source_name TEXT NOT NULL,
		url TEXT NOT NULL UNIQUE,
		title TEXT,
		content TEXT,
		published_at DATETIME,
		fetched_at DATETIME NOT NULL,
		checksum TEXT NOT NULL DEFAULT '',
		processed INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_raw_items_processed ON raw_items(processed);
	CREATE INDEX IF NOT EXISTS idx_raw_items_source ON raw_items(source_name);

	CREATE TABLE IF NOT EXISTS story_clusters (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		competitor_key TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_clusters_created ON story_clusters(created_at DESC);

	CREATE TABLE IF NOT EXISTS story_item_links (
		cluster_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(cluster_id, item_id)
	);

	CREATE TABLE IF NOT EXISTS story_summaries (
		id TEXT PRIMARY KEY,
		cluster_id TEXT NOT NULL UNIQUE,
		competitor TEXT,
		vertical TEXT,
		capabilities TEXT NOT NULL DEFAULT '[]',
		summary TEXT,
		key_points TEXT NOT NULL DEFAULT '[]',
		why_it_matters TEXT,
		actions TEXT NOT NULL DEFAULT '[]',
		priority TEXT NOT NULL,
		confidence INTEGER NOT NULL,
		verification TEXT NOT NULL,
		citations TEXT NOT NULL DEFAULT '[]',
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_summaries_created ON story_summaries(created_at DESC);

	CREATE TABLE IF NOT EXISTS alert_rules (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		verticals TEXT NOT NULL DEFAULT '[]',
		competitors TEXT NOT NULL DEFAULT '[]',
		capabilities TEXT NOT NULL DEFAULT '[]',
		min_priority TEXT NOT NULL DEFAULT 'P1',
		enabled INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL,
		summary_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE(rule_id, summary_id)
	);

	CREATE TABLE IF NOT EXISTS job_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		status TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		item_count INTEGER NOT NULL DEFAULT 0,
		error TEXT
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SyncSources upserts the configured sources. Called once at the start of a
// run so stored items can join against trust tiers.
func (s *Store) SyncSources(ctx context.Context, sources []model.Source) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO sources (name, base_url, feed_url, kind, source_type, trust_tier)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			base_url = excluded.base_url,
			feed_url = excluded.feed_url,
			kind = excluded.kind,
			source_type = excluded.source_type,
			trust_tier = excluded.trust_tier
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, src := range sources {
		if _, err := stmt.Exec(src.Name, src.BaseURL, src.FeedURL, src.Kind, string(src.Type), string(src.Trust)); err != nil {
			return fmt.Errorf("failed to sync source %s: %w", src.Name, err)
		}
	}

	return tx.Commit()
}

// SaveRawItems saves fetched items in a single transaction, skipping ones
// whose URL is already present. Returns the number of new rows.
func (s *Store) SaveRawItems(ctx context.Context, items []model.RawItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is safe to call even after commit - it's a no-op
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO raw_items (id, source_name, url, title, content, published_at, fetched_at, checksum, processed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
		ON CONFLICT(url) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var saved int
	for _, item := range items {
		result, err := stmt.Exec(item.ID, item.SourceName, item.URL, item.Title, item.Content, nullableTime(item.Published), item.Fetched, item.Checksum)
		if err != nil {
			logging.Warn("Failed to save item", "url", item.URL, "error", err)
			continue
		}
		rows, err := result.RowsAffected()
		if err == nil && rows > 0 {
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return saved, nil
}

// ItemsNeedingChecksum retrieves items the normalize stage has not touched.
func (s *Store) ItemsNeedingChecksum(ctx context.Context, limit int) ([]model.RawItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_name, url, title, content, published_at, fetched_at, checksum, processed
		FROM raw_items
		WHERE checksum = ''
		ORDER BY fetched_at
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return scanRawItems(rows)
}

// UpdateNormalized writes the normalized text and checksum back to an item.
func (s *Store) UpdateNormalized(ctx context.Context, id, content, checksum string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE raw_items SET content = ?, checksum = ? WHERE id = ?",
		content, checksum, id)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item not found: %s", id)
	}
	return nil
}

// UnprocessedItems retrieves a bounded batch of normalized items the
// clusterer has not consumed yet, oldest first.
func (s *Store) UnprocessedItems(ctx context.Context, limit int) ([]model.RawItem, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source_name, url, title, content, published_at, fetched_at, checksum, processed
		FROM raw_items
		WHERE processed = 0 AND checksum != '' AND content != ''
		ORDER BY fetched_at
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	return scanRawItems(rows)
}

// MarkProcessed flips the processed flag on an item. The flag is never
// cleared, so an item passes through the clusterer exactly once.
func (s *Store) MarkProcessed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE raw_items SET processed = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark item processed: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item not found: %s", id)
	}
	return nil
}

func scanRawItems(rows *sql.Rows) ([]model.RawItem, error) {
	var items []model.RawItem
	for rows.Next() {
		var item model.RawItem
		var published sql.NullTime
		var title, content sql.NullString
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
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Title = title.String
		item.Content = content.String
		if published.Valid {
			item.Published = published.Time
		}
		items = append(items, item)
	}

	// Critical: check for errors from row iteration
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// ItemCount returns the total raw item count.
func (s *Store) ItemCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM raw_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

// UnprocessedCount returns how many normalized items await clustering.
func (s *Store) UnprocessedCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM raw_items WHERE processed = 0 AND checksum != ''").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unprocessed items: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for advanced queries.
//
// Use with caution - prefer using Store methods for common operations.
func (s *Store) DB() *sql.DB {
	return s.db
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
