package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/awynne/lookout/internal/model"
)

// SaveAlertRule inserts or replaces a standing alert rule.
func (s *Store) SaveAlertRule(ctx context.Context, r *model.AlertRule) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}

	verticals, err := json.Marshal(r.Verticals)
	if err != nil {
		return fmt.Errorf("failed to marshal verticals: %w", err)
	}
	competitors, err := json.Marshal(r.Competitors)
	if err != nil {
		return fmt.Errorf("failed to marshal competitors: %w", err)
	}
	caps, err := json.Marshal(r.Capabilities)
	if err != nil {
		return fmt.Errorf("failed to marshal capabilities: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO alert_rules (id, user_id, name, verticals, competitors, capabilities, min_priority, enabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			verticals = excluded.verticals,
			competitors = excluded.competitors,
			capabilities = excluded.capabilities,
			min_priority = excluded.min_priority,
			enabled = excluded.enabled
	`, r.ID, r.UserID, r.Name, string(verticals), string(competitors), string(caps),
		string(r.MinPriority), r.Enabled, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save alert rule: %w", err)
	}
	return nil
}

// ActiveAlertRules returns all enabled alert rules.
func (s *Store) ActiveAlertRules(ctx context.Context) ([]model.AlertRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, verticals, competitors, capabilities, min_priority, enabled, created_at
		FROM alert_rules
		WHERE enabled = 1
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert rules: %w", err)
	}
	defer rows.Close()

	var rules []model.AlertRule
	for rows.Next() {
		var r model.AlertRule
		var verticals, competitors, caps string
		err := rows.Scan(&r.ID, &r.UserID, &r.Name, &verticals, &competitors, &caps,
			&r.MinPriority, &r.Enabled, &r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert rule: %w", err)
		}
		if err := json.Unmarshal([]byte(verticals), &r.Verticals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal verticals: %w", err)
		}
		if err := json.Unmarshal([]byte(competitors), &r.Competitors); err != nil {
			return nil, fmt.Errorf("failed to unmarshal competitors: %w", err)
		}
		if err := json.Unmarshal([]byte(caps), &r.Capabilities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal capabilities: %w", err)
		}
		rules = append(rules, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return rules, nil
}

// SaveNotification records that a rule matched a summary. Returns true when
// the notification is new; the (rule_id, summary_id) UNIQUE constraint makes
// repeat matches a no-op, so a pair notifies at most once ever.
func (s *Store) SaveNotification(ctx context.Context, ruleID, summaryID, userID string, now time.Time) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, rule_id, summary_id, user_id, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(rule_id, summary_id) DO NOTHING
	`, uuid.NewString(), ruleID, summaryID, userID, now)
	if err != nil {
		return false, fmt.Errorf("failed to save notification: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected: %w", err)
	}
	return rows > 0, nil
}

// NotificationCount returns the total notification count.
func (s *Store) NotificationCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notifications").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// NotificationExists reports whether a (rule, summary) pair already notified.
func (s *Store) NotificationExists(ctx context.Context, ruleID, summaryID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM notifications WHERE rule_id = ? AND summary_id = ?",
		ruleID, summaryID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check notification: %w", err)
	}
	return true, nil
}
