// Package alerts matches newly analyzed stories against standing alert
// rules and records notifications.
package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/awynne/lookout/internal/logging"
	"github.com/awynne/lookout/internal/model"
	"github.com/awynne/lookout/internal/store"
)

// Matcher evaluates summaries against active rules.
type Matcher struct {
	store *store.Store
	now   func() time.Time
}

// New creates a Matcher over the store.
func New(st *store.Store) *Matcher {
	return &Matcher{store: st, now: time.Now}
}

// Matches reports whether a rule matches a summary.
//
// Every filter is empty-or-contains. The priority gate: P0 stories always
// pass, P1 stories pass unless the rule demands P0 only, P2 stories never
// notify.
func Matches(rule model.AlertRule, sum model.StorySummary) bool {
	if len(rule.Verticals) > 0 && !containsString(rule.Verticals, sum.Vertical) {
		return false
	}
	if len(rule.Competitors) > 0 && !containsString(rule.Competitors, sum.Competitor) {
		return false
	}

	switch sum.Priority {
	case model.PriorityP0:
		// always passes the gate
	case model.PriorityP1:
		if rule.MinPriority == model.PriorityP0 {
			return false
		}
	default:
		return false
	}

	if len(rule.Capabilities) > 0 && !intersects(rule.Capabilities, sum.Capabilities) {
		return false
	}
	return true
}

// Run matches recent summaries against all active rules. A matched
// (rule, summary) pair notifies at most once ever - the store's unique
// constraint absorbs re-runs. Returns the number of new notifications.
func (m *Matcher) Run(ctx context.Context, batchSize int) (int, error) {
	rules, err := m.store.ActiveAlertRules(ctx)
	if err != nil {
		return 0, fmt.Errorf("load alert rules: %w", err)
	}
	if len(rules) == 0 {
		return 0, nil
	}

	sums, err := m.store.ListSummaries(ctx, store.SummaryFilter{Limit: batchSize})
	if err != nil {
		return 0, fmt.Errorf("load summaries: %w", err)
	}

	now := m.now()
	var created int
	for _, sum := range sums {
		for _, rule := range rules {
			if !Matches(rule, sum) {
				continue
			}
			isNew, err := m.store.SaveNotification(ctx, rule.ID, sum.ID, rule.UserID, now)
			if err != nil {
				return created, fmt.Errorf("save notification: %w", err)
			}
			if isNew {
				created++
				logging.Info("Alert matched",
					"rule", rule.Name,
					"summary", sum.ID,
					"priority", sum.Priority)
			}
		}
	}

	return created, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func intersects(a, b []model.Capability) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
