// Package cluster groups unprocessed raw items into story clusters.
//
// Items are keyed by detected competitor (first configured match wins,
// "unknown" when nothing matches) and folded into an existing cluster when
// one for the same competitor was created within the recency window.
// Link creation is idempotent - re-running over already-processed items is
// a no-op - and every consumed item is marked processed exactly once.
package cluster

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/awynne/lookout/internal/classify"
	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/logging"
	"github.com/awynne/lookout/internal/model"
	"github.com/awynne/lookout/internal/store"
)

// clusterWindow bounds how old a cluster may be and still accumulate new
// items for the same competitor.
const clusterWindow = 24 * time.Hour

// Result reports what a clustering pass actually did, so callers can detect
// no-op runs.
type Result struct {
	NewClusters    int
	NewLinks       int
	ItemsProcessed int
}

// Clusterer runs the dedupe-and-cluster stage.
type Clusterer struct {
	store *store.Store
	now   func() time.Time
}

// New creates a Clusterer over the store.
func New(st *store.Store) *Clusterer {
	return &Clusterer{store: st, now: time.Now}
}

// group keeps batch items for one competitor key in arrival order.
type group struct {
	key   string
	items []model.RawItem
}

// Run consumes one bounded batch of unprocessed items. Repeated invocation
// drains the backlog; a single pass never blocks on an unbounded queue.
func (c *Clusterer) Run(ctx context.Context, snap *config.Snapshot) (Result, error) {
	var res Result

	items, err := c.store.UnprocessedItems(ctx, snap.Fetch.BatchSize)
	if err != nil {
		return res, fmt.Errorf("load unprocessed items: %w", err)
	}
	if len(items) == 0 {
		return res, nil
	}

	// Group by competitor key, preserving encounter order.
	var groups []*group
	byKey := make(map[string]*group)
	for _, item := range items {
		text := strings.ToLower(item.Title + " " + item.Content)
		key := classify.CompetitorKey(snap, text)
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.items = append(g.items, item)
	}

	now := c.now()
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}

		target, err := c.resolveCluster(ctx, g, now, &res)
		if err != nil {
			return res, err
		}

		for _, item := range g.items {
			created, err := c.store.LinkItem(ctx, target.ID, item.ID, now)
			if err != nil {
				return res, fmt.Errorf("link item %s: %w", item.ID, err)
			}
			if created {
				res.NewLinks++
			}
			// Processed regardless of whether the link was new.
			if err := c.store.MarkProcessed(ctx, item.ID); err != nil {
				return res, fmt.Errorf("mark processed %s: %w", item.ID, err)
			}
			res.ItemsProcessed++
		}
	}

	logging.Info("Clustering pass complete",
		"items", res.ItemsProcessed,
		"new_clusters", res.NewClusters,
		"new_links", res.NewLinks)

	return res, nil
}

// resolveCluster reuses a recent cluster for the group's competitor or
// creates a new one. Reuse is by title substring within the recency window -
// a known-weak join key kept for compatibility; the competitor key is also
// stored on the cluster row.
func (c *Clusterer) resolveCluster(ctx context.Context, g *group, now time.Time, res *Result) (*model.StoryCluster, error) {
	existing, err := c.store.FindRecentCluster(ctx, g.key, now.Add(-clusterWindow))
	if err != nil {
		return nil, fmt.Errorf("find cluster for %q: %w", g.key, err)
	}
	if existing != nil {
		if err := c.store.TouchCluster(ctx, existing.ID, now); err != nil {
			return nil, fmt.Errorf("touch cluster %s: %w", existing.ID, err)
		}
		return existing, nil
	}

	title := g.items[0].Title
	if title == "" {
		title = fmt.Sprintf("%s Updates - %s", g.key, now.Format("2006-01-02"))
	}

	created, err := c.store.CreateCluster(ctx, title, g.key, now)
	if err != nil {
		return nil, fmt.Errorf("create cluster for %q: %w", g.key, err)
	}
	res.NewClusters++
	return created, nil
}
