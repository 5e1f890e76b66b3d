package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/awynne/lookout/internal/model"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testItem(id, url string) model.RawItem {
	return model.RawItem{
		ID:         id,
		SourceName: "Test Source",
		URL:        url,
		Title:      "Title " + id,
		Content:    "Content " + id,
		Published:  time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Fetched:    time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC),
		Checksum:   "sum-" + id,
	}
}

func TestSaveRawItemsDedupesByURL(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	items := []model.RawItem{
		testItem("a", "https://example.com/a"),
		testItem("b", "https://example.com/b"),
	}

	saved, err := s.SaveRawItems(ctx, items)
	if err != nil {
		t.Fatalf("SaveRawItems: %v", err)
	}
	if saved != 2 {
		t.Errorf("saved = %d, want 2", saved)
	}

	// Same URLs again, different ids: nothing new should land.
	dup := []model.RawItem{
		testItem("c", "https://example.com/a"),
		testItem("d", "https://example.com/new"),
	}
	saved, err = s.SaveRawItems(ctx, dup)
	if err != nil {
		t.Fatalf("SaveRawItems: %v", err)
	}
	if saved != 1 {
		t.Errorf("saved = %d, want 1 (only the new URL)", saved)
	}

	count, err := s.ItemCount(ctx)
	if err != nil {
		t.Fatalf("ItemCount: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestSaveRawItemsNilPublished(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	item := testItem("a", "https://example.com/a")
	item.Published = time.Time{}
	if _, err := s.SaveRawItems(ctx, []model.RawItem{item}); err != nil {
		t.Fatalf("SaveRawItems: %v", err)
	}

	got, err := s.ItemsNeedingChecksum(ctx, 10)
	if err != nil {
		t.Fatalf("ItemsNeedingChecksum: %v", err)
	}
	// checksum is set, so the normalize queue is empty
	if len(got) != 0 {
		t.Errorf("got %d items needing checksum, want 0", len(got))
	}
}

func TestNormalizeQueue(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	item := testItem("a", "https://example.com/a")
	item.Checksum = ""
	if _, err := s.SaveRawItems(ctx, []model.RawItem{item}); err != nil {
		t.Fatalf("SaveRawItems: %v", err)
	}

	pending, err := s.ItemsNeedingChecksum(ctx, 10)
	if err != nil {
		t.Fatalf("ItemsNeedingChecksum: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "a" {
		t.Fatalf("pending = %v, want item a", pending)
	}

	if err := s.UpdateNormalized(ctx, "a", "clean text", "abc123"); err != nil {
		t.Fatalf("UpdateNormalized: %v", err)
	}

	pending, err = s.ItemsNeedingChecksum(ctx, 10)
	if err != nil {
		t.Fatalf("ItemsNeedingChecksum: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("item should leave the queue after normalization")
	}

	ready, err := s.UnprocessedItems(ctx, 10)
	if err != nil {
		t.Fatalf("UnprocessedItems: %v", err)
	}
	if len(ready) != 1 || ready[0].Content != "clean text" {
		t.Fatalf("ready = %v, want normalized item", ready)
	}

	if err := s.UpdateNormalized(ctx, "missing", "x", "y"); err == nil {
		t.Errorf("UpdateNormalized on unknown id should error")
	}
}

func TestMarkProcessed(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if _, err := s.SaveRawItems(ctx, []model.RawItem{testItem("a", "https://example.com/a")}); err != nil {
		t.Fatalf("SaveRawItems: %v", err)
	}

	if err := s.MarkProcessed(ctx, "a"); err != nil {
		t.Fatalf("MarkProcessed: %v", err)
	}

	ready, err := s.UnprocessedItems(ctx, 10)
	if err != nil {
		t.Fatalf("UnprocessedItems: %v", err)
	}
	if len(ready) != 0 {
		t.Errorf("processed item should not reappear")
	}

	if err := s.MarkProcessed(ctx, "missing"); err == nil {
		t.Errorf("MarkProcessed on unknown id should error")
	}
}

func TestSyncSourcesUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	src := model.Source{
		Name:    "Wire",
		BaseURL: "https://wire.example.com",
		Kind:    "rss",
		Type:    model.SourceIndustry,
		Trust:   model.TrustMedium,
	}
	if err := s.SyncSources(ctx, []model.Source{src}); err != nil {
		t.Fatalf("SyncSources: %v", err)
	}

	// Second sync with a changed tier must update in place.
	src.Trust = model.TrustHigh
	if err := s.SyncSources(ctx, []model.Source{src}); err != nil {
		t.Fatalf("SyncSources: %v", err)
	}

	var tier string
	err := s.db.QueryRowContext(ctx,
		"SELECT trust_tier FROM sources WHERE name = ?", "Wire").Scan(&tier)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if tier != "HIGH" {
		t.Errorf("trust_tier = %q, want HIGH", tier)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sources").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("sources = %d, want 1", count)
	}
}

func TestLinkItemIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	c, err := s.CreateCluster(ctx, "ServiceTitan Updates - 2026-03-01", "servicetitan", now)
	if err != nil {
		t.Fatalf("CreateCluster: %v", err)
	}

	created, err := s.LinkItem(ctx, c.ID, "item-1", now)
	if err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	if !created {
		t.Errorf("first link should report created")
	}

	created, err = s.LinkItem(ctx, c.ID, "item-1", now)
	if err != nil {
		t.Fatalf("LinkItem repeat: %v", err)
	}
	if created {
		t.Errorf("repeat link should be a no-op")
	}

	links, err := s.LinkCount(ctx)
	if err != nil {
		t.Fatalf("LinkCount: %v", err)
	}
	if links != 1 {
		t.Errorf("links = %d, want 1", links)
	}
}

func TestFindRecentCluster(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old, err := s.CreateCluster(ctx, "Jobber Updates - old", "jobber", now.Add(-48*time.Hour))
	if err != nil {
		t.Fatalf("CreateCluster: %v", err)
	}
	fresh, err := s.CreateCluster(ctx, "Jobber Updates - fresh", "jobber", now.Add(-1*time.Hour))
	if err != nil {
		t.Fatalf("CreateCluster: %v", err)
	}

	got, err := s.FindRecentCluster(ctx, "jobber", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FindRecentCluster: %v", err)
	}
	if got == nil || got.ID != fresh.ID {
		t.Errorf("got %v, want fresh cluster %s", got, fresh.ID)
	}

	got, err = s.FindRecentCluster(ctx, "servicetitan", now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("FindRecentCluster: %v", err)
	}
	if got != nil {
		t.Errorf("unmatched key should return nil, got %v", got)
	}

	// Only the stale cluster exists inside a wider window? Shift the cutoff
	// back and the old one is still beaten by the fresh one on recency.
	got, err = s.FindRecentCluster(ctx, "jobber", now.Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("FindRecentCluster: %v", err)
	}
	if got == nil || got.ID != fresh.ID {
		t.Errorf("most recent cluster should win, got %v want %s", got, fresh.ID)
	}
	_ = old
}

func TestItemsForClusterTrustJoin(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := s.SyncSources(ctx, []model.Source{{
		Name:    "Test Source",
		BaseURL: "https://example.com",
		Kind:    "rss",
		Type:    model.SourceIndustry,
		Trust:   model.TrustHigh,
	}}); err != nil {
		t.Fatalf("SyncSources: %v", err)
	}

	known := testItem("a", "https://example.com/a")
	orphan := testItem("b", "https://example.com/b")
	orphan.SourceName = "Gone Source"
	if _, err := s.SaveRawItems(ctx, []model.RawItem{known, orphan}); err != nil {
		t.Fatalf("SaveRawItems: %v", err)
	}

	c, err := s.CreateCluster(ctx, "cluster", "key", now)
	if err != nil {
		t.Fatalf("CreateCluster: %v", err)
	}
	if _, err := s.LinkItem(ctx, c.ID, "a", now); err != nil {
		t.Fatalf("LinkItem: %v", err)
	}
	if _, err := s.LinkItem(ctx, c.ID, "b", now.Add(time.Second)); err != nil {
		t.Fatalf("LinkItem: %v", err)
	}

	items, err := s.ItemsForCluster(ctx, c.ID)
	if err != nil {
		t.Fatalf("ItemsForCluster: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Trust != model.TrustHigh {
		t.Errorf("known source trust = %v, want HIGH", items[0].Trust)
	}
	if items[1].Trust != model.TrustLow {
		t.Errorf("orphaned source trust = %v, want LOW default", items[1].Trust)
	}
}

func TestSummaryRoundTripAndFilter(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mk := func(cluster, competitor string, p model.Priority) *model.StorySummary {
		return &model.StorySummary{
			ClusterID:    cluster,
			Competitor:   competitor,
			Vertical:     "hvac",
			Capabilities: []model.Capability{model.CapVoiceAgent},
			Summary:      "summary text",
			KeyPoints:    []string{"point one"},
			WhyItMatters: "because",
			Actions:      []string{"act"},
			Priority:     p,
			Confidence:   4,
			Verification: model.Verified,
			Citations: []model.Citation{
				{URL: "https://example.com", Title: "src", RetrievedAt: now},
			},
			CreatedAt: now,
		}
	}

	if err := s.SaveSummary(ctx, mk("c1", "ServiceTitan", model.PriorityP0)); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}
	if err := s.SaveSummary(ctx, mk("c2", "Jobber", model.PriorityP2)); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	// One summary per cluster: a second for c1 must be rejected.
	if err := s.SaveSummary(ctx, mk("c1", "ServiceTitan", model.PriorityP1)); err == nil {
		t.Errorf("duplicate cluster summary should error")
	}

	all, err := s.ListSummaries(ctx, SummaryFilter{})
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d summaries, want 2", len(all))
	}
	if all[0].Priority != model.PriorityP0 {
		t.Errorf("P0 should sort first, got %v", all[0].Priority)
	}
	if len(all[0].Capabilities) != 1 || all[0].Capabilities[0] != model.CapVoiceAgent {
		t.Errorf("capabilities lost in round trip: %v", all[0].Capabilities)
	}
	if len(all[0].Citations) != 1 || all[0].Citations[0].URL != "https://example.com" {
		t.Errorf("citations lost in round trip: %v", all[0].Citations)
	}

	byComp, err := s.ListSummaries(ctx, SummaryFilter{Competitor: "Jobber"})
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(byComp) != 1 || byComp[0].Competitor != "Jobber" {
		t.Errorf("competitor filter failed: %v", byComp)
	}

	byPrio, err := s.ListSummaries(ctx, SummaryFilter{Priority: model.PriorityP0})
	if err != nil {
		t.Fatalf("ListSummaries: %v", err)
	}
	if len(byPrio) != 1 || byPrio[0].Priority != model.PriorityP0 {
		t.Errorf("priority filter failed: %v", byPrio)
	}
}

func TestClustersNeedingAnalysis(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	done, err := s.CreateCluster(ctx, "analyzed", "a", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreateCluster: %v", err)
	}
	pending, err := s.CreateCluster(ctx, "pending", "b", now)
	if err != nil {
		t.Fatalf("CreateCluster: %v", err)
	}

	if err := s.SaveSummary(ctx, &model.StorySummary{
		ClusterID:    done.ID,
		Priority:     model.PriorityP2,
		Confidence:   3,
		Verification: model.Verified,
		CreatedAt:    now,
	}); err != nil {
		t.Fatalf("SaveSummary: %v", err)
	}

	got, err := s.ClustersNeedingAnalysis(ctx, 10)
	if err != nil {
		t.Fatalf("ClustersNeedingAnalysis: %v", err)
	}
	if len(got) != 1 || got[0].ID != pending.ID {
		t.Errorf("got %v, want only the pending cluster", got)
	}
}

func TestNotificationIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	created, err := s.SaveNotification(ctx, "rule-1", "sum-1", "user-1", now)
	if err != nil {
		t.Fatalf("SaveNotification: %v", err)
	}
	if !created {
		t.Errorf("first notification should report created")
	}

	created, err = s.SaveNotification(ctx, "rule-1", "sum-1", "user-1", now)
	if err != nil {
		t.Fatalf("SaveNotification repeat: %v", err)
	}
	if created {
		t.Errorf("repeat notification should be a no-op")
	}

	exists, err := s.NotificationExists(ctx, "rule-1", "sum-1")
	if err != nil {
		t.Fatalf("NotificationExists: %v", err)
	}
	if !exists {
		t.Errorf("notification should exist")
	}

	count, err := s.NotificationCount(ctx)
	if err != nil {
		t.Fatalf("NotificationCount: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestAlertRuleUpsertAndActive(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	r := &model.AlertRule{
		UserID:      "u1",
		Name:        "voice watch",
		Verticals:   []string{"hvac"},
		Competitors: []string{"ServiceTitan"},
		MinPriority: model.PriorityP1,
		Enabled:     true,
	}
	if err := s.SaveAlertRule(ctx, r); err != nil {
		t.Fatalf("SaveAlertRule: %v", err)
	}
	if r.ID == "" {
		t.Fatalf("SaveAlertRule should assign an id")
	}

	r.Enabled = false
	if err := s.SaveAlertRule(ctx, r); err != nil {
		t.Fatalf("SaveAlertRule update: %v", err)
	}

	active, err := s.ActiveAlertRules(ctx)
	if err != nil {
		t.Fatalf("ActiveAlertRules: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("disabled rule should not be active: %v", active)
	}

	r.Enabled = true
	if err := s.SaveAlertRule(ctx, r); err != nil {
		t.Fatalf("SaveAlertRule re-enable: %v", err)
	}
	active, err = s.ActiveAlertRules(ctx)
	if err != nil {
		t.Fatalf("ActiveAlertRules: %v", err)
	}
	if len(active) != 1 || active[0].Name != "voice watch" {
		t.Errorf("active = %v, want the re-enabled rule", active)
	}
	if len(active[0].Verticals) != 1 || active[0].Verticals[0] != "hvac" {
		t.Errorf("verticals lost in round trip: %v", active[0].Verticals)
	}
}

func TestJobRunLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	start := time.Now().UTC()

	id, err := s.StartJobRun(ctx, "fetch_sources", start)
	if err != nil {
		t.Fatalf("StartJobRun: %v", err)
	}

	runs, err := s.RecentJobRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentJobRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != model.JobRunning {
		t.Fatalf("runs = %v, want one RUNNING", runs)
	}

	if err := s.FinishJobRun(ctx, id, model.JobFailed, 0, "boom", start.Add(time.Second)); err != nil {
		t.Fatalf("FinishJobRun: %v", err)
	}

	runs, err = s.RecentJobRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentJobRuns: %v", err)
	}
	if runs[0].Status != model.JobFailed {
		t.Errorf("status = %v, want FAILED", runs[0].Status)
	}
	if runs[0].ItemCount != 0 {
		t.Errorf("item count = %d, want 0 on failure", runs[0].ItemCount)
	}
	if runs[0].Error != "boom" {
		t.Errorf("error = %q, want boom", runs[0].Error)
	}
}
