package model

import "time"

// Source is a configured content origin. Sources are synced from config at
// the start of a run and are immutable in between - many raw items reference
// one source by name.
type Source struct {
	Name    string
	BaseURL string
	FeedURL string // RSS endpoint when distinct from BaseURL
	Kind    string // "rss" or "page"
	Type    SourceType
	Trust   TrustTier
}

// RawItem is one fetched document, normalized to plain text.
//
// URL is unique per item. Checksum is a content hash set once by the
// normalize stage; Processed is flipped exactly once by the clusterer and
// the item is never reprocessed afterward.
type RawItem struct {
	ID         string
	SourceName string
	URL        string
	Title      string
	Content    string
	Published  time.Time // zero when the source gave no timestamp
	Fetched    time.Time
	Checksum   string
	Processed  bool
}

// ClusterItem is a raw item joined with its source's trust tier, as the
// analyzer consumes it.
type ClusterItem struct {
	RawItem
	Trust TrustTier
}

// StoryCluster is a deduplicated story. It accumulates items for the same
// detected competitor within a bounded recency window and never splits.
type StoryCluster struct {
	ID            string
	Title         string
	CompetitorKey string // detected competitor, or "unknown"
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StoryItemLink ties a raw item into a cluster. At most one link exists per
// (cluster, item) pair - the store enforces this with a unique constraint.
type StoryItemLink struct {
	ClusterID string
	ItemID    string
	CreatedAt time.Time
}

// Citation points back at a contributing item.
type Citation struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// StorySummary is the finalized analysis of one cluster. A cluster has at
// most one summary and the summary is immutable once written.
type StorySummary struct {
	ID           string
	ClusterID    string
	Competitor   string // empty when no competitor resolved
	Vertical     string // empty when no competitor resolved
	Capabilities []Capability
	Summary      string
	KeyPoints    []string
	WhyItMatters string
	Actions      []string
	Priority     Priority
	Confidence   int // 1..5
	Verification Verification
	Citations    []Citation
	CreatedAt    time.Time
}

// AlertRule is a standing user subscription matched against new summaries.
// Empty filter slices match everything.
type AlertRule struct {
	ID           string
	UserID       string
	Name         string
	Verticals    []string
	Competitors  []string
	Capabilities []Capability
	MinPriority  Priority // P0 means "only P0 stories"
	Enabled      bool
	CreatedAt    time.Time
}

// Notification records that a rule matched a summary for a user. At most one
// exists per (rule, summary) pair.
type Notification struct {
	ID        string
	RuleID    string
	SummaryID string
	UserID    string
	CreatedAt time.Time
}

// JobRun logs one execution of a pipeline job. A run that crashes before its
// terminal update stays RUNNING; detecting those is a deployment concern.
type JobRun struct {
	ID         int64
	Name       string
	Status     JobStatus
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	ItemCount  int
	Error      string
}
