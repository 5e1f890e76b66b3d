// Package classify derives structured intelligence from story clusters.
//
// The rule analyzer is deterministic: the same items and config snapshot
// always produce the same result, except the citation retrieval timestamps.
// There is no error path - missing or malformed text degrades to fallback
// strings.
package classify

import (
	"context"
	"strings"
	"time"

	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/model"
)

// AnalysisResult is the classifier's output for one cluster.
type AnalysisResult struct {
	Competitor   string // empty when no competitor resolved
	Vertical     string
	Capabilities []model.Capability
	Summary      string
	KeyPoints    []string
	WhyItMatters string
	Actions      []string
	Priority     model.Priority
	Confidence   int
	Verification model.Verification
	Citations    []model.Citation
}

// Analyzer turns a cluster's items into an AnalysisResult. The rule-based
// implementation is the contract; an LLM-backed strategy may vary the prose
// fields but must fail soft to the rules.
type Analyzer interface {
	Analyze(ctx context.Context, items []model.ClusterItem, snap *config.Snapshot) AnalysisResult
}

// RuleAnalyzer is the deterministic reference implementation.
type RuleAnalyzer struct {
	// now allows tests to pin the citation timestamps.
	now func() time.Time
}

// NewRuleAnalyzer creates the deterministic analyzer.
func NewRuleAnalyzer() *RuleAnalyzer {
	return &RuleAnalyzer{now: time.Now}
}

// Analyze runs the full detection sequence over the cluster's items.
func (a *RuleAnalyzer) Analyze(_ context.Context, items []model.ClusterItem, snap *config.Snapshot) AnalysisResult {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(item.Title)
		b.WriteString(" ")
		b.WriteString(item.Content)
		b.WriteString(" ")
	}
	combined := b.String()

	competitor := DetectCompetitor(snap, combined)
	caps := DetectCapabilities(combined)
	priority := DetectPriority(combined, caps)
	verification := VerificationFor(caps, items)
	confidence := ConfidenceScore(items, verification)

	sentences := SplitSentences(combined)

	result := AnalysisResult{
		Capabilities: caps,
		Summary:      Summarize(sentences, items),
		KeyPoints:    KeyPoints(sentences),
		WhyItMatters: WhyItMatters(priority, competitor, caps),
		Actions:      Actions(priority, caps),
		Priority:     priority,
		Confidence:   confidence,
		Verification: verification,
		Citations:    BuildCitations(items, a.now()),
	}
	if competitor != nil {
		result.Competitor = competitor.Name
		if len(competitor.Verticals) > 0 {
			result.Vertical = competitor.Verticals[0]
		}
	}
	return result
}
