package classify

import (
	"strings"

	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/model"
)

// UnknownCompetitor is the sentinel cluster key for items matching no
// configured competitor. Such items are kept for manual triage, not dropped.
const UnknownCompetitor = "unknown"

// DetectCompetitor returns the first configured competitor whose name or any
// keyword appears in text (case-insensitive substring). Configuration order
// is the tie-break: earlier competitors win, full stop. Returns nil when
// nothing matches.
func DetectCompetitor(snap *config.Snapshot, text string) *config.Competitor {
	lower := strings.ToLower(text)
	for i := range snap.Competitors {
		c := &snap.Competitors[i]
		if strings.Contains(lower, strings.ToLower(c.Name)) {
			return c
		}
		for _, kw := range c.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return c
			}
		}
	}
	return nil
}

// CompetitorKey returns the lowercase competitor name for text, or the
// "unknown" sentinel. This is the cluster grouping key.
func CompetitorKey(snap *config.Snapshot, text string) string {
	if c := DetectCompetitor(snap, text); c != nil {
		return strings.ToLower(c.Name)
	}
	return UnknownCompetitor
}

// DetectCapabilities returns every capability tag whose pattern list matches
// the text - a set, not a single classification. When no specific tag
// matches but the standalone token "ai" is present, the generic
// workflow-automation tag is returned so an AI-adjacent story is never
// tag-less.
func DetectCapabilities(text string) []model.Capability {
	var tags []model.Capability
	for _, rule := range capabilityRules {
		for _, p := range rule.Patterns {
			if p.MatchString(text) {
				tags = append(tags, rule.Tag)
				break
			}
		}
	}
	if len(tags) == 0 && aiTokenPattern.MatchString(text) {
		tags = append(tags, model.CapWorkflow)
	}
	return tags
}

// DetectPriority runs the strict cascade: P0 patterns, then P1 patterns,
// then the voice-agent override, then the P2 default. The P0 check always
// precedes P1, so "acquisition ... beta" is P0.
func DetectPriority(text string, caps []model.Capability) model.Priority {
	for _, p := range p0Patterns {
		if p.MatchString(text) {
			return model.PriorityP0
		}
	}
	for _, p := range p1Patterns {
		if p.MatchString(text) {
			return model.PriorityP1
		}
	}
	// Voice AI is inherently notable even without priority keywords.
	if hasCapability(caps, model.CapVoiceAgent) {
		return model.PriorityP1
	}
	return model.PriorityP2
}

func hasCapability(caps []model.Capability, want model.Capability) bool {
	for _, c := range caps {
		if c == want {
			return true
		}
	}
	return false
}
