package classify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/model"
)

const (
	maxSummaryLen      = 500
	topSentences       = 3
	maxKeyPoints       = 5
	maxKeyPointLen     = 150
	keyPointScanWindow = 20

	noSummaryFallback    = "No summary available"
	whyItMattersFallback = "Monitor for potential competitive impact."
	actionsFallback      = "Continue monitoring for developments."
)

// SplitSentences breaks text into sentences on ./!/? boundaries, dropping
// empties.
func SplitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(b.String()); s != "" {
				sentences = append(sentences, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// Summarize produces the extractive summary: sentences scored by relevance
// keyword hits, stable-sorted descending (ties keep document order), top
// three joined and truncated to 500 characters.
func Summarize(sentences []string, items []model.ClusterItem) string {
	if len(sentences) == 0 {
		for _, item := range items {
			if item.Title != "" {
				return item.Title
			}
		}
		return noSummaryFallback
	}

	type scored struct {
		text  string
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		lower := strings.ToLower(s)
		n := 0
		for _, kw := range relevanceKeywords {
			n += strings.Count(lower, kw)
		}
		ranked[i] = scored{text: s, score: n}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	top := ranked
	if len(top) > topSentences {
		top = top[:topSentences]
	}
	parts := make([]string, len(top))
	for i, s := range top {
		parts[i] = s.text
	}

	return truncate(strings.Join(parts, " "), maxSummaryLen)
}

// KeyPoints scans the first 20 sentences in order, capturing a sentence when
// it matches any indicator (a sentence counts once, against the first
// indicator that hits). Output is capped at 5 points of 150 characters.
// When nothing qualifies the first sentence stands in.
func KeyPoints(sentences []string) []string {
	var points []string

	window := sentences
	if len(window) > keyPointScanWindow {
		window = window[:keyPointScanWindow]
	}

	for _, s := range window {
		if len(points) >= maxKeyPoints {
			break
		}
		for _, indicator := range keyPointIndicators {
			if indicator.MatchString(s) {
				points = append(points, truncate(s, maxKeyPointLen))
				break
			}
		}
	}

	if len(points) == 0 && len(sentences) > 0 {
		points = append(points, truncate(sentences[0], maxKeyPointLen))
	}

	return points
}

// WhyItMatters assembles the narrative from fixed parts in a fixed order:
// priority sentence (P0/P1 only), competitor sentence, voice-agent sentence,
// capability listing. P2 stories with nothing else get the monitoring
// fallback.
func WhyItMatters(priority model.Priority, competitor *config.Competitor, caps []model.Capability) string {
	var parts []string

	switch priority {
	case model.PriorityP0:
		parts = append(parts, "This is a critical competitive development requiring immediate attention.")
	case model.PriorityP1:
		parts = append(parts, "This is an important development to factor into near-term planning.")
	}

	if competitor != nil {
		if len(competitor.Verticals) > 0 {
			parts = append(parts, fmt.Sprintf("%s operates in %s.",
				competitor.Name, strings.Join(competitor.Verticals, ", ")))
		} else {
			parts = append(parts, fmt.Sprintf("%s is a tracked competitor.", competitor.Name))
		}
	}

	if hasCapability(caps, model.CapVoiceAgent) {
		parts = append(parts, "Voice AI capability signals direct competition for automated customer interactions.")
	}

	if len(caps) > 0 {
		labels := make([]string, len(caps))
		for i, c := range caps {
			labels[i] = c.Label()
		}
		parts = append(parts, fmt.Sprintf("Detected capabilities: %s.", strings.Join(labels, ", ")))
	}

	if len(parts) == 0 {
		return whyItMattersFallback
	}
	return strings.Join(parts, " ")
}

// Actions returns the recommended-action list for a priority and capability
// set.
func Actions(priority model.Priority, caps []model.Capability) []string {
	var actions []string

	if priority == model.PriorityP0 {
		actions = append(actions,
			"Brief executive team on this development",
			"Assess competitive response options",
			"Monitor customer and market sentiment",
		)
	}
	if priority == model.PriorityP1 {
		actions = append(actions,
			"Review in next competitive intelligence agenda",
			"Evaluate product roadmap implications",
		)
	}
	if hasCapability(caps, model.CapVoiceAgent) {
		actions = append(actions, "Benchmark voice AI capabilities against our offering")
	}

	if len(actions) == 0 {
		actions = append(actions, actionsFallback)
	}
	return actions
}

// BuildCitations creates one citation per contributing item. The retrieval
// timestamp is wall-clock at analysis time - the one deliberately
// non-deterministic field of the rule analyzer.
func BuildCitations(items []model.ClusterItem, now time.Time) []model.Citation {
	citations := make([]model.Citation, 0, len(items))
	for _, item := range items {
		title := item.Title
		if title == "" {
			title = item.SourceName
		}
		citations = append(citations, model.Citation{
			URL:         item.URL,
			Title:       title,
			RetrievedAt: now,
		})
	}
	return citations
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
