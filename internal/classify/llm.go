package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/awynne/lookout/internal/brain"
	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/logging"
	"github.com/awynne/lookout/internal/model"
)

const llmTimeout = 45 * time.Second

// LLMAnalyzer wraps the rule analyzer and asks an LLM provider to rewrite
// the prose fields (summary, key points, why-it-matters, actions). The
// detection fields - competitor, capabilities, priority, verification,
// confidence - always come from the rules so the contract holds either way.
// Any provider error, timeout, or malformed reply falls back to the rule
// result; the pipeline run never fails because of the LLM path.
type LLMAnalyzer struct {
	rules    *RuleAnalyzer
	provider brain.Provider
}

// NewLLMAnalyzer creates the LLM-backed strategy over a provider.
func NewLLMAnalyzer(provider brain.Provider) *LLMAnalyzer {
	return &LLMAnalyzer{
		rules:    NewRuleAnalyzer(),
		provider: provider,
	}
}

const llmSystemPrompt = `You are a competitive intelligence analyst. Given raw story text, reply with a single JSON object:
{"summary": "...", "key_points": ["..."], "why_it_matters": "...", "actions": ["..."]}
Be factual and concise. Do not invent details absent from the text.`

func (a *LLMAnalyzer) Analyze(ctx context.Context, items []model.ClusterItem, snap *config.Snapshot) AnalysisResult {
	result := a.rules.Analyze(ctx, items, snap)

	if a.provider == nil || !a.provider.Available() {
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "Title: %s\n%s\n\n", item.Title, item.Content)
	}

	resp, err := a.provider.Generate(ctx, brain.Request{
		SystemPrompt: llmSystemPrompt,
		UserPrompt:   b.String(),
		MaxTokens:    1024,
	})
	if err != nil {
		logging.Warn("LLM analysis failed, using rule result", "provider", a.provider.Name(), "error", err)
		return result
	}

	var parsed struct {
		Summary      string   `json:"summary"`
		KeyPoints    []string `json:"key_points"`
		WhyItMatters string   `json:"why_it_matters"`
		Actions      []string `json:"actions"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp.Content)), &parsed); err != nil {
		logging.Warn("LLM reply not parseable, using rule result", "provider", a.provider.Name(), "error", err)
		return result
	}

	if parsed.Summary != "" {
		result.Summary = truncate(parsed.Summary, maxSummaryLen)
	}
	if len(parsed.KeyPoints) > 0 {
		points := parsed.KeyPoints
		if len(points) > maxKeyPoints {
			points = points[:maxKeyPoints]
		}
		for i, p := range points {
			points[i] = truncate(p, maxKeyPointLen)
		}
		result.KeyPoints = points
	}
	if parsed.WhyItMatters != "" {
		result.WhyItMatters = parsed.WhyItMatters
	}
	if len(parsed.Actions) > 0 {
		result.Actions = parsed.Actions
	}
	return result
}

// extractJSON trims any prose the model wrapped around the JSON object.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start >= 0 && end > start {
		return s[start : end+1]
	}
	return s
}
