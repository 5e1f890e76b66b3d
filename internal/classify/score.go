package classify

import (
	"math"

	"github.com/awynne/lookout/internal/model"
)

// VerificationFor applies the AI-claim sourcing bar. Stories with no AI
// capability are factual claims and pass unconditionally. AI claims verify
// when a HIGH-trust source contributed, or when at least two distinct source
// names corroborate.
func VerificationFor(caps []model.Capability, items []model.ClusterItem) model.Verification {
	if len(caps) == 0 {
		return model.Verified
	}

	names := make(map[string]bool)
	for _, item := range items {
		if item.Trust == model.TrustHigh {
			return model.Verified
		}
		if item.SourceName != "" {
			names[item.SourceName] = true
		}
	}
	if len(names) >= 2 {
		return model.Verified
	}
	return model.ClaimUnverified
}

// ConfidenceScore computes the 1-5 reliability score. The HIGH-tier bonuses
// are additive, not mutually exclusive: two HIGH items collect both the
// +1.0 and the +0.5.
func ConfidenceScore(items []model.ClusterItem, verification model.Verification) int {
	score := 3.0

	var high, medium int
	for _, item := range items {
		switch item.Trust {
		case model.TrustHigh:
			high++
		case model.TrustMedium:
			medium++
		}
	}

	if high >= 2 {
		score += 1.0
	}
	if high >= 1 {
		score += 0.5
	}
	if medium >= 2 {
		score += 0.5
	}

	if verification == model.Verified {
		score += 1.0
	} else {
		score -= 0.5
	}

	if len(items) >= 3 {
		score += 0.5 // corroboration bonus
	}

	rounded := int(math.Round(score))
	if rounded < 1 {
		return 1
	}
	if rounded > 5 {
		return 5
	}
	return rounded
}
