// Package model defines the entities shared across the pipeline.
//
// Everything here is a plain value type. Persistence lives in internal/store,
// decision logic in internal/classify - model carries no behavior beyond
// small accessors so entities stay trivially testable.
package model

// TrustTier rates how reliable a configured source is. It feeds the
// verification and confidence calculations during analysis.
type TrustTier string

const (
	TrustHigh   TrustTier = "HIGH"
	TrustMedium TrustTier = "MEDIUM"
	TrustLow    TrustTier = "LOW"
)

// Valid reports whether t is one of the three known tiers.
func (t TrustTier) Valid() bool {
	switch t {
	case TrustHigh, TrustMedium, TrustLow:
		return true
	}
	return false
}

// SourceType identifies what kind of origin a source is.
type SourceType string

const (
	SourceOfficial SourceType = "official"
	SourceIndustry SourceType = "industry"
	SourceReviews  SourceType = "reviews"
	SourceJobs     SourceType = "jobs"
)

// Valid reports whether s is a known source type.
func (s SourceType) Valid() bool {
	switch s {
	case SourceOfficial, SourceIndustry, SourceReviews, SourceJobs:
		return true
	}
	return false
}

// Priority is the urgency tier of an analyzed story.
// P0 is most urgent and sorts first.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// Rank returns the sort rank of a priority. Lower ranks sort first.
func (p Priority) Rank() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	default:
		return 2
	}
}

// Verification indicates whether an AI-related claim met the sourcing bar.
type Verification string

const (
	Verified        Verification = "VERIFIED"
	ClaimUnverified Verification = "CLAIM_UNVERIFIED"
)

// Capability tags the kind of AI feature a story concerns.
type Capability string

const (
	CapVoiceAgent     Capability = "AI_VOICE_AGENT"
	CapChatAgent      Capability = "AI_CHAT_AGENT"
	CapLeadResponse   Capability = "AI_LEAD_RESPONSE"
	CapScheduling     Capability = "AI_SCHEDULING_BOOKING"
	CapDispatch       Capability = "AI_DISPATCH_ROUTING"
	CapMarketing      Capability = "AI_MARKETING_AUTOMATION"
	CapReputation     Capability = "AI_REPUTATION_REVIEWS"
	CapAnalytics      Capability = "AI_ANALYTICS_INSIGHTS"
	CapPayments       Capability = "AI_PAYMENTS_COLLECTIONS"
	CapWorkflow       Capability = "AI_WORKFLOW_AUTOMATION"
)

// capabilityLabels maps tags to human-readable names for narratives.
var capabilityLabels = map[Capability]string{
	CapVoiceAgent:   "voice agent",
	CapChatAgent:    "chat agent",
	CapLeadResponse: "lead response",
	CapScheduling:   "scheduling & booking",
	CapDispatch:     "dispatch & routing",
	CapMarketing:    "marketing automation",
	CapReputation:   "reputation & reviews",
	CapAnalytics:    "analytics & insights",
	CapPayments:     "payments & collections",
	CapWorkflow:     "workflow automation",
}

// Label returns the human-readable name of the capability.
func (c Capability) Label() string {
	if l, ok := capabilityLabels[c]; ok {
		return l
	}
	return string(c)
}

// JobStatus is the terminal (or stuck) state of a pipeline job run.
type JobStatus string

const (
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobFailed    JobStatus = "FAILED"
)
