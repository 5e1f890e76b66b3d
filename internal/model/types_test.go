package model

import "testing"

func TestPriorityRank(t *testing.T) {
	if PriorityP0.Rank() >= PriorityP1.Rank() || PriorityP1.Rank() >= PriorityP2.Rank() {
		t.Errorf("priority ranks must order P0 < P1 < P2")
	}
	if Priority("bogus").Rank() != PriorityP2.Rank() {
		t.Errorf("unknown priority ranks lowest")
	}
}

func TestTrustTierValid(t *testing.T) {
	for _, tier := range []TrustTier{TrustHigh, TrustMedium, TrustLow} {
		if !tier.Valid() {
			t.Errorf("%v should be valid", tier)
		}
	}
	if TrustTier("SHINY").Valid() {
		t.Errorf("unknown tier should be invalid")
	}
}

func TestSourceTypeValid(t *testing.T) {
	for _, s := range []SourceType{SourceOfficial, SourceIndustry, SourceReviews, SourceJobs} {
		if !s.Valid() {
			t.Errorf("%v should be valid", s)
		}
	}
	if SourceType("telegraph").Valid() {
		t.Errorf("unknown source type should be invalid")
	}
}

func TestCapabilityLabel(t *testing.T) {
	if CapVoiceAgent.Label() != "voice agent" {
		t.Errorf("label = %q", CapVoiceAgent.Label())
	}
	// Unknown tags fall back to their raw value.
	if Capability("X_NEW").Label() != "X_NEW" {
		t.Errorf("unknown capability should label as itself")
	}
}
