package classify

import (
	"strings"
	"testing"

	"github.com/awynne/lookout/internal/config"
	"github.com/awynne/lookout/internal/model"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"periods", "First. Second. Third.", []string{"First.", "Second.", "Third."}},
		{"mixed terminators", "Really? Yes! Done.", []string{"Really?", "Yes!", "Done."}},
		{"trailing fragment kept", "One. two without period", []string{"One.", "two without period"}},
		{"empty", "", nil},
		{"whitespace only", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitSentences(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitSentences(%q) = %v, want %v", tt.text, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("sentence[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Run("ranks by keyword hits", func(t *testing.T) {
		sentences := []string{
			"The weather was mild on Tuesday.",
			"The company will launch a new AI voice platform.",
			"Lunch was served at noon.",
		}
		got := Summarize(sentences, nil)
		if !strings.HasPrefix(got, "The company will launch") {
			t.Errorf("highest scoring sentence should lead, got %q", got)
		}
	})

	t.Run("ties keep document order", func(t *testing.T) {
		sentences := []string{"Alpha has no hits here?", "Bravo has no hits here?"}
		got := Summarize(sentences, nil)
		if !strings.HasPrefix(got, "Alpha") {
			t.Errorf("stable sort should keep first sentence first, got %q", got)
		}
	})

	t.Run("falls back to item title", func(t *testing.T) {
		items := []model.ClusterItem{
			{RawItem: model.RawItem{Title: ""}},
			{RawItem: model.RawItem{Title: "Jobber Update"}},
		}
		if got := Summarize(nil, items); got != "Jobber Update" {
			t.Errorf("got %q, want item title", got)
		}
	})

	t.Run("fallback text when nothing at all", func(t *testing.T) {
		if got := Summarize(nil, nil); got != noSummaryFallback {
			t.Errorf("got %q, want %q", got, noSummaryFallback)
		}
	})

	t.Run("truncates to limit", func(t *testing.T) {
		long := strings.Repeat("launch ai platform update ", 40) + "."
		got := Summarize([]string{long}, nil)
		if len(got) > maxSummaryLen {
			t.Errorf("summary length %d exceeds %d", len(got), maxSummaryLen)
		}
		if !strings.HasSuffix(got, "...") {
			t.Errorf("truncated summary should end with ellipsis, got %q", got[len(got)-10:])
		}
	})
}

func TestKeyPoints(t *testing.T) {
	t.Run("captures indicator sentences in order", func(t *testing.T) {
		sentences := []string{
			"Filler with nothing notable.",
			"They announced a partnership.",
			"The platform now offers self-scheduling.",
		}
		got := KeyPoints(sentences)
		if len(got) != 2 {
			t.Fatalf("got %d points, want 2: %v", len(got), got)
		}
		if !strings.Contains(got[0], "announced") || !strings.Contains(got[1], "now offers") {
			t.Errorf("points out of order: %v", got)
		}
	})

	t.Run("caps at five", func(t *testing.T) {
		var sentences []string
		for i := 0; i < 8; i++ {
			sentences = append(sentences, "They launch something again.")
		}
		if got := KeyPoints(sentences); len(got) != maxKeyPoints {
			t.Errorf("got %d points, want %d", len(got), maxKeyPoints)
		}
	})

	t.Run("ignores sentences past the scan window", func(t *testing.T) {
		sentences := make([]string, keyPointScanWindow+1)
		for i := range sentences {
			sentences[i] = "Nothing here."
		}
		sentences[keyPointScanWindow] = "They launch a product."
		got := KeyPoints(sentences)
		if len(got) != 1 || strings.Contains(got[0], "launch") {
			t.Errorf("sentence beyond window should not qualify: %v", got)
		}
	})

	t.Run("first sentence stands in", func(t *testing.T) {
		got := KeyPoints([]string{"Plain opening sentence.", "Plain second."})
		if len(got) != 1 || got[0] != "Plain opening sentence." {
			t.Errorf("got %v, want first sentence fallback", got)
		}
	})

	t.Run("empty input yields none", func(t *testing.T) {
		if got := KeyPoints(nil); len(got) != 0 {
			t.Errorf("got %v, want empty", got)
		}
	})
}

func TestWhyItMatters(t *testing.T) {
	comp := &config.Competitor{Name: "ServiceTitan", Verticals: []string{"hvac", "plumbing"}}

	t.Run("p0 with everything", func(t *testing.T) {
		got := WhyItMatters(model.PriorityP0, comp, []model.Capability{model.CapVoiceAgent})
		for _, want := range []string{
			"critical competitive development",
			"ServiceTitan operates in hvac, plumbing.",
			"Voice AI capability",
			"Detected capabilities: voice agent.",
		} {
			if !strings.Contains(got, want) {
				t.Errorf("missing %q in %q", want, got)
			}
		}
	})

	t.Run("p1 uses planning sentence", func(t *testing.T) {
		got := WhyItMatters(model.PriorityP1, nil, nil)
		if !strings.Contains(got, "near-term planning") {
			t.Errorf("got %q", got)
		}
	})

	t.Run("competitor without verticals", func(t *testing.T) {
		got := WhyItMatters(model.PriorityP2, &config.Competitor{Name: "Jobber"}, nil)
		if got != "Jobber is a tracked competitor." {
			t.Errorf("got %q", got)
		}
	})

	t.Run("bare p2 gets fallback", func(t *testing.T) {
		if got := WhyItMatters(model.PriorityP2, nil, nil); got != whyItMattersFallback {
			t.Errorf("got %q, want fallback", got)
		}
	})
}

func TestActions(t *testing.T) {
	t.Run("p0 list", func(t *testing.T) {
		got := Actions(model.PriorityP0, nil)
		if len(got) != 3 || got[0] != "Brief executive team on this development" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("p1 with voice adds benchmark", func(t *testing.T) {
		got := Actions(model.PriorityP1, []model.Capability{model.CapVoiceAgent})
		if len(got) != 3 {
			t.Fatalf("got %d actions, want 3: %v", len(got), got)
		}
		if got[2] != "Benchmark voice AI capabilities against our offering" {
			t.Errorf("last action = %q", got[2])
		}
	})

	t.Run("p2 without voice gets fallback", func(t *testing.T) {
		got := Actions(model.PriorityP2, []model.Capability{model.CapChatAgent})
		if len(got) != 1 || got[0] != actionsFallback {
			t.Errorf("got %v", got)
		}
	})
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	got := truncate("abcdefghij", 8)
	if got != "abcde..." {
		t.Errorf("got %q, want abcde...", got)
	}
}
