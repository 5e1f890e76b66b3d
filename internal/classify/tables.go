package classify

import (
	"regexp"

	"github.com/awynne/lookout/internal/model"
)

// The rule tables below are the whole taxonomy. Detection code iterates
// them in order and never special-cases a tag, so swapping a pattern is a
// data change, not a logic change.

// capabilityRule ties one capability tag to its ordered pattern list.
// A tag is included when any of its patterns matches the combined text.
type capabilityRule struct {
	Tag      model.Capability
	Patterns []*regexp.Regexp
}

var capabilityRules = []capabilityRule{
	{model.CapVoiceAgent, []*regexp.Regexp{
		regexp.MustCompile(`(?i)voice\s*(ai|agent|assistant|bot)`),
		regexp.MustCompile(`(?i)ai\s*(voice|phone|call|receptionist|answering)`),
		regexp.MustCompile(`(?i)(answers?|handles?)\s+(inbound\s+)?calls?`),
	}},
	{model.CapChatAgent, []*regexp.Regexp{
		regexp.MustCompile(`(?i)chat\s*(bot|agent|assistant)`),
		regexp.MustCompile(`(?i)ai\s*chat`),
		regexp.MustCompile(`(?i)conversational\s*ai`),
		regexp.MustCompile(`(?i)virtual\s*assistant`),
	}},
	{model.CapLeadResponse, []*regexp.Regexp{
		regexp.MustCompile(`(?i)lead\s*(response|follow[\s-]?up|conversion|capture)`),
		regexp.MustCompile(`(?i)speed[\s-]?to[\s-]?lead`),
		regexp.MustCompile(`(?i)instant(ly)?\s+respon\w+\s+to\s+leads?`),
	}},
	{model.CapScheduling, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(ai|smart|automated|intelligent)\s*(schedul|booking)`),
		regexp.MustCompile(`(?i)self[\s-]?scheduling`),
		regexp.MustCompile(`(?i)(schedul|book)\w*\s+(appointments?|jobs?)\s+automatically`),
	}},
	{model.CapDispatch, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(ai|smart|automated|intelligent)\s*(dispatch|routing)`),
		regexp.MustCompile(`(?i)dispatch\s*(routing|automation|optimization)`),
		regexp.MustCompile(`(?i)route\s*optimi[sz]`),
	}},
	{model.CapMarketing, []*regexp.Regexp{
		regexp.MustCompile(`(?i)marketing\s*automation`),
		regexp.MustCompile(`(?i)(ai|automated)\s*(marketing|campaign)`),
		regexp.MustCompile(`(?i)(email|sms)\s*(drip|campaign)\s*automation`),
	}},
	{model.CapReputation, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(review|reputation)\s*(automation|management|monitoring)`),
		regexp.MustCompile(`(?i)(ai|automated)\s*review\s*(request|response)`),
		regexp.MustCompile(`(?i)respond\w*\s+to\s+reviews?\s+automatically`),
	}},
	{model.CapAnalytics, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(ai|predictive|smart)\s*(analytics|insights|reporting)`),
		regexp.MustCompile(`(?i)business\s*intelligence`),
		regexp.MustCompile(`(?i)(demand|revenue)\s*forecast`),
	}},
	{model.CapPayments, []*regexp.Regexp{
		regexp.MustCompile(`(?i)(automated|ai)\s*(invoic|payment|billing|collection)`),
		regexp.MustCompile(`(?i)payment\s*reminders?`),
		regexp.MustCompile(`(?i)collections?\s*automation`),
	}},
	{model.CapWorkflow, []*regexp.Regexp{
		regexp.MustCompile(`(?i)workflow\s*automation`),
		regexp.MustCompile(`(?i)(ai|intelligent)[\s-]?(powered\s+)?automation`),
		regexp.MustCompile(`(?i)automat\w*\s+(workflows?|back[\s-]?office|admin)`),
	}},
}

// p0Patterns mark critical developments. Any match anywhere yields P0 and
// short-circuits the rest of the cascade.
var p0Patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)launch(es|ed|ing)?\b`),
	regexp.MustCompile(`(?i)announc\w+`),
	regexp.MustCompile(`(?i)acquisition`),
	regexp.MustCompile(`(?i)acquir\w+`),
	regexp.MustCompile(`(?i)merger`),
	regexp.MustCompile(`(?i)pricing\s*(change|update|overhaul)`),
	regexp.MustCompile(`(?i)price\s*(increase|cut)`),
	regexp.MustCompile(`(?i)major\s*(update|release|feature)`),
	regexp.MustCompile(`(?i)funding\s*round`),
	regexp.MustCompile(`(?i)raised?\s*\$\d`),
	regexp.MustCompile(`(?i)series\s+[a-z]\b`),
}

// p1Patterns mark important-but-not-critical developments.
var p1Patterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)new\s*feature`),
	regexp.MustCompile(`(?i)improvement`),
	regexp.MustCompile(`(?i)integration`),
	regexp.MustCompile(`(?i)partnership`),
	regexp.MustCompile(`(?i)expansion`),
	regexp.MustCompile(`(?i)beta\b`),
	regexp.MustCompile(`(?i)early\s*access`),
}

// relevanceKeywords score sentences for the extractive summary. Stems
// ("automat", "intelligen") count any suffix.
var relevanceKeywords = []string{
	"ai", "voice", "launch", "announce", "new", "feature", "update",
	"release", "integration", "platform", "automat", "intelligen",
}

// keyPointIndicators qualify a sentence as a key point. A sentence counts
// against the first indicator it matches only.
var keyPointIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)now\s+offers?`),
	regexp.MustCompile(`(?i)new\s+(capabilit|feature)`),
	regexp.MustCompile(`(?i)integrat`),
	regexp.MustCompile(`(?i)launch`),
	regexp.MustCompile(`(?i)announc`),
}

// aiTokenPattern detects the standalone token "ai" for the generic
// workflow-automation fallback tag.
var aiTokenPattern = regexp.MustCompile(`(?i)\bai\b`)
