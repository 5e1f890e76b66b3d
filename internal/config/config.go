// Package config loads the competitor and source configuration from YAML.
//
// Load validates eagerly and returns an immutable Snapshot. The snapshot is
// passed down to every pipeline stage for the duration of a run - there is
// no package-level cache, so the classifier stays a pure function of its
// inputs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/awynne/lookout/internal/model"
)

const (
	dbPathEnv     = "LOOKOUT_DB"
	openAIKeyEnv  = "OPENAI_API_KEY"
	ollamaHostEnv = "OLLAMA_HOST"

	defaultBatchSize    = 200
	defaultFetchTimeout = 30 * time.Second
)

// Competitor is one configured competitor to watch.
type Competitor struct {
	Name      string   `yaml:"name"`
	Website   string   `yaml:"website"`
	Verticals []string `yaml:"verticals"`
	Keywords  []string `yaml:"keywords"`
	Category  string   `yaml:"category"`
}

// SourceConfig is one configured content origin.
type SourceConfig struct {
	Name    string `yaml:"name"`
	BaseURL string `yaml:"base_url"`
	FeedURL string `yaml:"feed_url"` // optional RSS endpoint
	Kind    string `yaml:"kind"`     // "rss" (default) or "page"
	Type    string `yaml:"source_type"`
	Trust   string `yaml:"trust_tier"`
}

// AnalysisConfig selects the analyzer strategy.
type AnalysisConfig struct {
	Strategy string `yaml:"strategy"` // "rules" (default) or "llm"
	Provider string `yaml:"provider"` // "openai" or "ollama"
	Model    string `yaml:"model"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

// FetchConfig bounds the fetch and cluster stages.
type FetchConfig struct {
	BatchSize      int           `yaml:"batch_size"`
	Timeout        time.Duration `yaml:"timeout"`
	RequestsPerSec float64       `yaml:"requests_per_sec"`
}

// DatabaseConfig locates the SQLite file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// Snapshot is the validated configuration for one pipeline run.
// Treat it as read-only after Load returns.
type Snapshot struct {
	Competitors []Competitor   `yaml:"competitors"`
	Sources     []SourceConfig `yaml:"sources"`
	Analysis    AnalysisConfig `yaml:"analysis"`
	Fetch       FetchConfig    `yaml:"fetch"`
	Database    DatabaseConfig `yaml:"database"`
}

// Load reads and validates the YAML config at path. Schema violations fail
// here, before any stage executes.
func Load(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	snap.applyDefaults()
	snap.applyEnvOverrides()

	if err := snap.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return &snap, nil
}

func (s *Snapshot) applyDefaults() {
	if s.Fetch.BatchSize <= 0 {
		s.Fetch.BatchSize = defaultBatchSize
	}
	if s.Fetch.Timeout <= 0 {
		s.Fetch.Timeout = defaultFetchTimeout
	}
	if s.Fetch.RequestsPerSec <= 0 {
		s.Fetch.RequestsPerSec = 2
	}
	if s.Analysis.Strategy == "" {
		s.Analysis.Strategy = "rules"
	}
	if s.Database.Path == "" {
		s.Database.Path = "lookout.db"
	}
	for i := range s.Sources {
		if s.Sources[i].Kind == "" {
			s.Sources[i].Kind = "rss"
		}
	}
}

func (s *Snapshot) applyEnvOverrides() {
	if v := os.Getenv(dbPathEnv); v != "" {
		s.Database.Path = v
	}
	if v := os.Getenv(openAIKeyEnv); v != "" && s.Analysis.APIKey == "" {
		s.Analysis.APIKey = v
	}
	if v := os.Getenv(ollamaHostEnv); v != "" && s.Analysis.Endpoint == "" {
		s.Analysis.Endpoint = v
	}
}

func (s *Snapshot) validate() error {
	if len(s.Competitors) == 0 {
		return fmt.Errorf("no competitors configured")
	}

	seen := make(map[string]bool, len(s.Competitors))
	for i, c := range s.Competitors {
		if c.Name == "" {
			return fmt.Errorf("competitor %d: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("competitor %q: duplicate name", c.Name)
		}
		seen[c.Name] = true
	}

	seenSrc := make(map[string]bool, len(s.Sources))
	for i, src := range s.Sources {
		if src.Name == "" {
			return fmt.Errorf("source %d: name is required", i)
		}
		if seenSrc[src.Name] {
			return fmt.Errorf("source %q: duplicate name", src.Name)
		}
		seenSrc[src.Name] = true

		if src.BaseURL == "" {
			return fmt.Errorf("source %q: base_url is required", src.Name)
		}
		if !model.SourceType(src.Type).Valid() {
			return fmt.Errorf("source %q: unknown source_type %q", src.Name, src.Type)
		}
		if !model.TrustTier(src.Trust).Valid() {
			return fmt.Errorf("source %q: unknown trust_tier %q", src.Name, src.Trust)
		}
		if src.Kind != "rss" && src.Kind != "page" {
			return fmt.Errorf("source %q: unknown kind %q", src.Name, src.Kind)
		}
	}

	switch s.Analysis.Strategy {
	case "rules", "llm":
	default:
		return fmt.Errorf("analysis: unknown strategy %q", s.Analysis.Strategy)
	}

	return nil
}

// ModelSources converts the configured sources to model entities for the
// store's config sync.
func (s *Snapshot) ModelSources() []model.Source {
	out := make([]model.Source, 0, len(s.Sources))
	for _, src := range s.Sources {
		out = append(out, model.Source{
			Name:    src.Name,
			BaseURL: src.BaseURL,
			FeedURL: src.FeedURL,
			Kind:    src.Kind,
			Type:    model.SourceType(src.Type),
			Trust:   model.TrustTier(src.Trust),
		})
	}
	return out
}

// CompetitorByName returns the configured competitor with the given name,
// or nil.
func (s *Snapshot) CompetitorByName(name string) *Competitor {
	for i := range s.Competitors {
		if s.Competitors[i].Name == name {
			return &s.Competitors[i]
		}
	}
	return nil
}
