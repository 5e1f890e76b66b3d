// Package brain provides the LLM provider layer for the optional
// LLM-backed analysis strategy.
package brain

import (
	"context"
)

// Provider is the interface for AI providers
type Provider interface {
	// Name returns the provider name (e.g., "openai", "ollama")
	Name() string

	// Available returns true if the provider is configured and ready
	Available() bool

	// Generate sends a prompt and returns the response
	Generate(ctx context.Context, req Request) (Response, error)
}

// Request is a prompt request to an AI provider
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
}

// Response is the AI provider's response
type Response struct {
	Content string
	Model   string
}

// New returns the provider named by the analysis config, or nil when the
// name is unknown.
func New(name, endpoint, apiKey, model string) Provider {
	switch name {
	case "openai":
		return NewOpenAIProvider(apiKey, model)
	case "ollama":
		return NewOllamaProvider(endpoint, model)
	}
	return nil
}
