// Package llm provides the chat-completion clients used by the planning
// and term-expansion collaborators.
package llm

import (
	"context"
)

// Client is the provider-agnostic chat completion interface.
// Use this interface for dependency injection to enable mocking in tests.
type Client interface {
	// Complete generates a single chat completion.
	Complete(ctx context.Context, prompt string, systemMessage string, temperature float64) (*CompletionResult, error)

	// Model returns the configured model name.
	Model() string
}

// CompletionResult carries the response content plus usage accounting.
type CompletionResult struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Usage converts the result's token counts for a UsageTracker.
func (r *CompletionResult) Usage() Usage {
	return Usage{
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		TotalTokens:      r.TotalTokens,
	}
}

// Compile-time interface checks.
var (
	_ Client = (*OpenAIClient)(nil)
	_ Client = (*AnthropicClient)(nil)
	_ Client = (*MockClient)(nil)
)
