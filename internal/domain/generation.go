package domain

import "context"

// Prompt is the fully assembled input for one chat completion call.
type Prompt struct {
	System   string     // instruction plus retrieved context
	History  []Exchange // prior conversation turns, oldest first
	Question string
}

// Generator produces a natural-language answer from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (GenerationResult, error)
}

// GenerationResult carries the answer text and token usage.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
