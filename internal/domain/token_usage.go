package domain

import "context"

type tokenUsageKey struct{}

// TokenUsage collects token consumption for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the services write after provider calls; the handler reads it for response headers.
type TokenUsage struct {
	EmbeddingTokens  int
	GenerationTokens int
	EmbeddingUsed    bool
	GenerationUsed   bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TokenUsage) {
	u := &TokenUsage{}
	return context.WithValue(ctx, tokenUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TokenUsage {
	u, _ := ctx.Value(tokenUsageKey{}).(*TokenUsage)
	return u
}

// AddEmbeddingTokens records tokens consumed by embedding calls.
func (u *TokenUsage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.EmbeddingUsed = true
	}
}

// AddGenerationTokens records tokens consumed by chat completion calls.
func (u *TokenUsage) AddGenerationTokens(n int) {
	if u != nil {
		u.GenerationTokens += n
		u.GenerationUsed = true
	}
}
