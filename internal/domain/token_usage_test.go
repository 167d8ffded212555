package domain

import (
	"context"
	"testing"
)

func TestTokenUsage_CollectsThroughContext(t *testing.T) {
	ctx, usage := NewContextWithUsage(context.Background())

	UsageFromContext(ctx).AddEmbeddingTokens(10)
	UsageFromContext(ctx).AddEmbeddingTokens(5)
	UsageFromContext(ctx).AddGenerationTokens(42)

	if usage.EmbeddingTokens != 15 {
		t.Errorf("EmbeddingTokens = %d, want 15", usage.EmbeddingTokens)
	}
	if usage.GenerationTokens != 42 {
		t.Errorf("GenerationTokens = %d, want 42", usage.GenerationTokens)
	}
	if !usage.EmbeddingUsed || !usage.GenerationUsed {
		t.Error("usage flags not set")
	}
}

func TestTokenUsage_NilSafe(t *testing.T) {
	// Services call AddTokens unconditionally; a context without a collector must not panic.
	u := UsageFromContext(context.Background())
	if u != nil {
		t.Fatal("expected nil usage from bare context")
	}
	u.AddEmbeddingTokens(10)
	u.AddGenerationTokens(10)
}

func TestTokenUsage_ZeroTokensStillMarksUsed(t *testing.T) {
	_, usage := NewContextWithUsage(context.Background())
	usage.AddEmbeddingTokens(0)

	if !usage.EmbeddingUsed {
		t.Error("expected EmbeddingUsed after zero-token add")
	}
}
