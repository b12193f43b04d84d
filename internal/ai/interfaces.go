package ai

import (
	"context"

	"atsgenie/internal/types"
)

// TipProvider writes improvement tips tailored to a match outcome
type TipProvider interface {
	SuggestTips(ctx context.Context, input types.TipInput) ([]string, *TokenUsage, error)
	Stats() map[string]any
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
