package ai

import (
	"context"
	"fmt"
	"strings"

	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/observability"
	"atsgenie/internal/types"
)

// Service produces AI written tips for a match outcome
type Service struct {
	provider TipProvider
	om       *observability.ObservabilityManager
	logger   *errors.Logger
	maxTips  int
}

// NewService creates the tip service described by cfg.
// It returns a nil service when AI tips are disabled or no API key is configured.
func NewService(ctx context.Context, cfg config.AIConfig, om *observability.ObservabilityManager, logger *errors.Logger) (*Service, error) {
	if !cfg.TipsAvailable() {
		logger.Debug("AI tips disabled", "enabled", cfg.Enabled, "has_api_key", cfg.APIKey != "")
		return nil, nil
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries)

	var provider TipProvider
	switch cfg.Provider {
	case "gemini", "":
		p, err := NewGeminiTips(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	return NewServiceWithProvider(provider, cfg.MaxTips, om, logger), nil
}

// NewServiceWithProvider wraps an existing provider
func NewServiceWithProvider(provider TipProvider, maxTips int, om *observability.ObservabilityManager, logger *errors.Logger) *Service {
	return &Service{
		provider: provider,
		om:       om,
		logger:   logger,
		maxTips:  maxTips,
	}
}

// SuggestTips returns cleaned tips for input. Blank and duplicate tips are
// dropped and at most MaxTips are kept.
func (s *Service) SuggestTips(ctx context.Context, input types.TipInput) ([]string, error) {
	if s == nil || s.provider == nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "AI tips are not configured", nil)
	}
	if input.MaxTips <= 0 || (s.maxTips > 0 && input.MaxTips > s.maxTips) {
		input.MaxTips = s.maxTips
	}

	var tips []string
	err := s.om.TrackAIOperation(ctx, "tips", func(ctx context.Context) *observability.AIOperationResult {
		raw, usage, err := s.provider.SuggestTips(ctx, input)
		if err != nil {
			return &observability.AIOperationResult{Error: err}
		}
		tips = cleanTips(raw, input.MaxTips)
		result := &observability.AIOperationResult{}
		if usage != nil {
			result.TokenUsage = &observability.TokenUsage{
				InputTokens:  usage.InputTokens,
				OutputTokens: usage.OutputTokens,
				TotalTokens:  usage.TotalTokens,
			}
		}
		return result
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("AI tips generated", "count", len(tips))
	return tips, nil
}

func cleanTips(raw []string, limit int) []string {
	seen := make(map[string]struct{}, len(raw))
	tips := make([]string, 0, len(raw))
	for _, tip := range raw {
		tip = strings.TrimSpace(tip)
		if tip == "" {
			continue
		}
		key := strings.ToLower(tip)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tips = append(tips, tip)
		if limit > 0 && len(tips) == limit {
			break
		}
	}
	return tips
}

// Stats returns provider statistics
func (s *Service) Stats() map[string]any {
	if s == nil || s.provider == nil {
		return map[string]any{"enabled": false}
	}
	stats := s.provider.Stats()
	stats["enabled"] = true
	return stats
}

// Close releases the provider
func (s *Service) Close() error {
	if s == nil || s.provider == nil {
		return nil
	}
	return s.provider.Close()
}
