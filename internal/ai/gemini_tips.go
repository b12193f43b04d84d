package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const maxBackoff = 30 * time.Second

type generateFunc func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiTips implements TipProvider for Google Gemini
type GeminiTips struct {
	cfg       config.AIConfig
	template  string
	breaker   *AICircuitBreaker
	logger    *errors.Logger
	baseDelay time.Duration
	generate  generateFunc
}

var _ TipProvider = (*GeminiTips)(nil)

// NewGeminiTips creates a Gemini backed tip provider
func NewGeminiTips(ctx context.Context, cfg config.AIConfig, logger *errors.Logger) (*GeminiTips, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	template, err := cfg.LoadPromptTemplate()
	if err != nil {
		return nil, err
	}

	generate := func(ctx context.Context, model, prompt string, gc *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	}
	return newGeminiTips(cfg, template, generate, logger), nil
}

func newGeminiTips(cfg config.AIConfig, template string, generate generateFunc, logger *errors.Logger) *GeminiTips {
	return &GeminiTips{
		cfg:       cfg,
		template:  template,
		breaker:   NewAICircuitBreaker("ai-tips", cfg.CircuitBreaker, logger),
		logger:    logger,
		baseDelay: time.Second,
		generate:  generate,
	}
}

// SuggestTips asks the model for tips covering the missing keywords
func (g *GeminiTips) SuggestTips(ctx context.Context, input types.TipInput) ([]string, *TokenUsage, error) {
	ctx, span := otel.Tracer("atsgenie.ai.gemini").Start(ctx, "gemini.suggest_tips")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.cfg.Model),
		attribute.Int("input.missing_count", len(input.Missing)),
		attribute.Int("input.job_length", len(input.JobDescription)),
	)

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	prompt := buildTipPrompt(g.template, input)
	gc := g.buildTipsSchema()

	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, "suggest_tips", func() (*genai.GenerateContentResponse, error) {
			return g.generate(ctx, g.cfg.Model, prompt, gc)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to generate tips", err)
	}

	var out types.TipOutput
	if err := json.Unmarshal([]byte(result.Text()), &out); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, errors.NewAIError("AI_RESPONSE_PARSE_FAILED", "Failed to parse tips response", err)
	}

	usage := extractTokenUsage(result)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.tips_count", len(out.Tips)),
	)
	return out.Tips, usage, nil
}

func (g *GeminiTips) buildTipsSchema() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(DefaultSystemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"tips": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
			},
			Required: []string{"tips"},
		},
	}
	if g.cfg.Temperature > 0 {
		temperature := g.cfg.Temperature
		gc.Temperature = &temperature
	}
	return gc
}

// executeWithRetry retries fn with exponential backoff and jitter
func (g *GeminiTips) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.cfg.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, g.cfg.MaxRetries, lastErr)
}

func (g *GeminiTips) backoff(attempt int) time.Duration {
	delay := time.Duration(math.Pow(2, float64(attempt-1))) * g.baseDelay
	if span := int64(float64(delay) * 0.1); span > 0 {
		if j, err := rand.Int(rand.Reader, big.NewInt(span)); err == nil {
			delay += time.Duration(j.Int64())
		}
	}
	return min(delay, maxBackoff)
}

// isRetryableError reports whether err is a transient network or server failure
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

func extractTokenUsage(resp *genai.GenerateContentResponse) *TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int64(resp.UsageMetadata.TotalTokenCount),
	}
}

// Stats returns provider statistics
func (g *GeminiTips) Stats() map[string]any {
	return map[string]any{
		"provider":        "gemini",
		"model":           g.cfg.Model,
		"circuit_breaker": g.breaker.GetStats(),
		"healthy":         g.breaker.IsHealthy(),
	}
}

// Close releases provider resources
func (g *GeminiTips) Close() error {
	return nil
}
