package observability

import (
	"context"
	"fmt"
	"time"

	"atsgenie/internal/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Metrics holds the application instruments. Nil instruments are skipped.
type Metrics struct {
	// Match metrics
	MatchesTotal       metric.Int64Counter
	MatchScore         metric.Float64Histogram
	MatchDuration      metric.Float64Histogram
	KeywordCount       metric.Int64Histogram
	BatchSize          metric.Int64Histogram
	ValidationFailures metric.Int64Counter

	// AI tip metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Infrastructure metrics
	RateLimitHits metric.Int64Counter
}

// newMetrics creates the instruments enabled by cfg
func newMetrics(meter metric.Meter, cfg config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if cfg.MatchOperations.Enabled {
		if m.MatchesTotal, err = meter.Int64Counter("atsgenie_matches_total",
			metric.WithDescription("Total number of resume/job comparisons")); err != nil {
			return nil, fmt.Errorf("failed to create matches metric: %w", err)
		}
		if m.MatchScore, err = meter.Float64Histogram("atsgenie_match_score",
			metric.WithDescription("Distribution of match scores"),
			metric.WithUnit("%"),
			metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)); err != nil {
			return nil, fmt.Errorf("failed to create match score metric: %w", err)
		}
		if m.MatchDuration, err = meter.Float64Histogram("atsgenie_match_duration_seconds",
			metric.WithDescription("Time spent producing a match report"),
			metric.WithUnit("s")); err != nil {
			return nil, fmt.Errorf("failed to create match duration metric: %w", err)
		}
		if m.BatchSize, err = meter.Int64Histogram("atsgenie_batch_jobs",
			metric.WithDescription("Number of job descriptions per batch ranking")); err != nil {
			return nil, fmt.Errorf("failed to create batch size metric: %w", err)
		}
		if m.ValidationFailures, err = meter.Int64Counter("atsgenie_validation_failures_total",
			metric.WithDescription("Requests rejected before matching")); err != nil {
			return nil, fmt.Errorf("failed to create validation failures metric: %w", err)
		}
		if cfg.MatchOperations.TrackKeywordCounts {
			if m.KeywordCount, err = meter.Int64Histogram("atsgenie_keywords",
				metric.WithDescription("Distinct keywords extracted per document")); err != nil {
				return nil, fmt.Errorf("failed to create keyword count metric: %w", err)
			}
		}
	}

	if cfg.AIOperations.Enabled {
		if m.AIProcessingTime, err = meter.Float64Histogram("atsgenie_ai_processing_duration_seconds",
			metric.WithDescription("Time spent generating AI tips"),
			metric.WithUnit("s")); err != nil {
			return nil, fmt.Errorf("failed to create AI processing time metric: %w", err)
		}
		if m.AIRequestCount, err = meter.Int64Counter("atsgenie_ai_requests_total",
			metric.WithDescription("Total number of AI tip requests")); err != nil {
			return nil, fmt.Errorf("failed to create AI request count metric: %w", err)
		}
		if m.AIErrorCount, err = meter.Int64Counter("atsgenie_ai_errors_total",
			metric.WithDescription("Total number of failed AI tip requests")); err != nil {
			return nil, fmt.Errorf("failed to create AI error count metric: %w", err)
		}
		if cfg.AIOperations.TrackTokenUsage {
			if m.AITokenUsage, err = meter.Int64Histogram("atsgenie_ai_token_usage",
				metric.WithDescription("Token usage for AI requests (input, output, total)"),
				metric.WithUnit("tokens")); err != nil {
				return nil, fmt.Errorf("failed to create AI token usage metric: %w", err)
			}
		}
	}

	if cfg.Infrastructure.TrackRateLimits {
		if m.RateLimitHits, err = meter.Int64Counter("atsgenie_rate_limit_hits_total",
			metric.WithDescription("Total number of rate limited requests")); err != nil {
			return nil, fmt.Errorf("failed to create rate limit hits metric: %w", err)
		}
	}

	return m, nil
}

// MatchObservation describes one completed match for recording
type MatchObservation struct {
	Source       string // cli, http, mcp, watch
	Score        float64
	Rating       string
	ResumeCount  int
	JobCount     int
	Duration     time.Duration
	AITipsServed bool
}

// RecordMatch records a completed single match
func (m *Metrics) RecordMatch(ctx context.Context, obs MatchObservation) {
	attrs := metric.WithAttributes(
		attribute.String("source", obs.Source),
		attribute.String("rating", obs.Rating),
		attribute.Bool("ai_tips", obs.AITipsServed),
	)
	if m.MatchesTotal != nil {
		m.MatchesTotal.Add(ctx, 1, attrs)
	}
	if m.MatchScore != nil {
		m.MatchScore.Record(ctx, obs.Score, attrs)
	}
	if m.MatchDuration != nil {
		m.MatchDuration.Record(ctx, obs.Duration.Seconds(), metric.WithAttributes(attribute.String("kind", "single")))
	}
	if m.KeywordCount != nil {
		m.KeywordCount.Record(ctx, int64(obs.ResumeCount), metric.WithAttributes(attribute.String("document", "resume")))
		m.KeywordCount.Record(ctx, int64(obs.JobCount), metric.WithAttributes(attribute.String("document", "job")))
	}
}

// RecordBatch records a completed batch ranking
func (m *Metrics) RecordBatch(ctx context.Context, source string, jobs int, duration time.Duration) {
	if m.BatchSize != nil {
		m.BatchSize.Record(ctx, int64(jobs), metric.WithAttributes(attribute.String("source", source)))
	}
	if m.MatchDuration != nil {
		m.MatchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("kind", "batch")))
	}
}

// RecordValidationFailure records a request rejected before matching
func (m *Metrics) RecordValidationFailure(ctx context.Context, source, code string) {
	if m.ValidationFailures != nil {
		m.ValidationFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("source", source),
			attribute.String("code", code),
		))
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter
func (m *Metrics) RecordRateLimitHit(ctx context.Context, attrs ...attribute.KeyValue) {
	if m.RateLimitHits != nil {
		m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// AIOperationResult holds the result of an AI operation including token usage
type AIOperationResult struct {
	Error      error
	TokenUsage *TokenUsage
}

// TrackAIOperation runs fn inside a span and records duration, outcome and token usage
func (om *ObservabilityManager) TrackAIOperation(ctx context.Context, operation string, fn func(context.Context) *AIOperationResult) error {
	ctx, span := om.Tracer("atsgenie.ai").Start(ctx, "ai."+operation)
	defer span.End()

	start := time.Now()
	result := fn(ctx)
	duration := time.Since(start).Seconds()

	var err error
	if result != nil {
		err = result.Error
	}

	m := om.GetMetrics()
	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}
	if m.AIProcessingTime != nil {
		m.AIProcessingTime.Record(ctx, duration, metric.WithAttributes(attrs...))
	}
	if m.AIRequestCount != nil {
		m.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if err != nil && m.AIErrorCount != nil {
		m.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if result != nil && result.TokenUsage != nil {
		m.recordTokenUsage(ctx, operation, result.TokenUsage, span)
	}

	span.SetAttributes(attrs...)
	if err != nil {
		span.RecordError(err)
	}
	return err
}

func (m *Metrics) recordTokenUsage(ctx context.Context, operation string, usage *TokenUsage, span trace.Span) {
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
	)
	if m.AITokenUsage == nil {
		return
	}
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("token_type", tt.tokenType),
		))
	}
}
