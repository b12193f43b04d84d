package ai

import (
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: text}}}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 30,
			TotalTokenCount:      150,
		},
	}
}

func testAIConfig() config.AIConfig {
	return config.AIConfig{
		Enabled:     true,
		Provider:    "gemini",
		Model:       "gemini-test",
		APIKey:      "test-key",
		MaxRetries:  2,
		Temperature: 0.3,
		MaxTips:     3,
	}
}

func newTestProvider(cfg config.AIConfig, generate generateFunc) *GeminiTips {
	g := newGeminiTips(cfg, "", generate, errors.NewLogger(0))
	g.baseDelay = time.Millisecond
	return g
}

func TestBuildTipPrompt(t *testing.T) {
	input := types.TipInput{
		JobDescription: "Looking for a Go engineer",
		Matched:        []string{"engineer"},
		Missing:        []string{"golang", "kubernetes"},
		Score:          33.33,
		MaxTips:        4,
	}

	prompt := buildTipPrompt("", input)
	assert.Contains(t, prompt, "33.33%")
	assert.Contains(t, prompt, "Keywords already present: engineer")
	assert.Contains(t, prompt, "Keywords missing from the resume: golang, kubernetes")
	assert.Contains(t, prompt, "at most 4 tips")
	assert.Contains(t, prompt, "Looking for a Go engineer")

	empty := buildTipPrompt("", types.TipInput{JobDescription: "x"})
	assert.Contains(t, empty, "Keywords already present: (none)")

	long := buildTipPrompt("%.0f|%s|%s|%d|%s", types.TipInput{JobDescription: strings.Repeat("a", maxJobDescriptionChars+10)})
	assert.True(t, strings.HasSuffix(long, "[truncated]"))
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", fmt.Errorf("bad request"), false},
		{"net timeout", &net.DNSError{Err: "timeout", IsTimeout: true}, true},
		{"rate limited", &googleapi.Error{Code: 429}, true},
		{"unavailable", fmt.Errorf("wrapped: %w", &googleapi.Error{Code: 503}), true},
		{"unauthorized", &googleapi.Error{Code: 401}, false},
		{"bad request", &googleapi.Error{Code: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}

func TestGeminiTipsSuggest(t *testing.T) {
	var gotModel, gotPrompt string
	var gotConfig *genai.GenerateContentConfig
	g := newTestProvider(testAIConfig(), func(ctx context.Context, model, prompt string, gc *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		gotModel, gotPrompt, gotConfig = model, prompt, gc
		return textResponse(`{"tips":["Mention Kubernetes in your latest role."]}`), nil
	})

	tips, usage, err := g.SuggestTips(context.Background(), types.TipInput{
		JobDescription: "kubernetes",
		Missing:        []string{"kubernetes"},
		MaxTips:        2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Mention Kubernetes in your latest role."}, tips)
	require.NotNil(t, usage)
	assert.Equal(t, int64(150), usage.TotalTokens)

	assert.Equal(t, "gemini-test", gotModel)
	assert.Contains(t, gotPrompt, "kubernetes")
	require.NotNil(t, gotConfig)
	assert.Equal(t, "application/json", gotConfig.ResponseMIMEType)
	assert.Contains(t, gotConfig.ResponseSchema.Properties, "tips")
	require.NotNil(t, gotConfig.Temperature)
	assert.InDelta(t, 0.3, *gotConfig.Temperature, 1e-6)
}

func TestGeminiTipsRetry(t *testing.T) {
	t.Run("retries transient failures", func(t *testing.T) {
		calls := 0
		g := newTestProvider(testAIConfig(), func(context.Context, string, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls++
			if calls < 3 {
				return nil, &googleapi.Error{Code: 503}
			}
			return textResponse(`{"tips":["ok"]}`), nil
		})

		tips, _, err := g.SuggestTips(context.Background(), types.TipInput{MaxTips: 1})
		require.NoError(t, err)
		assert.Equal(t, []string{"ok"}, tips)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent failures", func(t *testing.T) {
		calls := 0
		g := newTestProvider(testAIConfig(), func(context.Context, string, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			calls++
			return nil, &googleapi.Error{Code: 401}
		})

		_, _, err := g.SuggestTips(context.Background(), types.TipInput{MaxTips: 1})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.True(t, errors.HasCode(err, errors.ErrCodeAIServiceFailed))
	})

	t.Run("bad json", func(t *testing.T) {
		g := newTestProvider(testAIConfig(), func(context.Context, string, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return textResponse("not json"), nil
		})

		_, _, err := g.SuggestTips(context.Background(), types.TipInput{MaxTips: 1})
		require.Error(t, err)
		assert.True(t, errors.HasCode(err, "AI_RESPONSE_PARSE_FAILED"))
	})
}

func TestCircuitBreakerOpens(t *testing.T) {
	cfg := testAIConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}

	calls := 0
	g := newTestProvider(cfg, func(context.Context, string, string, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		calls++
		return nil, fmt.Errorf("upstream down")
	})

	for range 2 {
		_, _, err := g.SuggestTips(context.Background(), types.TipInput{MaxTips: 1})
		require.Error(t, err)
	}
	assert.False(t, g.breaker.IsHealthy())

	_, _, err := g.SuggestTips(context.Background(), types.TipInput{MaxTips: 1})
	require.Error(t, err)
	assert.Equal(t, 2, calls, "open breaker must not reach the provider")

	stats := g.Stats()
	cbStats, ok := stats["circuit_breaker"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "open", cbStats["state"])
	assert.Equal(t, "ai-tips", cbStats["name"])
}

func TestDisabledCircuitBreaker(t *testing.T) {
	b := NewAICircuitBreaker("off", config.CircuitBreakerConfig{}, nil)
	assert.Nil(t, b)
	assert.True(t, b.IsHealthy())
	assert.Equal(t, false, b.GetStats()["enabled"])

	resp, err := b.Execute(func() (*genai.GenerateContentResponse, error) {
		return textResponse("x"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "x", resp.Text())
}

type fakeProvider struct {
	tips  []string
	usage *TokenUsage
	err   error
	got   types.TipInput
}

func (f *fakeProvider) SuggestTips(_ context.Context, input types.TipInput) ([]string, *TokenUsage, error) {
	f.got = input
	return f.tips, f.usage, f.err
}

func (f *fakeProvider) Stats() map[string]any { return map[string]any{"provider": "fake"} }

func (f *fakeProvider) Close() error { return nil }

func TestServiceSuggestTips(t *testing.T) {
	provider := &fakeProvider{
		tips:  []string{"  Add Go  ", "", "add go", "Add Docker", "Add Kafka", "Add Redis"},
		usage: &TokenUsage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3},
	}
	svc := NewServiceWithProvider(provider, 3, nil, errors.NewLogger(0))

	tips, err := svc.SuggestTips(context.Background(), types.TipInput{MaxTips: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"Add Go", "Add Docker", "Add Kafka"}, tips)
	assert.Equal(t, 3, provider.got.MaxTips)

	stats := svc.Stats()
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, "fake", stats["provider"])
	assert.NoError(t, svc.Close())
}

func TestServiceErrors(t *testing.T) {
	svc := NewServiceWithProvider(&fakeProvider{err: fmt.Errorf("boom")}, 3, nil, nil)
	_, err := svc.SuggestTips(context.Background(), types.TipInput{})
	assert.EqualError(t, err, "boom")

	var nilSvc *Service
	_, err = nilSvc.SuggestTips(context.Background(), types.TipInput{})
	assert.Error(t, err)
	assert.Equal(t, false, nilSvc.Stats()["enabled"])
	assert.NoError(t, nilSvc.Close())
}

func TestNewServiceDisabled(t *testing.T) {
	svc, err := NewService(context.Background(), config.AIConfig{Enabled: false}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, svc)

	svc, err = NewService(context.Background(), config.AIConfig{Enabled: true}, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, svc)

	_, err = NewService(context.Background(), config.AIConfig{Enabled: true, APIKey: "k", Provider: "openai"}, nil, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfig))
}
