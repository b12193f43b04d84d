package analysis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"atsgenie/internal/ai"
	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(tips *ai.Service) *Service {
	s := NewService(config.MatchConfig{MaxBatchJobs: 3}, tips, nil, errors.NewLogger(0))
	s.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

type stubTips struct {
	tips []string
	err  error
}

func (s stubTips) SuggestTips(context.Context, types.TipInput) ([]string, *ai.TokenUsage, error) {
	return s.tips, nil, s.err
}

func (s stubTips) Stats() map[string]any { return map[string]any{} }

func (s stubTips) Close() error { return nil }

func TestRating(t *testing.T) {
	tests := []struct {
		score  float64
		rating string
		banner string
	}{
		{100, RatingExcellent, "Amazing! Your resume is highly aligned with this job."},
		{80, RatingExcellent, "Amazing! Your resume is highly aligned with this job."},
		{79.99, RatingGood, "Good match. With a few tweaks, this can be great."},
		{60, RatingGood, "Good match. With a few tweaks, this can be great."},
		{59.99, RatingAverage, "Average match. You should customize your resume more."},
		{40, RatingAverage, "Average match. You should customize your resume more."},
		{39.99, RatingLow, "Low match. You need to tailor your resume significantly."},
		{0, RatingLow, "Low match. You need to tailor your resume significantly."},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.score), func(t *testing.T) {
			assert.Equal(t, tt.rating, Rating(tt.score))
			assert.Equal(t, tt.banner, Banner(tt.rating))
		})
	}
}

func TestAnalyze(t *testing.T) {
	s := newTestService(nil)

	report, err := s.Analyze(context.Background(), "test", types.MatchInput{
		Resume:         "Python developer with Django experience",
		JobDescription: "Looking for Python Django developer with AWS",
	})
	require.NoError(t, err)

	assert.Equal(t, 60.0, report.Score)
	assert.Equal(t, RatingGood, report.Rating)
	assert.Equal(t, []string{"developer", "django", "python"}, report.Matched)
	assert.Equal(t, []string{"aws", "looking"}, report.Missing)
	assert.Empty(t, report.MatchedMessage)
	assert.Empty(t, report.MissingMessage)
	assert.Equal(t, StaticTips, report.Tips)
	assert.Equal(t, types.TipSourceStatic, report.TipSource)
	assert.Nil(t, report.Details)
	assert.NotEmpty(t, report.AnalysisID)
	assert.Equal(t, "2024-05-01T12:00:00Z", report.CreatedAt)
}

func TestAnalyzeMessages(t *testing.T) {
	s := newTestService(nil)

	report, err := s.Analyze(context.Background(), "test", types.MatchInput{
		Resume:         "Chef and baker",
		JobDescription: "Golang kubernetes",
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.Score)
	assert.Equal(t, noMatchesMessage, report.MatchedMessage)
	assert.Empty(t, report.MissingMessage)

	report, err = s.Analyze(context.Background(), "test", types.MatchInput{
		Resume:         "golang kubernetes docker",
		JobDescription: "Golang Kubernetes",
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, report.Score)
	assert.Equal(t, noMissingMessage, report.MissingMessage)
	assert.Equal(t, RatingExcellent, report.Rating)
}

func TestAnalyzeDetails(t *testing.T) {
	s := newTestService(nil)

	report, err := s.Analyze(context.Background(), "test", types.MatchInput{
		Resume:         "go go rust",
		JobDescription: "rust python",
		Details:        true,
	})
	require.NoError(t, err)
	require.NotNil(t, report.Details)
	assert.Equal(t, 1, report.Details.ResumeKeywordCount)
	assert.Equal(t, 2, report.Details.JobKeywordCount)
	assert.Equal(t, []string{"rust"}, report.Details.ResumeKeywords)
	assert.Equal(t, []string{"python", "rust"}, report.Details.JobKeywords)
}

func TestAnalyzeValidation(t *testing.T) {
	s := newTestService(nil)

	tests := []struct {
		name string
		in   types.MatchInput
		code string
	}{
		{"empty resume", types.MatchInput{Resume: "", JobDescription: "python"}, errors.ErrCodeEmptyInput},
		{"blank job", types.MatchInput{Resume: "python", JobDescription: " \n\t "}, errors.ErrCodeEmptyInput},
		{"bad format", types.MatchInput{Resume: "python", JobDescription: "python", InputFormat: "pdf"}, errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := s.Analyze(context.Background(), "test", tt.in)
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	_, err := s.Analyze(context.Background(), "test", types.MatchInput{})
	assert.EqualError(t, err, "EMPTY_INPUT: "+errors.EmptyInputMessage)
}

func TestAnalyzeHTML(t *testing.T) {
	s := newTestService(nil)

	report, err := s.Analyze(context.Background(), "test", types.MatchInput{
		Resume:         "kubernetes",
		JobDescription: `<div class="posting"><h2>Requirements</h2><ul><li>Kubernetes</li></ul></div>`,
		InputFormat:    types.InputFormatHTML,
		Details:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"kubernetes", "requirements"}, report.Details.JobKeywords)
	assert.Equal(t, 50.0, report.Score)
}

func TestAnalyzeAITips(t *testing.T) {
	in := types.MatchInput{
		Resume:         "python",
		JobDescription: "python kubernetes",
		AITips:         true,
	}

	t.Run("appended", func(t *testing.T) {
		tips := ai.NewServiceWithProvider(stubTips{tips: []string{"Mention Kubernetes projects."}}, 3, nil, nil)
		report, err := newTestService(tips).Analyze(context.Background(), "test", in)
		require.NoError(t, err)
		assert.Equal(t, types.TipSourceAI, report.TipSource)
		assert.Len(t, report.Tips, len(StaticTips)+1)
		assert.Equal(t, "Mention Kubernetes projects.", report.Tips[len(report.Tips)-1])
	})

	t.Run("failure falls back", func(t *testing.T) {
		tips := ai.NewServiceWithProvider(stubTips{err: fmt.Errorf("quota")}, 3, nil, nil)
		report, err := newTestService(tips).Analyze(context.Background(), "test", in)
		require.NoError(t, err)
		assert.Equal(t, types.TipSourceStatic, report.TipSource)
		assert.Equal(t, StaticTips, report.Tips)
	})

	t.Run("not configured", func(t *testing.T) {
		report, err := newTestService(nil).Analyze(context.Background(), "test", in)
		require.NoError(t, err)
		assert.Equal(t, types.TipSourceStatic, report.TipSource)
	})
}

func TestStaticTipsNotShared(t *testing.T) {
	s := newTestService(nil)
	report, err := s.Analyze(context.Background(), "test", types.MatchInput{Resume: "go", JobDescription: "rust"})
	require.NoError(t, err)
	report.Tips[0] = "changed"
	assert.Equal(t, "Use the missing keywords naturally in your experience/skills sections.", StaticTips[0])
}

func TestAnalyzeBatch(t *testing.T) {
	s := newTestService(nil)

	report, err := s.AnalyzeBatch(context.Background(), "test", types.BatchInput{
		Resume: "golang kubernetes postgres",
		Jobs: []types.BatchJob{
			{Label: "frontend", Description: "react typescript css"},
			{Label: "backend", Description: "golang postgres"},
			{Label: "", Description: "golang kubernetes terraform"},
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 3)

	assert.Equal(t, 3, report.ResumeKeywordCount)
	assert.Equal(t, "backend", report.Entries[0].Label)
	assert.Equal(t, 1, report.Entries[0].Rank)
	assert.Equal(t, 100.0, report.Entries[0].Score)
	assert.Equal(t, "job-3", report.Entries[1].Label)
	assert.Equal(t, 66.67, report.Entries[1].Score)
	assert.Equal(t, RatingGood, report.Entries[1].Rating)
	assert.Equal(t, 1, report.Entries[1].MissingCount)
	assert.Equal(t, "frontend", report.Entries[2].Label)
	assert.Equal(t, 0.0, report.Entries[2].Score)
	assert.Equal(t, 3, report.Entries[2].Rank)
}

func TestAnalyzeBatchValidation(t *testing.T) {
	s := newTestService(nil)
	job := types.BatchJob{Label: "a", Description: "golang"}

	tests := []struct {
		name string
		in   types.BatchInput
		code string
	}{
		{"blank resume", types.BatchInput{Resume: " ", Jobs: []types.BatchJob{job}}, errors.ErrCodeEmptyInput},
		{"no jobs", types.BatchInput{Resume: "go"}, errors.ErrCodeEmptyInput},
		{"too many", types.BatchInput{Resume: "go", Jobs: []types.BatchJob{job, job, job, job}}, errors.ErrCodeTooManyJobs},
		{"blank job", types.BatchInput{Resume: "go", Jobs: []types.BatchJob{job, {Label: "empty", Description: ""}}}, errors.ErrCodeEmptyInput},
		{"bad format", types.BatchInput{Resume: "go", Jobs: []types.BatchJob{job}, InputFormat: "doc"}, errors.ErrCodeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AnalyzeBatch(context.Background(), "test", tt.in)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}

	_, err := s.AnalyzeBatch(context.Background(), "test", types.BatchInput{
		Resume: "go",
		Jobs:   []types.BatchJob{job, {Label: "empty", Description: ""}},
	})
	assert.ErrorContains(t, err, `"empty"`)
}

func TestFormatForPath(t *testing.T) {
	exts := []string{".html", ".htm"}
	assert.Equal(t, types.InputFormatHTML, FormatForPath("job.HTML", exts))
	assert.Equal(t, types.InputFormatHTML, FormatForPath("dir/job.htm", exts))
	assert.Equal(t, types.InputFormatText, FormatForPath("job.txt", exts))
	assert.Equal(t, types.InputFormatText, FormatForPath("job", exts))
}
