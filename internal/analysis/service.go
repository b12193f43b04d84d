// Package analysis turns keyword match results into user facing reports.
package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"atsgenie/internal/ai"
	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/matcher"
	"atsgenie/internal/observability"
	"atsgenie/internal/types"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Service validates requests, runs the matcher and builds reports
type Service struct {
	tips         *ai.Service
	om           *observability.ObservabilityManager
	logger       *errors.Logger
	showDetails  bool
	maxBatchJobs int
	now          func() time.Time
}

// NewService creates an analysis service. tips may be nil.
func NewService(cfg config.MatchConfig, tips *ai.Service, om *observability.ObservabilityManager, logger *errors.Logger) *Service {
	return &Service{
		tips:         tips,
		om:           om,
		logger:       logger,
		showDetails:  cfg.ShowDetails,
		maxBatchJobs: cfg.MaxBatchJobs,
		now:          time.Now,
	}
}

// TipsEnabled reports whether AI tips can be served
func (s *Service) TipsEnabled() bool {
	return s.tips != nil
}

// TipStats returns AI provider statistics
func (s *Service) TipStats() map[string]any {
	return s.tips.Stats()
}

// Analyze scores a resume against one job description.
// source names the caller for metrics, e.g. cli or http.
func (s *Service) Analyze(ctx context.Context, source string, in types.MatchInput) (*types.MatchReport, error) {
	ctx, span := s.om.Tracer("atsgenie.analysis").Start(ctx, "analysis.match")
	defer span.End()
	start := s.now()

	if strings.TrimSpace(in.Resume) == "" || strings.TrimSpace(in.JobDescription) == "" {
		return nil, s.reject(ctx, source, errors.NewValidationError(errors.ErrCodeEmptyInput, errors.EmptyInputMessage, nil))
	}

	jobText, err := NormalizeText(in.JobDescription, in.InputFormat)
	if err != nil {
		return nil, s.reject(ctx, source, err)
	}

	result := matcher.CalculateMatch(in.Resume, jobText)
	rating := Rating(result.Score)

	report := &types.MatchReport{
		AnalysisID: uuid.NewString(),
		Score:      result.Score,
		Rating:     rating,
		Banner:     Banner(rating),
		Matched:    result.Matched,
		Missing:    result.Missing,
		Tips:       staticTips(),
		TipSource:  types.TipSourceStatic,
		CreatedAt:  start.UTC().Format(time.RFC3339),
	}
	if len(result.Matched) == 0 {
		report.MatchedMessage = noMatchesMessage
	}
	if len(result.Missing) == 0 {
		report.MissingMessage = noMissingMessage
	}
	if in.Details || s.showDetails {
		report.Details = &types.MatchDetails{
			ResumeKeywordCount: result.ResumeKeywords.Len(),
			JobKeywordCount:    result.JobKeywords.Len(),
			ResumeKeywords:     result.ResumeKeywords.Sorted(),
			JobKeywords:        result.JobKeywords.Sorted(),
		}
	}

	if in.AITips {
		s.appendAITips(ctx, report, jobText)
	}

	span.SetAttributes(
		attribute.String("source", source),
		attribute.Float64("match.score", report.Score),
		attribute.String("match.rating", report.Rating),
		attribute.Int("match.job_keywords", result.JobKeywords.Len()),
	)
	s.om.GetMetrics().RecordMatch(ctx, observability.MatchObservation{
		Source:       source,
		Score:        report.Score,
		Rating:       report.Rating,
		ResumeCount:  result.ResumeKeywords.Len(),
		JobCount:     result.JobKeywords.Len(),
		Duration:     time.Since(start),
		AITipsServed: report.TipSource == types.TipSourceAI,
	})
	s.logger.Debug("Match completed",
		"analysis_id", report.AnalysisID,
		"source", source,
		"score", report.Score,
		"rating", report.Rating,
		"matched", len(report.Matched),
		"missing", len(report.Missing))

	return report, nil
}

// appendAITips adds tailored tips after the static ones. Failures keep the static tips.
func (s *Service) appendAITips(ctx context.Context, report *types.MatchReport, jobText string) {
	if s.tips == nil {
		s.logger.Debug("AI tips requested but not configured", "analysis_id", report.AnalysisID)
		return
	}
	if len(report.Missing) == 0 {
		return
	}

	tips, err := s.tips.SuggestTips(ctx, types.TipInput{
		JobDescription: jobText,
		Matched:        report.Matched,
		Missing:        report.Missing,
		Score:          report.Score,
	})
	if err != nil {
		s.logger.LogError(err, "AI tips failed, using static tips", "analysis_id", report.AnalysisID)
		return
	}
	if len(tips) == 0 {
		return
	}

	report.Tips = append(report.Tips, tips...)
	report.TipSource = types.TipSourceAI
}

// AnalyzeBatch ranks the job descriptions by how well the resume covers them
func (s *Service) AnalyzeBatch(ctx context.Context, source string, in types.BatchInput) (*types.BatchReport, error) {
	ctx, span := s.om.Tracer("atsgenie.analysis").Start(ctx, "analysis.batch")
	defer span.End()
	start := s.now()

	if strings.TrimSpace(in.Resume) == "" {
		return nil, s.reject(ctx, source, errors.NewValidationError(errors.ErrCodeEmptyInput, errors.EmptyInputMessage, nil))
	}
	if len(in.Jobs) == 0 {
		return nil, s.reject(ctx, source, errors.NewValidationError(errors.ErrCodeEmptyInput,
			"At least one job description is required", nil))
	}
	if s.maxBatchJobs > 0 && len(in.Jobs) > s.maxBatchJobs {
		return nil, s.reject(ctx, source, errors.NewValidationError(errors.ErrCodeTooManyJobs,
			fmt.Sprintf("Too many job descriptions: %d (maximum %d)", len(in.Jobs), s.maxBatchJobs), nil))
	}

	jobs := make([]matcher.Job, 0, len(in.Jobs))
	for i, job := range in.Jobs {
		label := strings.TrimSpace(job.Label)
		if label == "" {
			label = fmt.Sprintf("job-%d", i+1)
		}
		if strings.TrimSpace(job.Description) == "" {
			return nil, s.reject(ctx, source, errors.NewValidationError(errors.ErrCodeEmptyInput,
				fmt.Sprintf("Job description %q is empty", label), nil).WithContext("label", label))
		}
		text, err := NormalizeText(job.Description, in.InputFormat)
		if err != nil {
			return nil, s.reject(ctx, source, err)
		}
		jobs = append(jobs, matcher.Job{Label: label, Description: text})
	}

	ranked := matcher.RankJobs(in.Resume, jobs)

	report := &types.BatchReport{
		AnalysisID: uuid.NewString(),
		Entries:    make([]types.BatchEntry, 0, len(ranked)),
		CreatedAt:  start.UTC().Format(time.RFC3339),
	}
	for i, r := range ranked {
		if i == 0 {
			report.ResumeKeywordCount = r.Result.ResumeKeywords.Len()
		}
		report.Entries = append(report.Entries, types.BatchEntry{
			Rank:         i + 1,
			Label:        r.Label,
			Score:        r.Result.Score,
			Rating:       Rating(r.Result.Score),
			MatchedCount: len(r.Result.Matched),
			MissingCount: len(r.Result.Missing),
			Matched:      r.Result.Matched,
			Missing:      r.Result.Missing,
		})
	}

	span.SetAttributes(
		attribute.String("source", source),
		attribute.Int("batch.jobs", len(jobs)),
	)
	s.om.GetMetrics().RecordBatch(ctx, source, len(jobs), time.Since(start))
	s.logger.Debug("Batch match completed",
		"analysis_id", report.AnalysisID,
		"source", source,
		"jobs", len(jobs))

	return report, nil
}

func (s *Service) reject(ctx context.Context, source string, err error) error {
	code := errors.ErrCodeInvalidRequest
	if appErr, ok := errors.AsAppError(err); ok {
		code = appErr.Code
	}
	s.om.GetMetrics().RecordValidationFailure(ctx, source, code)
	s.logger.Debug("Match request rejected", "source", source, "code", code)
	return err
}
