package cli

import (
	"context"
	"fmt"

	"atsgenie/internal/common"
	"atsgenie/internal/types"

	"github.com/spf13/cobra"
)

type matchOptions struct {
	output  common.CommandConfig
	details bool
	aiTips  bool
	html    bool
}

func newMatchCmd() *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "match [resume-file] [job-description-file]",
		Short: "Score a resume against a job description",
		Long: `Score how well a resume covers the keywords of a job description.

The report contains:
- The match score as a percentage of job keywords found in the resume
- A rating (excellent, good, average or low) with a short banner
- Matched and missing keywords in alphabetical order
- Tips for improving the resume

Job descriptions saved as .html or .htm are converted to text first.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutputFormat(cmd, &opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd, args, opts)
		},
	}

	addOutputFlags(cmd, &opts.output)
	cmd.Flags().BoolVar(&opts.details, "details", false, "Include keyword counts and full keyword lists")
	cmd.Flags().BoolVar(&opts.aiTips, "ai-tips", false, "Ask the configured AI provider for tailored tips")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Treat the job description as HTML regardless of its extension")
	return cmd
}

func runMatch(cmd *cobra.Command, args []string, opts *matchOptions) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	svc, err := newServices(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer svc.close()

	logger.Debug("Starting match",
		"resume", args[0],
		"job_description", args[1],
		"output_format", opts.output.OutputFormat)

	err = common.RunCommand(ctx, newRunner(cmd, cfg, logger), opts.output, args, opts.input,
		func(ctx context.Context, in types.MatchInput) (*types.MatchReport, error) {
			return svc.analysis.Analyze(ctx, sourceCLI, in)
		})
	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}

	logger.Debug("Match completed successfully")
	return nil
}

func (o *matchOptions) input(docs []common.Document) (types.MatchInput, error) {
	if len(docs) != 2 {
		return types.MatchInput{}, fmt.Errorf("expected 2 file paths, got %d", len(docs))
	}

	resume, err := documentText(docs[0], false)
	if err != nil {
		return types.MatchInput{}, err
	}

	format := docs[1].Format
	if o.html {
		format = types.InputFormatHTML
	}

	return types.MatchInput{
		Resume:         resume,
		JobDescription: docs[1].Content,
		InputFormat:    format,
		Details:        o.details,
		AITips:         o.aiTips,
	}, nil
}
