package cli

import (
	"context"
	"fmt"

	"atsgenie/internal/common"
	"atsgenie/internal/types"

	"github.com/spf13/cobra"
)

type batchOptions struct {
	output common.CommandConfig
	html   bool
}

func newBatchCmd() *cobra.Command {
	opts := &batchOptions{}

	cmd := &cobra.Command{
		Use:   "batch [resume-file] [job-description-file...]",
		Short: "Rank several job descriptions against one resume",
		Long: `Score one resume against several job descriptions and rank them from
best to worst match. Each job is labeled with its file name.

Ties are broken alphabetically by label.`,
		Args: cobra.MinimumNArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutputFormat(cmd, &opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, args, opts)
		},
	}

	addOutputFlags(cmd, &opts.output)
	cmd.Flags().BoolVar(&opts.html, "html", false, "Treat every job description as HTML regardless of its extension")
	return cmd
}

func runBatch(cmd *cobra.Command, args []string, opts *batchOptions) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	svc, err := newServices(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer svc.close()

	logger.Debug("Starting batch match",
		"resume", args[0],
		"jobs", len(args)-1,
		"output_format", opts.output.OutputFormat)

	err = common.RunCommand(ctx, newRunner(cmd, cfg, logger), opts.output, args, opts.input,
		func(ctx context.Context, in types.BatchInput) (*types.BatchReport, error) {
			return svc.analysis.AnalyzeBatch(ctx, sourceCLI, in)
		})
	if err != nil {
		return fmt.Errorf("failed to rank job descriptions: %w", err)
	}

	logger.Debug("Batch match completed successfully")
	return nil
}

// input converts every job up front since files may mix text and HTML
func (o *batchOptions) input(docs []common.Document) (types.BatchInput, error) {
	if len(docs) < 2 {
		return types.BatchInput{}, fmt.Errorf("expected a resume and at least 1 job description, got %d files", len(docs))
	}

	resume, err := documentText(docs[0], false)
	if err != nil {
		return types.BatchInput{}, err
	}

	jobs := make([]types.BatchJob, 0, len(docs)-1)
	for _, doc := range docs[1:] {
		text, err := documentText(doc, o.html)
		if err != nil {
			return types.BatchInput{}, err
		}
		jobs = append(jobs, types.BatchJob{Label: labelForPath(doc.Path), Description: text})
	}

	return types.BatchInput{
		Resume:      resume,
		Jobs:        jobs,
		InputFormat: types.InputFormatText,
	}, nil
}
