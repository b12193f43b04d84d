package cli

import (
	"context"
	"fmt"
	"time"

	"atsgenie/internal/common"
	"atsgenie/internal/types"
	"atsgenie/internal/watcher"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	opts := &matchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [resume-file] [job-description-file]",
		Short: "Re-score a resume every time it or the job description changes",
		Long: `Score a resume against a job description, then keep watching both files
and print a fresh report after every save. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveOutputFormat(cmd, &opts.output)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	addOutputFlags(cmd, &opts.output)
	cmd.Flags().BoolVar(&opts.details, "details", false, "Include keyword counts and full keyword lists")
	cmd.Flags().BoolVar(&opts.aiTips, "ai-tips", false, "Ask the configured AI provider for tailored tips")
	cmd.Flags().BoolVar(&opts.html, "html", false, "Treat the job description as HTML regardless of its extension")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *matchOptions) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	svc, err := newServices(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer svc.close()

	runner := newRunner(cmd, cfg, logger)
	score := func() {
		err := common.RunCommand(ctx, runner, opts.output, args, opts.input,
			func(ctx context.Context, in types.MatchInput) (*types.MatchReport, error) {
				return svc.analysis.Analyze(ctx, sourceCLI, in)
			})
		if err != nil {
			logger.LogError(err, "Scoring failed, waiting for the next change")
		}
	}

	score()

	fw, err := watcher.NewFileWatcher(args, cfg.Watch.DebounceDelay, func(changed []string) {
		logger.Info("Input changed, re-scoring", "files", changed)
		fmt.Fprintf(cmd.ErrOrStderr(), "\n--- re-scored at %s ---\n", time.Now().Format(time.TimeOnly))
		score()
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fw.Start(); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer func() {
		if err := fw.Stop(); err != nil {
			logger.Warn("Failed to stop file watcher", "error", err)
		}
	}()

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s and %s for changes (Ctrl+C to stop)\n", args[0], args[1])
	<-ctx.Done()
	return nil
}
