package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"atsgenie/internal/ai"
	"atsgenie/internal/analysis"
	"atsgenie/internal/common"
	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/formatters"
	"atsgenie/internal/observability"
	"atsgenie/internal/types"

	"github.com/spf13/cobra"
)

const sourceCLI = "cli"

// services bundles what every scoring command needs
type services struct {
	om       *observability.ObservabilityManager
	tips     *ai.Service
	analysis *analysis.Service
	logger   *errors.Logger
}

// newServices wires observability, the optional AI tips provider and the analysis service.
// Only long running commands expose the Prometheus endpoint.
func newServices(ctx context.Context, cfg *config.Config, logger *errors.Logger, prometheus bool) (*services, error) {
	obsCfg := observability.GetObservabilityConfig(cfg, Version)
	if !prometheus {
		obsCfg.Prometheus.Enabled = false
	}

	om, err := observability.NewObservabilityManager(obsCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}

	tips, err := ai.NewService(ctx, cfg.AI, om, logger)
	if err != nil {
		_ = om.Shutdown(ctx)
		return nil, fmt.Errorf("failed to create AI tips service: %w", err)
	}

	return &services{
		om:       om,
		tips:     tips,
		analysis: analysis.NewService(cfg.Match, tips, om, logger),
		logger:   logger,
	}, nil
}

func (s *services) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.tips.Close(); err != nil {
		s.logger.Warn("Failed to close AI tips provider", "error", err)
	}
	if err := s.om.Shutdown(ctx); err != nil {
		s.logger.Warn("Failed to shut down observability", "error", err)
	}
}

func newRunner(cmd *cobra.Command, cfg *config.Config, logger *errors.Logger) *common.Runner {
	fp := common.NewFileProcessor(logger, cfg.App.MaxFileSize, cfg.Match.HTMLExtensions)
	return &common.Runner{
		Files:  fp,
		Output: common.NewOutputHandler(fp, cmd.OutOrStdout(), logger),
		Logger: logger,
	}
}

// addOutputFlags registers -o and --format on a file based command
func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, markdown or xlsx")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.NewFormatterRegistry().GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutputFormat applies the configured default and validates the destination
func resolveOutputFormat(cmd *cobra.Command, cc *common.CommandConfig) error {
	cfg := getConfigFromContext(cmd.Context())
	if cc.OutputFormat == "" {
		cc.OutputFormat = cfg.App.DefaultFormat
	}
	if err := common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats); err != nil {
		return err
	}
	return common.ValidateOutputTarget(cc.OutputFormat, cc.OutputFile)
}

// documentText returns a document's plain text, converting HTML files
func documentText(doc common.Document, forceHTML bool) (string, error) {
	format := doc.Format
	if forceHTML {
		format = types.InputFormatHTML
	}
	return analysis.NormalizeText(doc.Content, format)
}

// labelForPath names a batch entry after its file, without directory or extension
func labelForPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
