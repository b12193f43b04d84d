package cli

import (
	"atsgenie/internal/mcpserver"

	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the match tools over MCP on stdin/stdout",
		Long: `Run a Model Context Protocol server on stdin/stdout so AI assistants can
call the ats_match and ats_batch_match tools directly.

Logs go to stderr, stdout carries only protocol messages.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := getConfigFromContext(ctx)
			logger := getLoggerFromContext(ctx)

			svc, err := newServices(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer svc.close()

			return mcpserver.NewServer(Version, svc.analysis, logger).RunStdio(ctx)
		},
	}
}
