package cli

import (
	"context"
	"fmt"

	"atsgenie/internal/config"
	"atsgenie/internal/errors"

	"github.com/spf13/cobra"
)

// Define custom private types for context keys.
type configKeyType struct{}
type loggerKeyType struct{}

// Use variables of these types as the keys.
var configKey = configKeyType{}
var loggerKey = loggerKeyType{}

type rootOptions struct {
	configFile string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "atsgenie",
		Short: "Score how well a resume covers a job description's keywords",
		Long: `atsgenie compares a resume with a job description the way a simple
applicant tracking system would: it extracts keywords from both, reports the
share of job keywords the resume covers, and lists what is missing.

It runs as a one-shot CLI, a file watcher, an HTTP API or an MCP tool server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.attach(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default: ./config.yaml, $HOME/.atsgenie/, /etc/atsgenie/)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override: debug, info, warn or error")

	cmd.AddCommand(newMatchCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newWatchCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMCPCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the command line until ctx is cancelled
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// attach loads configuration and the logger and stores them on the command context
func (o *rootOptions) attach(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadConfigFile(o.configFile)
	} else {
		cfg, err = config.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if o.logLevel != "" {
		cfg.App.LogLevel = o.logLevel
	}
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return fmt.Errorf("failed to load secrets from vault: %w", err)
	}

	logger.Debug("Starting atsgenie",
		"version", Version,
		"command", cmd.Name(),
		"log_level", cfg.App.LogLevel,
		"ai_tips", cfg.AI.TipsAvailable())

	ctx := context.WithValue(cmd.Context(), configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	cmd.SetContext(ctx)
	return nil
}

// getConfigFromContext is a helper function to get config from context
func getConfigFromContext(ctx context.Context) *config.Config {
	if cfg, ok := ctx.Value(configKey).(*config.Config); ok {
		return cfg
	}
	panic("config not found in context") // Should not happen if properly initialized
}

// getLoggerFromContext is a helper function to get logger from context
func getLoggerFromContext(ctx context.Context) *errors.Logger {
	if logger, ok := ctx.Value(loggerKey).(*errors.Logger); ok {
		return logger
	}
	panic("logger not found in context") // Should not happen if properly initialized
}
