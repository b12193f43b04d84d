package cli

import (
	"fmt"
	"net/http"

	"atsgenie/internal/config"
	"atsgenie/internal/mcpserver"
	"atsgenie/internal/server"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
	caFile   string
	mcp      bool
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start an HTTP server that scores resumes over a JSON API.

Available endpoints:
- POST /match: Score a resume against a job description
- POST /batch: Rank several job descriptions for one resume
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info
- /mcp: Model Context Protocol over streamable HTTP (when enabled)

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&opts.tlsMode, "tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	cmd.Flags().StringVar(&opts.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().StringVar(&opts.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	cmd.Flags().StringVar(&opts.caFile, "ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
	cmd.Flags().BoolVar(&opts.mcp, "mcp", true, "Serve MCP tools at /mcp (overrides config)")
	return cmd
}

// apply copies explicitly set flags over the configured server settings
func (o *serveOptions) apply(cmd *cobra.Command, cfg config.ServerConfig) config.ServerConfig {
	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}

	set("port", &cfg.Port, o.port)
	set("host", &cfg.Host, o.host)
	set("tls-mode", &cfg.TLS.Mode, o.tlsMode)
	set("cert-file", &cfg.TLS.CertFile, o.certFile)
	set("key-file", &cfg.TLS.KeyFile, o.keyFile)
	set("ca-file", &cfg.TLS.CAFile, o.caFile)
	if flags.Changed("mcp") {
		cfg.EnableMCP = o.mcp
	}
	return cfg
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	serverCfg := opts.apply(cmd, cfg.Server)

	// Validate TLS configuration after applying overrides
	tempConfig := &config.Config{Server: serverCfg}
	if err := tempConfig.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	svc, err := newServices(ctx, cfg, logger, true)
	if err != nil {
		return err
	}
	defer svc.close()

	var mcpHandler http.Handler
	if serverCfg.EnableMCP {
		mcpHandler = mcpserver.NewServer(Version, svc.analysis, logger).HTTPHandler()
	}

	srv := server.NewServer(server.Options{
		Config:          serverCfg,
		Version:         Version,
		Analysis:        svc.analysis,
		MCP:             mcpHandler,
		Observability:   svc.om,
		Logger:          logger,
		Out:             cmd.OutOrStdout(),
		CertReloadDelay: cfg.Watch.DebounceDelay,
	})
	return srv.Start(ctx)
}
