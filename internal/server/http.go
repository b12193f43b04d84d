package server

import (
	"io"
	"net/http"
	"os"
	"time"

	"atsgenie/internal/analysis"
	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/observability"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	TLSConfig config.TLSConfig

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   config.RateLimitConfig
	RateLimiter *RateLimiter

	Analysis *analysis.Service
	MCP      http.Handler // optional streamable MCP endpoint

	CertReloadDelay time.Duration

	om     *observability.ObservabilityManager
	certs  *certificateStore
	out    io.Writer
	Logger *errors.Logger
}

// Options holds the collaborators for creating a Server instance
type Options struct {
	Config        config.ServerConfig
	Version       string
	Analysis      *analysis.Service
	MCP           http.Handler
	Observability *observability.ObservabilityManager
	Logger        *errors.Logger
	Out           io.Writer // startup banner, defaults to stdout

	CertReloadDelay time.Duration // debounce for certificate file changes
}

// NewServer creates a new Server instance
func NewServer(opts Options) *Server {
	cfg := opts.Config

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.Window, cfg.RateLimit.BurstCapacity, opts.Logger)
	}

	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Server{
		Host:            cfg.Host,
		Port:            cfg.Port,
		Version:         opts.Version,
		TLSConfig:       cfg.TLS,
		APIKeys:         apiKeyMap,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		IdleTimeout:     cfg.IdleTimeout,
		MaxRequestSize:  cfg.MaxRequestSize,
		RateLimit:       cfg.RateLimit,
		RateLimiter:     rateLimiter,
		Analysis:        opts.Analysis,
		MCP:             opts.MCP,
		CertReloadDelay: opts.CertReloadDelay,
		om:              opts.Observability,
		out:             out,
		Logger:          opts.Logger,
	}
}
