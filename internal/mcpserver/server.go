// Package mcpserver exposes the match operations as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"net/http"

	"atsgenie/internal/analysis"
	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	sourceMCP = "mcp"

	ToolMatch      = "ats_match"
	ToolBatchMatch = "ats_batch_match"
)

// Server wraps an MCP server whose tools are backed by the analysis service
type Server struct {
	mcp      *mcp.Server
	analysis *analysis.Service
	logger   *errors.Logger
}

// NewServer creates the MCP server and registers the match tools
func NewServer(version string, svc *analysis.Service, logger *errors.Logger) *Server {
	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "atsgenie",
			Version: version,
		}, nil),
		analysis: svc,
		logger:   logger,
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolMatch,
		Description: "Score how well a resume covers the keywords of a job description. Returns the match percentage, a rating, matched and missing keywords, and improvement tips.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.match)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        ToolBatchMatch,
		Description: "Rank several job descriptions by how well one resume covers their keywords. Returns entries ordered by score, highest first.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, s.batchMatch)
}

func (s *Server) match(ctx context.Context, _ *mcp.CallToolRequest, input types.MatchInput) (*mcp.CallToolResult, *types.MatchReport, error) {
	report, err := s.analysis.Analyze(ctx, sourceMCP, input)
	if err != nil {
		s.logger.Debug("MCP match rejected", "tool", ToolMatch, "error", err.Error())
		return nil, nil, err
	}
	return nil, report, nil
}

func (s *Server) batchMatch(ctx context.Context, _ *mcp.CallToolRequest, input types.BatchInput) (*mcp.CallToolResult, *types.BatchReport, error) {
	report, err := s.analysis.AnalyzeBatch(ctx, sourceMCP, input)
	if err != nil {
		s.logger.Debug("MCP batch match rejected", "tool", ToolBatchMatch, "error", err.Error())
		return nil, nil, err
	}
	return nil, report, nil
}

// RunStdio serves the tools over stdin/stdout until ctx is cancelled or the client disconnects
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("Starting MCP server on stdio")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return errors.NewNetworkError("MCP_TRANSPORT_FAILED", "MCP stdio session ended with an error", err)
	}
	return nil
}

// HTTPHandler returns a streamable HTTP handler for mounting under /mcp
func (s *Server) HTTPHandler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)
}
