package mcpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"atsgenie/internal/analysis"
	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	logger := errors.NewLoggerTo(io.Discard, 0)
	svc := analysis.NewService(config.MatchConfig{MaxBatchJobs: 5}, nil, nil, logger)
	return NewServer("test", svc, logger)
}

func TestMatchTool(t *testing.T) {
	s := newTestServer()

	tests := []struct {
		name     string
		input    types.MatchInput
		wantErr  string
		score    float64
		missing  []string
		hasNotes bool
	}{
		{
			name:    "partial match",
			input:   types.MatchInput{Resume: "Python developer with Django experience", JobDescription: "Looking for Python Django developer with AWS"},
			score:   60,
			missing: []string{"aws", "looking"},
		},
		{
			name:    "html job description",
			input:   types.MatchInput{Resume: "golang", JobDescription: "<p>Golang <b>kubernetes</b></p>", InputFormat: "html"},
			score:   50,
			missing: []string{"kubernetes"},
		},
		{
			name:    "blank resume",
			input:   types.MatchInput{Resume: " ", JobDescription: "golang"},
			wantErr: errors.EmptyInputMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, report, err := s.match(context.Background(), nil, tt.input)
			assert.Nil(t, res)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, report)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.score, report.Score)
			assert.Equal(t, tt.missing, report.Missing)
			assert.Equal(t, types.TipSourceStatic, report.TipSource)
		})
	}
}

func TestBatchMatchTool(t *testing.T) {
	s := newTestServer()

	_, report, err := s.batchMatch(context.Background(), nil, types.BatchInput{
		Resume: "golang postgres docker",
		Jobs: []types.BatchJob{
			{Label: "frontend", Description: "react typescript"},
			{Label: "backend", Description: "golang postgres"},
			{Description: "docker kubernetes"},
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Entries, 3)
	assert.Equal(t, "backend", report.Entries[0].Label)
	assert.Equal(t, "job-3", report.Entries[1].Label)
	assert.Equal(t, "frontend", report.Entries[2].Label)

	_, _, err = s.batchMatch(context.Background(), nil, types.BatchInput{Resume: "golang"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyInput))
}

func TestToolsOverInMemoryTransport(t *testing.T) {
	ctx := context.Background()
	s := newTestServer()

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.mcp.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{ToolBatchMatch, ToolMatch}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name: ToolMatch,
		Arguments: map[string]any{
			"resume":         "golang docker",
			"jobDescription": "golang docker kubernetes postgres",
		},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	structured, ok := result.StructuredContent.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 50.0, structured["score"])
	assert.Equal(t, "average", structured["rating"])

	result, err = session.CallTool(ctx, &mcp.CallToolParams{
		Name:      ToolMatch,
		Arguments: map[string]any{"resume": "", "jobDescription": ""},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHTTPHandlerMounted(t *testing.T) {
	s := newTestServer()
	srv := httptest.NewServer(s.HTTPHandler())
	defer srv.Close()

	body := `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-06-18","capabilities":{},"clientInfo":{"name":"curl","version":"0"}}}`
	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Mcp-Session-Id"))
}
