package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"atsgenie/internal/config"
	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const testConfig = `app:
  logLevel: error
observability:
  enabled: false
watch:
  debounceDelay: 50ms
`

// syncBuffer lets the watch command write while the test reads
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newTestCmd(t *testing.T, stdout *syncBuffer, args ...string) *cobra.Command {
	t.Helper()
	cfgPath := writeFile(t, t.TempDir(), "config.yaml", testConfig)

	cmd := newRootCmd()
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	cmd.SetOut(stdout)
	cmd.SetErr(&syncBuffer{})
	return cmd
}

func runCLI(t *testing.T, ctx context.Context, stdout *syncBuffer, args ...string) error {
	t.Helper()
	return newTestCmd(t, stdout, args...).ExecuteContext(ctx)
}

func TestVersionCommand(t *testing.T) {
	Version = "1.2.3"
	t.Cleanup(func() { Version = "dev" })

	var out syncBuffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"version"})
	cmd.SetOut(&out)
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "atsgenie version 1.2.3")
}

func TestMatchCommand(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "Python developer with Django experience")
	job := writeFile(t, dir, "job.txt", "Looking for Python Django developer with AWS")
	htmlJob := writeFile(t, dir, "job.html", "<ul><li>Python</li><li>Kubernetes</li></ul>")

	t.Run("text", func(t *testing.T) {
		var out syncBuffer
		require.NoError(t, runCLI(t, context.Background(), &out, "match", resume, job))
		assert.Contains(t, out.String(), "=== MATCH SCORE ===")
		assert.Contains(t, out.String(), "Score: 60.00%")
		assert.Contains(t, out.String(), "aws, looking")
	})

	t.Run("json with details", func(t *testing.T) {
		var out syncBuffer
		require.NoError(t, runCLI(t, context.Background(), &out, "match", "--format", "json", "--details", resume, job))

		var report types.MatchReport
		require.NoError(t, json.Unmarshal([]byte(out.String()), &report))
		assert.Equal(t, 60.0, report.Score)
		assert.Equal(t, "good", report.Rating)
		require.NotNil(t, report.Details)
		assert.Equal(t, 4, report.Details.ResumeKeywordCount)
	})

	t.Run("html job by extension", func(t *testing.T) {
		var out syncBuffer
		require.NoError(t, runCLI(t, context.Background(), &out, "match", "--format", "json", resume, htmlJob))

		var report types.MatchReport
		require.NoError(t, json.Unmarshal([]byte(out.String()), &report))
		assert.Equal(t, 50.0, report.Score)
		assert.Equal(t, []string{"kubernetes"}, report.Missing)
	})

	t.Run("xlsx file", func(t *testing.T) {
		var out syncBuffer
		dest := filepath.Join(t.TempDir(), "report.xlsx")
		require.NoError(t, runCLI(t, context.Background(), &out, "match", "--format", "xlsx", "-o", dest, resume, job))
		assert.Empty(t, out.String())

		f, err := excelize.OpenFile(dest)
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Summary")
	})
}

func TestMatchCommandErrors(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "golang")
	empty := writeFile(t, dir, "empty.txt", "   ")

	tests := []struct {
		name string
		args []string
		code string
		msg  string
	}{
		{name: "empty job", args: []string{"match", resume, empty}, code: errors.ErrCodeEmptyInput},
		{name: "xlsx to stdout", args: []string{"match", "--format", "xlsx", resume, resume}, code: errors.ErrCodeInvalidFormat},
		{name: "unknown format", args: []string{"match", "--format", "yaml", resume, resume}, msg: "unsupported output format"},
		{name: "missing file", args: []string{"match", resume, filepath.Join(dir, "nope.txt")}, msg: "nope.txt"},
		{name: "wrong arg count", args: []string{"match", resume}, msg: "accepts 2 arg(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out syncBuffer
			err := runCLI(t, context.Background(), &out, tt.args...)
			require.Error(t, err)
			if tt.code != "" {
				assert.True(t, errors.HasCode(err, tt.code), err.Error())
			}
			if tt.msg != "" {
				assert.Contains(t, err.Error(), tt.msg)
			}
		})
	}
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "golang postgres docker")
	frontend := writeFile(t, dir, "frontend.txt", "react typescript")
	backend := writeFile(t, dir, "backend.html", "<p>Golang and <em>Postgres</em></p>")
	platform := writeFile(t, dir, "platform.md", "docker kubernetes")

	var out syncBuffer
	require.NoError(t, runCLI(t, context.Background(), &out, "batch", "--format", "json", resume, frontend, backend, platform))

	var report types.BatchReport
	require.NoError(t, json.Unmarshal([]byte(out.String()), &report))
	require.Len(t, report.Entries, 3)

	var labels []string
	for _, e := range report.Entries {
		labels = append(labels, e.Label)
	}
	assert.Equal(t, []string{"backend", "platform", "frontend"}, labels)
	assert.Equal(t, 100.0, report.Entries[0].Score)
	assert.Equal(t, 50.0, report.Entries[1].Score)
	assert.Equal(t, 1, report.Entries[0].Rank)
}

func TestWatchCommand(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "golang")
	job := writeFile(t, dir, "job.txt", "golang kubernetes")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out syncBuffer
	done := make(chan error, 1)
	cmd := newTestCmd(t, &out, "watch", resume, job)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Score: 50.00%"))
	}, 5*time.Second, 20*time.Millisecond)

	// give the watcher time to register before editing
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(resume, []byte("golang kubernetes"), 0o600))

	require.Eventually(t, func() bool {
		return bytes.Contains([]byte(out.String()), []byte("Score: 100.00%"))
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestServeOptionsApply(t *testing.T) {
	cmd := newServeCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9999", "--tls-mode", "server", "--mcp=false"}))

	opts := &serveOptions{port: "9999", tlsMode: "server", mcp: false}
	got := opts.apply(cmd, config.ServerConfig{Host: "localhost", Port: "8080", EnableMCP: true})

	assert.Equal(t, "9999", got.Port)
	assert.Equal(t, "localhost", got.Host)
	assert.Equal(t, "server", got.TLS.Mode)
	assert.False(t, got.EnableMCP)
}

func TestLabelForPath(t *testing.T) {
	tests := map[string]string{
		"jobs/backend.txt":   "backend",
		"frontend.html":      "frontend",
		"/tmp/x/data.eng.md": "data.eng",
		"noext":              "noext",
	}
	for in, want := range tests {
		assert.Equal(t, want, labelForPath(in), in)
	}
}
