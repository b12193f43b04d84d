package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newRunner(stdout *bytes.Buffer, maxSize int64) *Runner {
	logger := errors.NewLogger(0)
	fp := NewFileProcessor(logger, maxSize, []string{".html", ".htm"})
	return &Runner{Files: fp, Output: NewOutputHandler(fp, stdout, logger), Logger: logger}
}

func TestValidateAndReadFiles(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume.txt", "golang")
	job := writeFile(t, dir, "job.HTML", "<p>golang</p>")

	fp := NewFileProcessor(nil, 1024, []string{".html"})
	docs, err := fp.ValidateAndReadFiles(resume, job)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, Document{Path: resume, Content: "golang", Format: types.InputFormatText}, docs[0])
	assert.Equal(t, types.InputFormatHTML, docs[1].Format)

	_, err = fp.ValidateAndReadFiles(filepath.Join(dir, "missing.txt"))
	assert.True(t, errors.HasCode(err, "INVALID_INPUT_FILE"))

	big := writeFile(t, dir, "big.txt", string(make([]byte, 2048)))
	_, err = fp.ValidateAndReadFiles(big)
	assert.ErrorContains(t, err, "limit")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "first")
	b := writeFile(t, dir, "b.txt", "second")

	createInput := func(docs []Document) (string, error) {
		return docs[0].Content + "+" + docs[1].Content, nil
	}
	op := func(_ context.Context, in string) (map[string]string, error) {
		return map[string]string{"joined": in}, nil
	}

	t.Run("stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		err := RunCommand(context.Background(), newRunner(&stdout, 0), CommandConfig{OutputFormat: "json"}, []string{a, b}, createInput, op)
		require.NoError(t, err)
		assert.JSONEq(t, `{"joined":"first+second"}`, stdout.String())
	})

	t.Run("file", func(t *testing.T) {
		var stdout bytes.Buffer
		out := filepath.Join(dir, "out", "result.json")
		err := RunCommand(context.Background(), newRunner(&stdout, 0), CommandConfig{OutputFormat: "json", OutputFile: out}, []string{a, b}, createInput, op)
		require.NoError(t, err)
		assert.Empty(t, stdout.String())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		var decoded map[string]string
		require.NoError(t, json.Unmarshal(data, &decoded))
		assert.Equal(t, "first+second", decoded["joined"])
	})

	t.Run("operation error", func(t *testing.T) {
		var stdout bytes.Buffer
		failing := func(context.Context, string) (map[string]string, error) { return nil, fmt.Errorf("boom") }
		err := RunCommand(context.Background(), newRunner(&stdout, 0), CommandConfig{OutputFormat: "json"}, []string{a, b}, createInput, failing)
		assert.EqualError(t, err, "boom")
	})

	t.Run("binary to stdout", func(t *testing.T) {
		var stdout bytes.Buffer
		err := RunCommand(context.Background(), newRunner(&stdout, 0), CommandConfig{OutputFormat: "xlsx"}, []string{a, b}, createInput, op)
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
	})

	t.Run("input error", func(t *testing.T) {
		var stdout bytes.Buffer
		bad := func([]Document) (string, error) { return "", fmt.Errorf("need two files") }
		err := RunCommand(context.Background(), newRunner(&stdout, 0), CommandConfig{OutputFormat: "json"}, []string{a}, bad, op)
		assert.ErrorContains(t, err, "need two files")
	})
}
