package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestAppErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without cause",
			err:      NewValidationError(ErrCodeEmptyInput, EmptyInputMessage, nil),
			expected: "EMPTY_INPUT: Please paste both resume and job description to analyze.",
		},
		{
			name:     "with cause",
			err:      NewIOError(ErrCodeFileNotFound, "cannot open resume", fmt.Errorf("no such file")),
			expected: "FILE_NOT_FOUND: cannot open resume (caused by: no such file)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAsAppErrorWrapped(t *testing.T) {
	base := NewValidationError(ErrCodeTooManyJobs, "too many jobs", nil).WithContext("limit", 50)
	wrapped := fmt.Errorf("batch failed: %w", base)

	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("Expected wrapped AppError to be found")
	}
	if appErr.Context["limit"] != 50 {
		t.Errorf("Expected context limit=50, got %v", appErr.Context["limit"])
	}
	if !IsType(wrapped, ErrorTypeValidation) {
		t.Error("Expected validation type")
	}
	if !HasCode(wrapped, ErrCodeTooManyJobs) {
		t.Error("Expected TOO_MANY_JOBS code")
	}
	if IsType(fmt.Errorf("plain"), ErrorTypeValidation) {
		t.Error("Plain error should not match any type")
	}
}

func TestLoggerLogError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	err := NewAIError(ErrCodeAIServiceFailed, "tips unavailable", nil).WithContext("model", "gemini")
	logger.LogError(fmt.Errorf("wrap: %w", err), "AI tips failed", "request_id", "abc")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("Expected JSON log line, got %q: %v", buf.String(), err)
	}
	if record["error_code"] != ErrCodeAIServiceFailed {
		t.Errorf("Expected error_code %s, got %v", ErrCodeAIServiceFailed, record["error_code"])
	}
	if record["model"] != "gemini" || record["request_id"] != "abc" {
		t.Errorf("Expected context and args in record, got %v", record)
	}
}

func TestLoggerWith(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelInfo).With("component", "watcher")
	logger.Debug("hidden")
	logger.Info("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Debug record should be filtered at info level")
	}
	if !strings.Contains(out, `"component":"watcher"`) {
		t.Errorf("Expected component attribute, got %s", out)
	}
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := New(level); err != nil {
			t.Errorf("New(%q) returned error: %v", level, err)
		}
	}
	if _, err := New("verbose"); err == nil {
		t.Error("Expected error for invalid level")
	}
}
