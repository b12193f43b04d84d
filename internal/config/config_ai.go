package config

import (
	"fmt"
	"os"
	"strings"
)

// maxPromptFileSize bounds custom prompt templates
const maxPromptFileSize = 64 * 1024

// TipsAvailable reports whether AI tips can be requested at all
func (a AIConfig) TipsAvailable() bool {
	return a.Enabled && a.APIKey != ""
}

// validateAI checks the AI section; an absent key only disables tips
func (c *Config) validateAI() error {
	if !c.AI.Enabled {
		return nil
	}

	switch c.AI.Provider {
	case "gemini":
	default:
		return fmt.Errorf("unsupported provider: %s", c.AI.Provider)
	}

	if c.AI.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("maxRetries cannot be negative")
	}
	if c.AI.MaxTips <= 0 {
		return fmt.Errorf("maxTips must be positive")
	}
	if t := c.AI.CircuitBreaker.FailureThreshold; c.AI.CircuitBreaker.Enabled && (t <= 0 || t > 1) {
		return fmt.Errorf("circuitBreaker.failureThreshold must be in (0, 1], got %v", t)
	}
	if c.AI.PromptFile != "" {
		if _, err := c.AI.LoadPromptTemplate(); err != nil {
			return err
		}
	}

	return nil
}

// LoadPromptTemplate reads the custom prompt template, or returns "" when none is configured.
// The template receives the score, matched keywords, missing keywords, tip count and job description
// as fmt verbs in that order.
func (a AIConfig) LoadPromptTemplate() (string, error) {
	if a.PromptFile == "" {
		return "", nil
	}

	info, err := os.Stat(a.PromptFile)
	if err != nil {
		return "", fmt.Errorf("prompt file %s: %w", a.PromptFile, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("prompt file %s is a directory", a.PromptFile)
	}
	if info.Size() > maxPromptFileSize {
		return "", fmt.Errorf("prompt file %s exceeds %d bytes", a.PromptFile, maxPromptFileSize)
	}

	data, err := os.ReadFile(a.PromptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", a.PromptFile, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", a.PromptFile)
	}
	return content, nil
}
