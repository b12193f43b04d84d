package analysis

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"atsgenie/internal/errors"
	"atsgenie/internal/types"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// NormalizeText returns text ready for keyword extraction.
// HTML is converted to markdown so tags and attributes do not become keywords.
func NormalizeText(text, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", types.InputFormatText:
		return text, nil
	case types.InputFormatHTML:
		md, err := htmltomarkdown.ConvertString(text)
		if err != nil {
			return "", errors.NewValidationError(errors.ErrCodeConversion, "Failed to convert HTML job description", err)
		}
		return md, nil
	default:
		return "", errors.NewValidationError(errors.ErrCodeUnsupported,
			fmt.Sprintf("Unsupported input format: %s (use %s or %s)", format, types.InputFormatText, types.InputFormatHTML), nil)
	}
}

// FormatForPath picks the input format from a file extension
func FormatForPath(path string, htmlExtensions []string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && slices.Contains(htmlExtensions, ext) {
		return types.InputFormatHTML
	}
	return types.InputFormatText
}
