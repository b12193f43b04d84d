package common

import (
	"fmt"
	"slices"

	"atsgenie/internal/errors"
	"atsgenie/internal/formatters"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateOutputTarget rejects binary formats bound for stdout
func ValidateOutputTarget(format, outputFile string) error {
	if outputFile == "" && formatters.IsBinary(format) {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Format %s requires an output file (use -o)", format), nil)
	}
	return nil
}
