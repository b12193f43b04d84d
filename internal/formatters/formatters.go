package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"atsgenie/internal/types"
)

// Output formats
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatXLSX     = "xlsx"
)

const (
	typeMatch = "MatchReport"
	typeBatch = "BatchReport"
	typeAny   = "any"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) ([]byte, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter(FormatJSON, typeAny, &JSONFormatter{})
	registry.RegisterFormatter(FormatText, typeMatch, &MatchTextFormatter{})
	registry.RegisterFormatter(FormatText, typeBatch, &BatchTextFormatter{})
	registry.RegisterFormatter(FormatMarkdown, typeMatch, &MatchMarkdownFormatter{})
	registry.RegisterFormatter(FormatMarkdown, typeBatch, &BatchMarkdownFormatter{})
	registry.RegisterFormatter(FormatXLSX, typeMatch, &MatchXLSXFormatter{})
	registry.RegisterFormatter(FormatXLSX, typeBatch, &BatchXLSXFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) ([]byte, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[typeAny]; exists {
			return formatter.Format(data)
		}
	}

	return nil, fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

// IsBinary reports whether format produces bytes unsuitable for a terminal
func IsBinary(format string) bool {
	return format == FormatXLSX
}

func getDataType(data any) string {
	switch data.(type) {
	case *types.MatchReport, types.MatchReport:
		return typeMatch
	case *types.BatchReport, types.BatchReport:
		return typeBatch
	default:
		return typeAny
	}
}

func asMatchReport(data any) (*types.MatchReport, error) {
	switch r := data.(type) {
	case *types.MatchReport:
		if r == nil {
			return nil, fmt.Errorf("nil MatchReport")
		}
		return r, nil
	case types.MatchReport:
		return &r, nil
	default:
		return nil, fmt.Errorf("expected MatchReport, got %T", data)
	}
}

func asBatchReport(data any) (*types.BatchReport, error) {
	switch r := data.(type) {
	case *types.BatchReport:
		if r == nil {
			return nil, fmt.Errorf("nil BatchReport")
		}
		return r, nil
	case types.BatchReport:
		return &r, nil
	default:
		return nil, fmt.Errorf("expected BatchReport, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) ([]byte, error) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return typeAny
}
