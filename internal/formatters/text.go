package formatters

import (
	"fmt"
	"strings"
)

// MatchTextFormatter renders a match report for terminals
type MatchTextFormatter struct{}

func (f *MatchTextFormatter) Format(data any) ([]byte, error) {
	report, err := asMatchReport(data)
	if err != nil {
		return nil, err
	}

	var out strings.Builder

	out.WriteString("=== MATCH SCORE ===\n")
	fmt.Fprintf(&out, "Score: %.2f%%\n", report.Score)
	fmt.Fprintf(&out, "Rating: %s\n", report.Rating)
	out.WriteString(report.Banner)
	out.WriteString("\n\n")

	out.WriteString("=== MATCHED KEYWORDS ===\n")
	writeKeywordLine(&out, report.Matched, report.MatchedMessage)
	out.WriteString("\n")

	out.WriteString("=== MISSING KEYWORDS ===\n")
	writeKeywordLine(&out, report.Missing, report.MissingMessage)
	out.WriteString("\n")

	out.WriteString("=== TIPS ===\n")
	for _, tip := range report.Tips {
		fmt.Fprintf(&out, "- %s\n", tip)
	}

	if d := report.Details; d != nil {
		out.WriteString("\n=== DETAILS ===\n")
		fmt.Fprintf(&out, "Resume keywords (%d): %s\n", d.ResumeKeywordCount, strings.Join(d.ResumeKeywords, ", "))
		fmt.Fprintf(&out, "Job keywords (%d): %s\n", d.JobKeywordCount, strings.Join(d.JobKeywords, ", "))
	}

	return []byte(out.String()), nil
}

func (f *MatchTextFormatter) SupportedType() string {
	return typeMatch
}

func writeKeywordLine(out *strings.Builder, words []string, emptyMessage string) {
	if len(words) == 0 {
		out.WriteString(emptyMessage)
	} else {
		out.WriteString(strings.Join(words, ", "))
	}
	out.WriteString("\n")
}

// BatchTextFormatter renders a batch ranking for terminals
type BatchTextFormatter struct{}

func (f *BatchTextFormatter) Format(data any) ([]byte, error) {
	report, err := asBatchReport(data)
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	out.WriteString("=== JOB RANKING ===\n")
	fmt.Fprintf(&out, "Resume keywords: %d\n\n", report.ResumeKeywordCount)

	for _, e := range report.Entries {
		fmt.Fprintf(&out, "%d. %s  %.2f%% (%s)\n", e.Rank, e.Label, e.Score, e.Rating)
		fmt.Fprintf(&out, "   matched %d, missing %d\n", e.MatchedCount, e.MissingCount)
		if len(e.Missing) > 0 {
			fmt.Fprintf(&out, "   missing: %s\n", strings.Join(e.Missing, ", "))
		}
	}

	return []byte(out.String()), nil
}

func (f *BatchTextFormatter) SupportedType() string {
	return typeBatch
}
