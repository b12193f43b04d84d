package formatters

import (
	"fmt"
	"strings"
)

// MatchMarkdownFormatter renders a match report as markdown
type MatchMarkdownFormatter struct{}

func (f *MatchMarkdownFormatter) Format(data any) ([]byte, error) {
	report, err := asMatchReport(data)
	if err != nil {
		return nil, err
	}

	var out strings.Builder

	out.WriteString("# Resume Match Report\n\n")
	fmt.Fprintf(&out, "**Score:** %.2f%% (%s)\n\n", report.Score, report.Rating)
	fmt.Fprintf(&out, "> %s\n\n", report.Banner)

	out.WriteString("## Matched Keywords\n\n")
	writeMarkdownKeywords(&out, report.Matched, report.MatchedMessage)

	out.WriteString("## Missing Keywords\n\n")
	writeMarkdownKeywords(&out, report.Missing, report.MissingMessage)

	out.WriteString("## Tips\n\n")
	for _, tip := range report.Tips {
		fmt.Fprintf(&out, "- %s\n", tip)
	}

	if d := report.Details; d != nil {
		out.WriteString("\n## Details\n\n")
		out.WriteString("| Document | Keywords |\n")
		out.WriteString("|----------|----------|\n")
		fmt.Fprintf(&out, "| Resume | %d |\n", d.ResumeKeywordCount)
		fmt.Fprintf(&out, "| Job description | %d |\n", d.JobKeywordCount)
	}

	fmt.Fprintf(&out, "\n---\n*Analysis %s, %s*\n", report.AnalysisID, report.CreatedAt)

	return []byte(out.String()), nil
}

func (f *MatchMarkdownFormatter) SupportedType() string {
	return typeMatch
}

func writeMarkdownKeywords(out *strings.Builder, words []string, emptyMessage string) {
	if len(words) == 0 {
		fmt.Fprintf(out, "_%s_\n\n", emptyMessage)
		return
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = "`" + w + "`"
	}
	out.WriteString(strings.Join(quoted, ", "))
	out.WriteString("\n\n")
}

// BatchMarkdownFormatter renders a batch ranking as a markdown table
type BatchMarkdownFormatter struct{}

func (f *BatchMarkdownFormatter) Format(data any) ([]byte, error) {
	report, err := asBatchReport(data)
	if err != nil {
		return nil, err
	}

	var out strings.Builder
	out.WriteString("# Job Ranking\n\n")
	fmt.Fprintf(&out, "Resume keywords: %d\n\n", report.ResumeKeywordCount)
	out.WriteString("| Rank | Job | Score | Rating | Matched | Missing |\n")
	out.WriteString("|------|-----|-------|--------|---------|---------|\n")
	for _, e := range report.Entries {
		fmt.Fprintf(&out, "| %d | %s | %.2f%% | %s | %d | %d |\n",
			e.Rank, strings.ReplaceAll(e.Label, "|", `\|`), e.Score, e.Rating, e.MatchedCount, e.MissingCount)
	}

	return []byte(out.String()), nil
}

func (f *BatchMarkdownFormatter) SupportedType() string {
	return typeBatch
}
