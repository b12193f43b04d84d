package formatters

import (
	"fmt"
	"strings"

	"atsgenie/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet  = "Summary"
	keywordsSheet = "Keywords"
	tipsSheet     = "Tips"
	rankingSheet  = "Ranking"
)

var ratingColors = map[string]string{
	"excellent": "C6EFCE",
	"good":      "DDEBF7",
	"average":   "FFEB9C",
	"low":       "FFC7CE",
}

type workbookStyles struct {
	header int
	label  int
	rating map[string]int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	styles := &workbookStyles{header: header, label: label, rating: make(map[string]int, len(ratingColors))}
	for rating, color := range ratingColors {
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			NumFmt:    2,
			Alignment: &excelize.Alignment{Horizontal: "right"},
		})
		if err != nil {
			return nil, err
		}
		styles.rating[rating] = id
	}
	return styles, nil
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func writeHeader(f *excelize.File, sheet string, style int, titles ...string) error {
	for i, title := range titles {
		if err := f.SetCellValue(sheet, cell(i+1, 1), title); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, cell(1, 1), cell(len(titles), 1), style)
}

func workbookBytes(f *excelize.File) ([]byte, error) {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// MatchXLSXFormatter renders a match report as a workbook
type MatchXLSXFormatter struct{}

func (x *MatchXLSXFormatter) Format(data any) ([]byte, error) {
	report, err := asMatchReport(data)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if err := writeMatchSummary(f, styles, report); err != nil {
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := writeMatchKeywords(f, styles, report); err != nil {
		return nil, fmt.Errorf("failed to create keywords sheet: %w", err)
	}
	if err := writeTips(f, styles, report.Tips); err != nil {
		return nil, fmt.Errorf("failed to create tips sheet: %w", err)
	}

	return workbookBytes(f)
}

func (x *MatchXLSXFormatter) SupportedType() string {
	return typeMatch
}

func writeMatchSummary(f *excelize.File, styles *workbookStyles, report *types.MatchReport) error {
	rows := [][2]any{
		{"Score", report.Score},
		{"Rating", report.Rating},
		{"Banner", report.Banner},
		{"Matched", len(report.Matched)},
		{"Missing", len(report.Missing)},
		{"Tip source", report.TipSource},
		{"Analysis ID", report.AnalysisID},
		{"Created", report.CreatedAt},
	}
	if report.Details != nil {
		rows = append(rows,
			[2]any{"Resume keywords", report.Details.ResumeKeywordCount},
			[2]any{"Job keywords", report.Details.JobKeywordCount},
		)
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 18); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 60); err != nil {
		return err
	}
	for i, row := range rows {
		r := i + 1
		if err := f.SetCellValue(summarySheet, cell(1, r), row[0]); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, cell(2, r), row[1]); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, cell(1, r), cell(1, r), styles.label); err != nil {
			return err
		}
	}
	if style, ok := styles.rating[report.Rating]; ok {
		return f.SetCellStyle(summarySheet, "B1", "B1", style)
	}
	return nil
}

func writeMatchKeywords(f *excelize.File, styles *workbookStyles, report *types.MatchReport) error {
	if _, err := f.NewSheet(keywordsSheet); err != nil {
		return err
	}
	if err := writeHeader(f, keywordsSheet, styles.header, "Keyword", "Status"); err != nil {
		return err
	}
	if err := f.SetColWidth(keywordsSheet, "A", "B", 24); err != nil {
		return err
	}

	row := 2
	for _, group := range []struct {
		status string
		words  []string
	}{
		{"matched", report.Matched},
		{"missing", report.Missing},
	} {
		for _, word := range group.words {
			if err := f.SetSheetRow(keywordsSheet, cell(1, row), &[]any{word, group.status}); err != nil {
				return err
			}
			row++
		}
	}
	return nil
}

func writeTips(f *excelize.File, styles *workbookStyles, tips []string) error {
	if _, err := f.NewSheet(tipsSheet); err != nil {
		return err
	}
	if err := writeHeader(f, tipsSheet, styles.header, "Tip"); err != nil {
		return err
	}
	if err := f.SetColWidth(tipsSheet, "A", "A", 90); err != nil {
		return err
	}
	for i, tip := range tips {
		if err := f.SetCellValue(tipsSheet, cell(1, i+2), tip); err != nil {
			return err
		}
	}
	return nil
}

// BatchXLSXFormatter renders a batch ranking as a workbook
type BatchXLSXFormatter struct{}

func (x *BatchXLSXFormatter) Format(data any) ([]byte, error) {
	report, err := asBatchReport(data)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}
	if err := f.SetSheetName("Sheet1", rankingSheet); err != nil {
		return nil, err
	}

	if err := writeHeader(f, rankingSheet, styles.header,
		"Rank", "Job", "Score", "Rating", "Matched", "Missing", "Missing keywords"); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(rankingSheet, "B", "B", 30); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(rankingSheet, "G", "G", 60); err != nil {
		return nil, err
	}

	for i, e := range report.Entries {
		row := i + 2
		values := []any{e.Rank, e.Label, e.Score, e.Rating, e.MatchedCount, e.MissingCount, strings.Join(e.Missing, ", ")}
		if err := f.SetSheetRow(rankingSheet, cell(1, row), &values); err != nil {
			return nil, err
		}
		if style, ok := styles.rating[e.Rating]; ok {
			if err := f.SetCellStyle(rankingSheet, cell(3, row), cell(3, row), style); err != nil {
				return nil, err
			}
		}
	}

	if len(report.Entries) > 0 {
		if err := f.AutoFilter(rankingSheet, fmt.Sprintf("A1:G%d", len(report.Entries)+1), nil); err != nil {
			return nil, err
		}
	}

	return workbookBytes(f)
}

func (x *BatchXLSXFormatter) SupportedType() string {
	return typeBatch
}
