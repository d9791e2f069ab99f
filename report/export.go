// Package report exports audit reports as JSON, CSV or Excel workbooks.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/xuri/excelize/v2"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	summarySheet         = "Summary"
	recommendationsSheet = "Recommendations"
)

var summaryColumns = []string{
	"url", "overall", "technical", "content", "mobile", "speed", "accessibility",
	"word_count", "readability", "quality", "load_time_ms", "page_size_bytes",
	"recommendations", "top_keyword",
}

var recommendationColumns = []string{"url", "category", "priority", "issue", "solution", "impact"}

// ParseFormat accepts json, csv and xlsx in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json, csv or xlsx)", s)
	}
}

func summaryRow(r *analyzer.AuditReport) []any {
	topKeyword := ""
	if len(r.Keywords) > 0 {
		topKeyword = r.Keywords[0].Keyword
	}
	return []any{
		r.URL,
		r.Scores.Overall,
		r.Scores.Technical,
		r.Scores.Content,
		r.Scores.Mobile,
		r.Scores.Speed,
		r.Scores.Accessibility,
		r.ContentAnalysis.WordCount,
		r.ContentAnalysis.ReadabilityScore,
		string(r.ContentAnalysis.Quality),
		r.TechnicalSEO.Performance.LoadTimeMs,
		r.TechnicalSEO.Performance.PageSizeBytes,
		len(r.Recommendations),
		topKeyword,
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

// WriteJSON writes the reports as an indented JSON array.
func WriteJSON(w io.Writer, reports []*analyzer.AuditReport) error {
	if reports == nil {
		reports = []*analyzer.AuditReport{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return nil
}

// WriteCSV writes one summary row per report.
func WriteCSV(w io.Writer, reports []*analyzer.AuditReport) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(summaryColumns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range reports {
		row := summaryRow(r)
		values := make([]string, len(row))
		for i, v := range row {
			values[i] = formatValue(v)
		}
		if err := writer.Write(values); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteXLSX saves a workbook with a Summary sheet and a Recommendations sheet.
func WriteXLSX(path string, reports []*analyzer.AuditReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := buildWorkbook(f, reports); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func buildWorkbook(f *excelize.File, reports []*analyzer.AuditReport) error {
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(recommendationsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1565C0"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	summary := make([][]any, 0, len(reports))
	var recommendations [][]any
	for _, r := range reports {
		summary = append(summary, summaryRow(r))
		for _, rec := range r.Recommendations {
			recommendations = append(recommendations, []any{
				r.URL, rec.Category, string(rec.Priority), rec.Issue, rec.Solution, rec.Impact,
			})
		}
	}

	if err := writeSheet(f, summarySheet, summaryColumns, summary, headerStyle); err != nil {
		return err
	}
	if err := writeSheet(f, recommendationsSheet, recommendationColumns, recommendations, headerStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return nil
}

func writeSheet(f *excelize.File, sheet string, columns []string, rows [][]any, headerStyle int) error {
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheet, "A1", last+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	for i, col := range columns {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := float64(len(col) + 5)
		if width < 15 {
			width = 15
		}
		if col == "url" || col == "solution" || col == "impact" {
			width = 50
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("failed to size %s columns: %w", sheet, err)
		}
	}

	return nil
}
