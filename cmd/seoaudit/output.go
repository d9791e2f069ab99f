package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/seo-optimizer/auditor/analyzer"
	"github.com/seo-optimizer/auditor/fetcher"
	"github.com/seo-optimizer/auditor/report"
)

const formatText = "text"

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// failure is an audit that produced no report.
type failure struct {
	URL     string
	Kind    string
	Message string
}

func newFailure(url string, err error) failure {
	kind := "Error"
	var fe *fetcher.FetchError
	var pe *analyzer.ParseError
	switch {
	case errors.As(err, &fe):
		kind = string(fe.Kind)
	case errors.As(err, &pe):
		kind = "ParseError"
	}
	return failure{URL: url, Kind: kind, Message: err.Error()}
}

func scoreColor(score int) func(a ...any) string {
	switch {
	case score >= 80:
		return green
	case score >= 50:
		return yellow
	default:
		return red
	}
}

func priorityColor(p analyzer.Priority) func(a ...any) string {
	switch p {
	case analyzer.PriorityCritical:
		return red
	case analyzer.PriorityHigh:
		return yellow
	case analyzer.PriorityMedium:
		return cyan
	default:
		return fmt.Sprint
	}
}

func printReport(w io.Writer, r *analyzer.AuditReport) {
	fmt.Fprintf(w, "%s %s\n\n", bold("SEO audit:"), r.URL)

	scores := []struct {
		name  string
		value int
	}{
		{"Overall", r.Scores.Overall},
		{"Technical", r.Scores.Technical},
		{"Content", r.Scores.Content},
		{"Mobile", r.Scores.Mobile},
		{"Speed", r.Scores.Speed},
		{"Accessibility", r.Scores.Accessibility},
	}
	for _, s := range scores {
		fmt.Fprintf(w, "  %-14s %s\n", s.name, scoreColor(s.value)(fmt.Sprintf("%3d", s.value)))
	}

	meta := r.TechnicalSEO.MetaTags
	perf := r.TechnicalSEO.Performance
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Title          %q (%d chars)\n", meta.Title, meta.TitleLength)
	fmt.Fprintf(w, "  Words          %d, readability %d (%s)\n",
		r.ContentAnalysis.WordCount, r.ContentAnalysis.ReadabilityScore, r.ContentAnalysis.Quality)
	fmt.Fprintf(w, "  Load time      %d ms, %d bytes\n", perf.LoadTimeMs, perf.PageSizeBytes)

	if len(r.Keywords) > 0 {
		n := min(len(r.Keywords), 5)
		words := make([]string, 0, n)
		for _, k := range r.Keywords[:n] {
			words = append(words, fmt.Sprintf("%s (%s%%)", k.Keyword, k.Density))
		}
		fmt.Fprintf(w, "  Keywords       %s\n", strings.Join(words, ", "))
	}

	if len(r.Recommendations) == 0 {
		fmt.Fprintf(w, "\n%s\n", green("No issues found."))
	} else {
		fmt.Fprintf(w, "\n%s\n", bold("Recommendations:"))
		for _, rec := range r.Recommendations {
			label := priorityColor(rec.Priority)(fmt.Sprintf("[%s]", strings.ToUpper(string(rec.Priority))))
			fmt.Fprintf(w, "  %s %s: %s\n", label, rec.Category, rec.Issue)
			fmt.Fprintf(w, "      %s\n", rec.Solution)
		}
	}

	if len(r.AIInsights) > 0 {
		fmt.Fprintf(w, "\n%s\n", bold("AI insights:"))
		if summary, ok := r.AIInsights["summary"].(string); ok {
			fmt.Fprintf(w, "  %s\n", summary)
		} else {
			fmt.Fprintf(w, "  %d fields, use --format json to see them\n", len(r.AIInsights))
		}
	}
}

func printFailures(w io.Writer, failures []failure) {
	if len(failures) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", red(fmt.Sprintf("%d audit(s) failed:", len(failures))))
	for _, f := range failures {
		fmt.Fprintf(w, "  %s [%s] %s\n", f.URL, yellow(f.Kind), f.Message)
	}
}

// writeReports renders reports in format to path, or to stdout when path is
// empty. Workbooks always need a path.
func writeReports(stdout io.Writer, format, path string, reports []*analyzer.AuditReport) error {
	if format == formatText {
		out, closeFn, err := openOutput(stdout, path)
		if err != nil {
			return err
		}
		for i, r := range reports {
			if i > 0 {
				fmt.Fprintln(out)
			}
			printReport(out, r)
		}
		return closeFn()
	}

	f, err := report.ParseFormat(format)
	if err != nil {
		return err
	}
	if f == report.FormatXLSX {
		if path == "" {
			path = "seoaudit.xlsx"
		}
		if err := report.WriteXLSX(path, reports); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Report written to %s\n", path)
		return nil
	}

	out, closeFn, err := openOutput(stdout, path)
	if err != nil {
		return err
	}
	if f == report.FormatCSV {
		err = report.WriteCSV(out, reports)
	} else {
		err = report.WriteJSON(out, reports)
	}
	if cerr := closeFn(); err == nil {
		err = cerr
	}
	return err
}

func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	fh, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return fh, fh.Close, nil
}

func validateFormat(format string) error {
	if format == formatText {
		return nil
	}
	_, err := report.ParseFormat(format)
	return err
}
