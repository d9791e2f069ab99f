package analyzer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/seo-optimizer/auditor/fetcher"
	"github.com/seo-optimizer/auditor/insight"
	"golang.org/x/sync/errgroup"
)

// DefaultInsightSampleChars bounds the body text handed to the insight provider.
const DefaultInsightSampleChars = 1000

// PageFetcher retrieves the HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Result, error)
}

// ParseError is returned when the fetched markup cannot be turned into a document.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse HTML: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options configures an Auditor. Only Fetcher is needed for network audits.
type Options struct {
	Fetcher            PageFetcher
	Insight            insight.Provider
	Logger             *slog.Logger
	InsightSampleChars int
}

// Auditor runs SEO audits. It holds no per-audit state and is safe for
// concurrent use.
type Auditor struct {
	fetcher     PageFetcher
	insight     insight.Provider
	logger      *slog.Logger
	sampleChars int
}

// New creates an Auditor. A nil Fetcher gets the default fetcher and a nil
// Insight provider disables the insight step.
func New(opts Options) *Auditor {
	a := &Auditor{
		fetcher:     opts.Fetcher,
		insight:     opts.Insight,
		logger:      opts.Logger,
		sampleChars: opts.InsightSampleChars,
	}
	if a.fetcher == nil {
		a.fetcher = fetcher.New(fetcher.Options{})
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.sampleChars <= 0 {
		a.sampleChars = DefaultInsightSampleChars
	}
	return a
}

// Audit fetches url and analyzes the page. Fetch failures are returned as
// *fetcher.FetchError and markup failures as *ParseError; no partial report
// is returned with an error.
func (a *Auditor) Audit(ctx context.Context, url string) (*AuditReport, error) {
	a.logger.DebugContext(ctx, "fetching page", "url", url)

	page, err := a.fetcher.Fetch(ctx, url)
	if err != nil {
		a.logger.ErrorContext(ctx, "fetch failed", "url", url, "error", err)
		return nil, err
	}

	a.logger.DebugContext(ctx, "page fetched",
		"url", url,
		"status", page.StatusCode,
		"bytes", len(page.HTML),
		"loadTimeMs", page.LoadTimeMs,
	)

	return a.AnalyzeHTML(ctx, url, page.HTML, page.LoadTimeMs)
}

// AnalyzeHTML runs the analysis pipeline over already fetched markup.
func (a *Auditor) AnalyzeHTML(ctx context.Context, url, html string, loadTimeMs int64) (*AuditReport, error) {
	doc, err := parseDocument(strings.NewReader(html))
	if err != nil {
		a.logger.ErrorContext(ctx, "parse failed", "url", url, "error", err)
		return nil, err
	}

	report := evaluate(doc, url, html, loadTimeMs)
	a.logger.DebugContext(ctx, "deterministic analysis complete", "url", url)

	report.AIInsights = map[string]any{}
	if a.insight != nil {
		report.AIInsights = a.requestInsights(ctx, insight.Request{
			URL:             url,
			BodySample:      textSample(report.bodyText, a.sampleChars),
			Title:           report.TechnicalSEO.MetaTags.Title,
			MetaDescription: report.TechnicalSEO.MetaTags.Description,
		})
	}

	a.logger.InfoContext(ctx, "audit complete",
		"url", url,
		slog.Group("results",
			slog.Int("overall", report.Scores.Overall),
			slog.Int("technical", report.Scores.Technical),
			slog.Int("content", report.Scores.Content),
			slog.Int("mobile", report.Scores.Mobile),
			slog.Int("speed", report.Scores.Speed),
			slog.Int("accessibility", report.Scores.Accessibility),
			slog.Int("wordCount", report.ContentAnalysis.WordCount),
			slog.Int("recommendations", len(report.Recommendations)),
		),
	)

	return &report.AuditReport, nil
}

func parseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return doc, nil
}

// evaluation carries the report together with the visible text it was built from.
type evaluation struct {
	AuditReport
	bodyText string
}

// evaluate is the deterministic part of an audit. The analyzers only read the
// shared document, so they run concurrently.
func evaluate(doc *goquery.Document, url, html string, loadTimeMs int64) evaluation {
	var (
		tech     TechnicalMetrics
		mobile   MobileMetrics
		perf     PerformanceMetrics
		a11y     AccessibilityMetrics
		content  ContentMetrics
		keywords []KeywordCandidate
		text     string
	)

	var g errgroup.Group
	g.Go(func() error {
		tech = analyzeTechnical(doc)
		return nil
	})
	g.Go(func() error {
		mobile = analyzeMobile(doc)
		return nil
	})
	g.Go(func() error {
		perf = analyzePerformance(html, loadTimeMs, doc)
		return nil
	})
	g.Go(func() error {
		a11y = analyzeAccessibility(doc)
		return nil
	})
	g.Go(func() error {
		text = visibleText(doc)
		content = analyzeContent(text)
		keywords = extractKeywords(text)
		return nil
	})
	// The analyzers are total functions and never report an error.
	_ = g.Wait()

	return evaluation{
		AuditReport: AuditReport{
			URL:    url,
			Scores: calculateScores(tech, content, mobile, perf, a11y),
			TechnicalSEO: TechnicalSEO{
				TechnicalMetrics: tech,
				Mobile:           mobile,
				Performance:      perf,
				Accessibility:    a11y,
			},
			ContentAnalysis: content,
			Keywords:        keywords,
			Recommendations: generateRecommendations(tech, content, mobile, perf),
		},
		bodyText: text,
	}
}

// requestInsights calls the insight provider. Any failure, including a panic,
// yields an empty object and never fails the audit.
func (a *Auditor) requestInsights(ctx context.Context, req insight.Request) (data map[string]any) {
	data = map[string]any{}

	defer func() {
		if r := recover(); r != nil {
			a.logger.WarnContext(ctx, "insight provider panicked", "url", req.URL, "panic", r)
			data = map[string]any{}
		}
	}()

	a.logger.DebugContext(ctx, "requesting insights", "url", req.URL, "sampleChars", len([]rune(req.BodySample)))

	res, err := a.insight.AnalyzeSEO(ctx, req)
	if err != nil {
		a.logger.WarnContext(ctx, "insight unavailable", "url", req.URL, "error", err)
		return data
	}
	if !res.Success {
		a.logger.WarnContext(ctx, "insight provider reported failure", "url", req.URL)
		return data
	}

	for k, v := range res.Data {
		data[k] = v
	}
	return data
}

// textSample collapses whitespace and keeps at most max runes.
func textSample(text string, max int) string {
	sample := strings.Join(strings.Fields(text), " ")
	runes := []rune(sample)
	if len(runes) > max {
		return string(runes[:max])
	}
	return sample
}
