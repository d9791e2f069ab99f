package analyzer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func analyzeMobile(doc *goquery.Document) MobileMetrics {
	viewport := metaTag(doc, "viewport")
	if viewport.Length() == 0 {
		return MobileMetrics{}
	}

	content, _ := viewport.Attr("content")
	return MobileMetrics{
		Responsive: true,
		Viewport:   strings.Contains(content, "width=device-width"),
	}
}

func analyzeAccessibility(doc *goquery.Document) AccessibilityMetrics {
	a11y := AccessibilityMetrics{
		ImagesWithoutAlt:    doc.Find("img:not([alt])").Length(),
		AnchorsWithoutHref:  doc.Find("a:not([href])").Length(),
		ButtonsWithoutLabel: doc.Find("button:not([aria-label])").Length(),
	}

	if lang, exists := doc.Find("html").First().Attr("lang"); exists && strings.TrimSpace(lang) != "" {
		a11y.HasLang = true
		a11y.Lang = strings.TrimSpace(lang)
	}

	return a11y
}

func analyzePerformance(html string, loadTimeMs int64, doc *goquery.Document) PerformanceMetrics {
	perf := PerformanceMetrics{
		LoadTimeMs:       loadTimeMs,
		PageSizeBytes:    len(html),
		ResourceTagCount: doc.Find("script[src], link[rel='stylesheet'], img").Length(),
		LoadTimeSeverity: "good",
		PageSizeSeverity: "good",
	}

	pageSizeKB := float64(perf.PageSizeBytes) / 1024.0
	switch {
	case pageSizeKB > 5120: // > 5MB
		perf.PageSizeSeverity = "critical"
	case pageSizeKB > 2048: // > 2MB
		perf.PageSizeSeverity = "major"
	case pageSizeKB > 1024: // > 1MB
		perf.PageSizeSeverity = "moderate"
	case pageSizeKB > 500:
		perf.PageSizeSeverity = "minor"
	}

	switch {
	case loadTimeMs > 3000:
		perf.LoadTimeSeverity = "critical"
	case loadTimeMs > 2000:
		perf.LoadTimeSeverity = "major"
	case loadTimeMs > 1500:
		perf.LoadTimeSeverity = "moderate"
	case loadTimeMs > 1000:
		perf.LoadTimeSeverity = "minor"
	}

	return perf
}
