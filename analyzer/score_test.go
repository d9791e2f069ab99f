package analyzer

import (
	"strings"
	"testing"
)

func perfectTechnical() TechnicalMetrics {
	return TechnicalMetrics{
		MetaTags: MetaTags{
			HasTitle:          true,
			TitleLength:       45,
			HasDescription:    true,
			DescriptionLength: 140,
			HasOpenGraph:      true,
		},
		Headings: Headings{H1Count: 1, H2Count: 2},
		Images:   Images{Total: 5, WithAlt: 5},
	}
}

func TestScoreTechnical(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*TechnicalMetrics)
		want   int
	}{
		{"everything present", func(*TechnicalMetrics) {}, 100},
		{"no open graph", func(m *TechnicalMetrics) { m.MetaTags.HasOpenGraph = false }, 90},
		{"title too short", func(m *TechnicalMetrics) { m.MetaTags.TitleLength = 29 }, 90},
		{"title too long", func(m *TechnicalMetrics) { m.MetaTags.TitleLength = 61 }, 90},
		{"description out of range", func(m *TechnicalMetrics) { m.MetaTags.DescriptionLength = 161 }, 90},
		{"two h1", func(m *TechnicalMetrics) { m.Headings.H1Count = 2 }, 85},
		{"no h1", func(m *TechnicalMetrics) { m.Headings.H1Count = 0 }, 85},
		{"no h2", func(m *TechnicalMetrics) { m.Headings.H2Count = 0 }, 90},
		{"no images", func(m *TechnicalMetrics) { m.Images = Images{} }, 95},
		{"alt ratio exactly 0.8", func(m *TechnicalMetrics) { m.Images = Images{Total: 5, WithAlt: 4, WithoutAlt: 1} }, 95},
		{"empty page", func(m *TechnicalMetrics) { *m = TechnicalMetrics{} }, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := perfectTechnical()
			tt.modify(&m)
			if got := scoreTechnical(m); got != tt.want {
				t.Errorf("scoreTechnical() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreContent(t *testing.T) {
	tests := []struct {
		words, readability, want int
	}{
		{300, 60, 100},
		{299, 59, 75},
		{200, 40, 75},
		{199, 39, 50},
		{0, 0, 50},
	}

	for _, tt := range tests {
		got := scoreContent(ContentMetrics{WordCount: tt.words, ReadabilityScore: tt.readability})
		if got != tt.want {
			t.Errorf("scoreContent(words=%d, readability=%d) = %d, want %d", tt.words, tt.readability, got, tt.want)
		}
	}
}

func TestScoreMobile(t *testing.T) {
	tests := []struct {
		in   MobileMetrics
		want int
	}{
		{MobileMetrics{Responsive: true, Viewport: true}, 100},
		{MobileMetrics{Responsive: true}, 50},
		{MobileMetrics{}, 50},
	}

	for _, tt := range tests {
		if got := scoreMobile(tt.in); got != tt.want {
			t.Errorf("scoreMobile(%+v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestScoreSpeed(t *testing.T) {
	tests := []struct {
		name     string
		loadTime int64
		pageSize int
		want     int
	}{
		{"fast", 800, 200_000, 100},
		{"exactly one second", 1000, 0, 100},
		{"over one second", 1001, 0, 95},
		{"over two seconds", 2001, 0, 85},
		{"over three seconds", 3001, 0, 70},
		{"large page", 0, 1_500_001, 90},
		{"huge page", 0, 3_000_001, 80},
		{"slow and huge", 10_000, 9_000_000, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreSpeed(PerformanceMetrics{LoadTimeMs: tt.loadTime, PageSizeBytes: tt.pageSize})
			if got != tt.want {
				t.Errorf("scoreSpeed() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScoreAccessibility(t *testing.T) {
	tests := []struct {
		name string
		in   AccessibilityMetrics
		want int
	}{
		{"clean", AccessibilityMetrics{HasLang: true}, 100},
		{"missing lang", AccessibilityMetrics{}, 80},
		{"missing alt", AccessibilityMetrics{HasLang: true, ImagesWithoutAlt: 2}, 85},
		{"anchor without href", AccessibilityMetrics{HasLang: true, AnchorsWithoutHref: 1}, 90},
		{"three unlabeled buttons", AccessibilityMetrics{HasLang: true, ButtonsWithoutLabel: 3}, 100},
		{"four unlabeled buttons", AccessibilityMetrics{HasLang: true, ButtonsWithoutLabel: 4}, 90},
		{"everything wrong", AccessibilityMetrics{ImagesWithoutAlt: 1, AnchorsWithoutHref: 1, ButtonsWithoutLabel: 9}, 45},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreAccessibility(tt.in); got != tt.want {
				t.Errorf("scoreAccessibility() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name string
		in   ScoreSet
		want int
	}{
		{"all perfect", ScoreSet{Technical: 100, Content: 100, Mobile: 100, Speed: 100, Accessibility: 100}, 100},
		{"all zero", ScoreSet{}, 0},
		{"half rounds up", ScoreSet{Technical: 5}, 2},
		{"below half rounds down", ScoreSet{Technical: 1}, 0},
		{"weighted", ScoreSet{Technical: 90, Content: 60, Mobile: 100, Speed: 100, Accessibility: 100}, 87},
		{"out of range inputs are clamped", ScoreSet{Technical: 150, Content: -20, Mobile: 100, Speed: 100, Accessibility: 100}, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := overallScore(tt.in); got != tt.want {
				t.Errorf("overallScore(%+v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestGenerateRecommendations(t *testing.T) {
	good := func() (TechnicalMetrics, ContentMetrics, MobileMetrics, PerformanceMetrics) {
		return perfectTechnical(),
			ContentMetrics{WordCount: 500},
			MobileMetrics{Responsive: true, Viewport: true},
			PerformanceMetrics{LoadTimeMs: 500}
	}

	t.Run("healthy page", func(t *testing.T) {
		tech, content, mobile, perf := good()
		if got := generateRecommendations(tech, content, mobile, perf); len(got) != 0 {
			t.Errorf("expected no recommendations, got %+v", got)
		}
	})

	t.Run("every rule fires in order", func(t *testing.T) {
		got := generateRecommendations(
			TechnicalMetrics{},
			ContentMetrics{WordCount: 10},
			MobileMetrics{},
			PerformanceMetrics{LoadTimeMs: 3001},
		)

		want := []struct {
			category string
			priority Priority
			issue    string
		}{
			{"Technical SEO", PriorityCritical, "Missing title tag"},
			{"Technical SEO", PriorityHigh, "Missing meta description"},
			{"Technical SEO", PriorityHigh, "Missing H1"},
			{"Content Quality", PriorityMedium, "Thin content"},
			{"Mobile", PriorityCritical, "not mobile responsive"},
			{"Performance", PriorityHigh, "Slow page load"},
		}
		if len(got) != len(want) {
			t.Fatalf("got %d recommendations, want %d", len(got), len(want))
		}
		for i, w := range want {
			if got[i].Category != w.category || got[i].Priority != w.priority || !strings.Contains(got[i].Issue, w.issue) {
				t.Errorf("recommendation[%d] = %s/%s/%q, want %s/%s/%q", i, got[i].Category, got[i].Priority, got[i].Issue, w.category, w.priority, w.issue)
			}
			if got[i].Solution == "" || got[i].Impact == "" {
				t.Errorf("recommendation[%d] has empty solution or impact", i)
			}
		}
	})

	t.Run("h1 rule", func(t *testing.T) {
		for _, tc := range []struct {
			count int
			want  string
		}{
			{0, "Missing"},
			{1, ""},
			{2, "Multiple"},
			{5, "Multiple"},
		} {
			tech, content, mobile, perf := good()
			tech.Headings.H1Count = tc.count

			var h1 []Recommendation
			for _, r := range generateRecommendations(tech, content, mobile, perf) {
				if strings.Contains(r.Issue, "H1") {
					h1 = append(h1, r)
				}
			}

			if tc.want == "" {
				if len(h1) != 0 {
					t.Errorf("h1Count=%d: unexpected H1 recommendation %+v", tc.count, h1)
				}
				continue
			}
			if len(h1) != 1 || !strings.Contains(h1[0].Issue, tc.want) {
				t.Errorf("h1Count=%d: got %+v, want one entry containing %q", tc.count, h1, tc.want)
			}
		}
	})

	t.Run("content threshold", func(t *testing.T) {
		tech, content, mobile, perf := good()
		content.WordCount = 300
		if got := generateRecommendations(tech, content, mobile, perf); len(got) != 0 {
			t.Errorf("300 words should not be thin content, got %+v", got)
		}
	})
}
