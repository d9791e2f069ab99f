package analyzer

// Category weights in percent; they sum to 100.
const (
	technicalWeight     = 30
	contentWeight       = 25
	mobileWeight        = 20
	speedWeight         = 15
	accessibilityWeight = 10
)

func calculateScores(tech TechnicalMetrics, content ContentMetrics, mobile MobileMetrics, perf PerformanceMetrics, a11y AccessibilityMetrics) ScoreSet {
	scores := ScoreSet{
		Technical:     scoreTechnical(tech),
		Content:       scoreContent(content),
		Mobile:        scoreMobile(mobile),
		Speed:         scoreSpeed(perf),
		Accessibility: scoreAccessibility(a11y),
	}
	scores.Overall = overallScore(scores)
	return scores
}

// overallScore blends the sub-scores with integer arithmetic and rounds half up,
// so the result never depends on floating point representation.
func overallScore(s ScoreSet) int {
	weighted := clampScore(s.Technical)*technicalWeight +
		clampScore(s.Content)*contentWeight +
		clampScore(s.Mobile)*mobileWeight +
		clampScore(s.Speed)*speedWeight +
		clampScore(s.Accessibility)*accessibilityWeight
	return (weighted + 50) / 100
}

func scoreTechnical(t TechnicalMetrics) int {
	score := 0

	if t.MetaTags.HasTitle {
		score += 20
	}
	if t.MetaTags.TitleLength >= 30 && t.MetaTags.TitleLength <= 60 {
		score += 10
	}
	if t.MetaTags.HasDescription {
		score += 20
	}
	if t.MetaTags.DescriptionLength >= 120 && t.MetaTags.DescriptionLength <= 160 {
		score += 10
	}
	if t.MetaTags.HasOpenGraph {
		score += 10
	}
	if t.Headings.H1Count == 1 {
		score += 15
	}
	if t.Headings.H2Count > 0 {
		score += 10
	}
	// No images means no alt coverage bonus.
	if t.Images.Total > 0 && float64(t.Images.WithAlt)/float64(t.Images.Total) > 0.8 {
		score += 5
	}

	return clampScore(score)
}

func scoreContent(c ContentMetrics) int {
	score := 30

	switch {
	case c.WordCount >= 300:
		score += 40
	case c.WordCount >= 200:
		score += 25
	default:
		score += 10
	}

	switch {
	case c.ReadabilityScore >= 60:
		score += 30
	case c.ReadabilityScore >= 40:
		score += 20
	default:
		score += 10
	}

	return clampScore(score)
}

func scoreMobile(m MobileMetrics) int {
	if m.Responsive && m.Viewport {
		return 100
	}
	return 50
}

func scoreSpeed(p PerformanceMetrics) int {
	score := 100

	switch {
	case p.LoadTimeMs > 3000:
		score -= 30
	case p.LoadTimeMs > 2000:
		score -= 15
	case p.LoadTimeMs > 1000:
		score -= 5
	}

	switch {
	case p.PageSizeBytes > 3_000_000:
		score -= 20
	case p.PageSizeBytes > 1_500_000:
		score -= 10
	}

	return clampScore(score)
}

func scoreAccessibility(a AccessibilityMetrics) int {
	score := 100

	if !a.HasLang {
		score -= 20
	}
	if a.ImagesWithoutAlt > 0 {
		score -= 15
	}
	if a.AnchorsWithoutHref > 0 {
		score -= 10
	}
	if a.ButtonsWithoutLabel > 3 {
		score -= 10
	}

	return clampScore(score)
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
