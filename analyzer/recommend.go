package analyzer

const (
	categoryTechnical   = "Technical SEO"
	categoryContent     = "Content Quality"
	categoryMobile      = "Mobile"
	categoryPerformance = "Performance"
)

// generateRecommendations maps deficiencies in the raw metrics to findings.
// The checks run in a fixed order so the output is stable.
func generateRecommendations(tech TechnicalMetrics, content ContentMetrics, mobile MobileMetrics, perf PerformanceMetrics) []Recommendation {
	recommendations := make([]Recommendation, 0, 6)

	if !tech.MetaTags.HasTitle {
		recommendations = append(recommendations, Recommendation{
			Category: categoryTechnical,
			Priority: PriorityCritical,
			Issue:    "Missing title tag",
			Solution: "Add a unique, descriptive <title> tag between 30 and 60 characters that includes your primary keyword.",
			Impact:   "Title tags are one of the strongest on-page ranking signals and appear as the headline in search results.",
		})
	}

	if !tech.MetaTags.HasDescription {
		recommendations = append(recommendations, Recommendation{
			Category: categoryTechnical,
			Priority: PriorityHigh,
			Issue:    "Missing meta description",
			Solution: "Add a <meta name=\"description\"> tag of 120 to 160 characters summarizing the page.",
			Impact:   "Search engines show the description as the result snippet; a good one improves click-through rate.",
		})
	}

	switch {
	case tech.Headings.H1Count == 0:
		recommendations = append(recommendations, Recommendation{
			Category: categoryTechnical,
			Priority: PriorityHigh,
			Issue:    "Missing H1 heading",
			Solution: "Add exactly one <h1> heading that describes the main topic of the page.",
			Impact:   "The H1 tells search engines and readers what the page is about.",
		})
	case tech.Headings.H1Count > 1:
		recommendations = append(recommendations, Recommendation{
			Category: categoryTechnical,
			Priority: PriorityHigh,
			Issue:    "Multiple H1 headings",
			Solution: "Keep a single <h1> for the main topic and demote the others to <h2> or <h3>.",
			Impact:   "Several H1 headings dilute the topical focus of the page.",
		})
	}

	if content.WordCount < goodContentWordCount {
		recommendations = append(recommendations, Recommendation{
			Category: categoryContent,
			Priority: PriorityMedium,
			Issue:    "Thin content (less than 300 words)",
			Solution: "Expand the page with original, useful content of at least 300 words covering the topic in depth.",
			Impact:   "Pages with little text rarely rank for competitive queries.",
		})
	}

	if !mobile.Responsive {
		recommendations = append(recommendations, Recommendation{
			Category: categoryMobile,
			Priority: PriorityCritical,
			Issue:    "Page is not mobile responsive",
			Solution: "Add <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\"> and use a responsive layout.",
			Impact:   "Search engines index the mobile version of pages first; non-responsive pages rank lower.",
		})
	}

	if perf.LoadTimeMs > 3000 {
		recommendations = append(recommendations, Recommendation{
			Category: categoryPerformance,
			Priority: PriorityHigh,
			Issue:    "Slow page load time (over 3 seconds)",
			Solution: "Use a CDN, compress and lazy-load images, minify CSS and JavaScript, and reduce server response time.",
			Impact:   "Slow pages increase bounce rate and page speed is a ranking factor.",
		})
	}

	return recommendations
}
