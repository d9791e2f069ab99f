package analyzer

// AuditReport represents the complete audit of a webpage
type AuditReport struct {
	URL             string             `json:"url"`
	Scores          ScoreSet           `json:"scores"`
	TechnicalSEO    TechnicalSEO       `json:"technicalSEO"`
	ContentAnalysis ContentMetrics     `json:"contentAnalysis"`
	Keywords        []KeywordCandidate `json:"keywords"`
	Recommendations []Recommendation   `json:"recommendations"`
	AIInsights      map[string]any     `json:"aiInsights"`
}

// TechnicalSEO groups the markup-derived metrics of a page.
type TechnicalSEO struct {
	TechnicalMetrics
	Mobile        MobileMetrics        `json:"mobile"`
	Performance   PerformanceMetrics   `json:"performance"`
	Accessibility AccessibilityMetrics `json:"accessibility"`
}

type TechnicalMetrics struct {
	MetaTags MetaTags `json:"metaTags"`
	Headings Headings `json:"headings"`
	Images   Images   `json:"images"`
	Links    Links    `json:"links"`
}

type MetaTags struct {
	Title             string `json:"title"`
	HasTitle          bool   `json:"hasTitle"`
	TitleLength       int    `json:"titleLength"`
	Description       string `json:"description"`
	HasDescription    bool   `json:"hasDescription"`
	DescriptionLength int    `json:"descriptionLength"`
	HasKeywords       bool   `json:"hasKeywords"`
	HasOpenGraph      bool   `json:"hasOpenGraph"`
}

type Headings struct {
	H1Count   int      `json:"h1Count"`
	H2Count   int      `json:"h2Count"`
	Structure []string `json:"structure"`
}

type Images struct {
	Total      int `json:"total"`
	WithAlt    int `json:"withAlt"`
	WithoutAlt int `json:"withoutAlt"`
}

// Links only counts hrefs starting with "http" (external) or "/" and "#" (internal).
type Links struct {
	Internal int `json:"internal"`
	External int `json:"external"`
}

// Quality is a coarse content quality bucket.
type Quality string

const (
	QualityGood             Quality = "good"
	QualityNeedsImprovement Quality = "needs_improvement"
)

type ContentMetrics struct {
	WordCount        int     `json:"wordCount"`
	ReadabilityScore int     `json:"readabilityScore"`
	Quality          Quality `json:"quality"`
}

type MobileMetrics struct {
	Responsive bool `json:"responsive"`
	Viewport   bool `json:"viewport"`
}

type PerformanceMetrics struct {
	LoadTimeMs       int64  `json:"loadTime"`
	PageSizeBytes    int    `json:"pageSize"`
	ResourceTagCount int    `json:"resourceCount"`
	LoadTimeSeverity string `json:"loadTimeSeverity"`
	PageSizeSeverity string `json:"pageSizeSeverity"`
}

type AccessibilityMetrics struct {
	HasLang             bool   `json:"hasLang"`
	Lang                string `json:"lang,omitempty"`
	ImagesWithoutAlt    int    `json:"imagesWithoutAlt"`
	AnchorsWithoutHref  int    `json:"anchorsWithoutHref"`
	ButtonsWithoutLabel int    `json:"buttonsWithoutLabel"`
}

// ScoreSet holds the 0-100 sub-scores and their weighted blend.
type ScoreSet struct {
	Overall       int `json:"overall"`
	Technical     int `json:"technical"`
	Content       int `json:"content"`
	Mobile        int `json:"mobile"`
	Speed         int `json:"speed"`
	Accessibility int `json:"accessibility"`
}

type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

type Recommendation struct {
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
	Issue    string   `json:"issue"`
	Solution string   `json:"solution"`
	Impact   string   `json:"impact"`
}

type KeywordCandidate struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
	Density string `json:"density"`
}
