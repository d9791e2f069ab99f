package analyzer

import (
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const goodContentWordCount = 300

var (
	sentenceBreak = regexp.MustCompile(`[.!?]+`)
	silentEnding  = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingY      = regexp.MustCompile(`^y`)
	vowelGroup    = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// visibleText returns the body text without script and style contents. The
// document itself is left untouched.
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").First().Clone()
	body.Find("script, style, noscript, template").Remove()
	return body.Text()
}

func analyzeContent(text string) ContentMetrics {
	words := strings.Fields(text)

	content := ContentMetrics{
		WordCount:        len(words),
		ReadabilityScore: readabilityScore(text, words),
		Quality:          QualityNeedsImprovement,
	}
	if content.WordCount > goodContentWordCount {
		content.Quality = QualityGood
	}

	return content
}

// readabilityScore approximates Flesch Reading Ease, clamped to [0,100].
// Sentences are the segments of a plain split on terminal punctuation, so a
// trailing period adds an empty segment to the count.
func readabilityScore(text string, words []string) int {
	if len(words) == 0 {
		return 0
	}

	sentences := len(sentenceBreak.Split(text, -1))

	syllables := 0
	for _, word := range words {
		syllables += countSyllables(word)
	}

	wordCount := float64(len(words))
	score := 206.835 -
		1.015*(wordCount/float64(sentences)) -
		84.6*(float64(syllables)/wordCount)

	return int(math.Round(math.Max(0, math.Min(100, score))))
}

func countSyllables(word string) int {
	word = strings.ToLower(word)
	if utf8.RuneCountInString(word) <= 3 {
		return 1
	}

	word = silentEnding.ReplaceAllString(word, "")
	word = leadingY.ReplaceAllString(word, "")

	if groups := vowelGroup.FindAllString(word, -1); len(groups) > 0 {
		return len(groups)
	}
	return 1
}
