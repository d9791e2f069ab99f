package analyzer

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const maxKeywords = 20

var keywordToken = regexp.MustCompile(`[a-z]{4,}`)

// extractKeywords ranks lowercase tokens of at least four letters by
// frequency. Ties keep first-seen order.
func extractKeywords(text string) []KeywordCandidate {
	tokens := keywordToken.FindAllString(strings.ToLower(text), -1)
	if len(tokens) == 0 {
		return []KeywordCandidate{}
	}

	counts := make(map[string]int)
	order := make([]string, 0)
	for _, token := range tokens {
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	total := float64(len(tokens))
	keywords := make([]KeywordCandidate, 0, len(order))
	for _, word := range order {
		keywords = append(keywords, KeywordCandidate{
			Keyword: word,
			Count:   counts[word],
			Density: strconv.FormatFloat(float64(counts[word])/total*100, 'f', 2, 64),
		})
	}

	return keywords
}
