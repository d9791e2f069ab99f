package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const headingExcerptLength = 60

func analyzeTechnical(doc *goquery.Document) TechnicalMetrics {
	return TechnicalMetrics{
		MetaTags: analyzeMetaTags(doc),
		Headings: analyzeHeadings(doc),
		Images:   analyzeImages(doc),
		Links:    analyzeLinks(doc),
	}
}

func analyzeMetaTags(doc *goquery.Document) MetaTags {
	meta := MetaTags{}

	// Title
	meta.Title = doc.Find("title").First().Text()
	meta.TitleLength = utf8.RuneCountInString(meta.Title)
	meta.HasTitle = strings.TrimSpace(meta.Title) != ""

	// Description
	meta.Description = metaContent(doc, "description")
	meta.DescriptionLength = utf8.RuneCountInString(meta.Description)
	meta.HasDescription = strings.TrimSpace(meta.Description) != ""

	// Keywords
	meta.HasKeywords = strings.TrimSpace(metaContent(doc, "keywords")) != ""

	// Open Graph
	meta.HasOpenGraph = doc.Find("meta[property^='og:']").Length() > 0

	return meta
}

func analyzeHeadings(doc *goquery.Document) Headings {
	headings := Headings{
		H1Count:   doc.Find("h1").Length(),
		H2Count:   doc.Find("h2").Length(),
		Structure: make([]string, 0),
	}

	doc.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := truncateRunes(strings.TrimSpace(s.Text()), headingExcerptLength)
		headings.Structure = append(headings.Structure, goquery.NodeName(s)+": "+text)
	})

	return headings
}

func analyzeImages(doc *goquery.Document) Images {
	images := Images{}

	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		images.Total++
		// An empty alt still marks the image as decorative.
		if _, exists := s.Attr("alt"); exists {
			images.WithAlt++
		}
	})
	images.WithoutAlt = images.Total - images.WithAlt

	return images
}

// analyzeLinks classifies anchors by the prefix of their raw href. mailto:,
// bare relative and empty hrefs fall into neither bucket.
func analyzeLinks(doc *goquery.Document) Links {
	links := Links{}

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		switch {
		case strings.HasPrefix(href, "http"):
			links.External++
		case strings.HasPrefix(href, "/"), strings.HasPrefix(href, "#"):
			links.Internal++
		}
	})

	return links
}

// metaTag returns the first <meta name=...> matching name case-insensitively.
func metaTag(doc *goquery.Document, name string) *goquery.Selection {
	return doc.Find("meta[name]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(strings.TrimSpace(s.AttrOr("name", "")), name)
	}).First()
}

func metaContent(doc *goquery.Document, name string) string {
	content, _ := metaTag(doc, name).Attr("content")
	return content
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
