package posting

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRegex = regexp.MustCompile(`[ \t\f\v]+`)
	newlineRegex    = regexp.MustCompile(`\n\s*\n+`)
	noisePatterns   = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bJavaScript\s+is\s+disabled\b.*?enabled\.`),
		regexp.MustCompile(`(?i)\bCookies?\s+are\s+disabled\b.*?enabled\.`),
		regexp.MustCompile(`(?i)\bPlease\s+enable\s+JavaScript\b[^.]*\.?`),
		regexp.MustCompile(`(?i)\bThis\s+site\s+requires\s+JavaScript\b[^.]*\.?`),
	}
)

// Cleaner strips page chrome from job posting HTML
type Cleaner struct {
	// Tags to remove completely
	removeTags []string
	// Selectors likely to wrap the posting body, in priority order
	jobSelectors []string
	// Minimum text length for a selector match to count as content
	minContent int
}

// NewCleaner creates a new cleaner instance
func NewCleaner() *Cleaner {
	return &Cleaner{
		removeTags: []string{
			"script", "style", "noscript", "iframe", "object", "embed",
			"form", "input", "button", "select", "textarea",
			"nav", "header", "footer", "aside", "menu",
			"svg", "meta", "link", "template",
		},
		jobSelectors: []string{
			".job-description", ".job-posting", ".job-detail", ".posting", ".vacancy",
			"[data-testid*='job']", "[data-test*='job']", "[data-qa*='job']",
			"article", "main", "[role='main']", "#main", ".content", ".description",
		},
		minContent: 50,
	}
}

// Strip removes non-content elements from the document in place
func (c *Cleaner) Strip(doc *goquery.Document) {
	for _, tag := range c.removeTags {
		doc.Find(tag).Remove()
	}
}

// ExtractJobContent returns the text of the first selector that looks like a posting,
// falling back to the whole body
func (c *Cleaner) ExtractJobContent(doc *goquery.Document) string {
	for _, selector := range c.jobSelectors {
		var content string
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := blockText(s); len(text) > c.minContent {
				content = text
				return false
			}
			return true
		})
		if content != "" {
			return c.CleanText(content)
		}
	}

	return c.CleanText(blockText(doc.Find("body")))
}

// CleanText collapses whitespace and removes boilerplate notices
func (c *Cleaner) CleanText(text string) string {
	for _, re := range noisePatterns {
		text = re.ReplaceAllString(text, "")
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")
	text = newlineRegex.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// blockText is Selection.Text with line breaks after block elements
func blockText(s *goquery.Selection) string {
	clone := s.Clone()
	clone.Find("p, li, br, h1, h2, h3, h4, h5, h6, div, tr").Each(func(_ int, el *goquery.Selection) {
		el.AppendHtml("\n")
	})
	return clone.Text()
}
