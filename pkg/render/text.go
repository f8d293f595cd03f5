package render

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// StripHTML flattens an HTML fragment (Canvas descriptions and
// announcement bodies arrive as HTML) into single-line plain text.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(doc.Text(), " "))
}

// Truncate cuts text to at most n runes, appending an ellipsis when
// anything was dropped.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimRight(string(runes[:n]), " ") + "..."
}
