package validate

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// htmlTagPattern matches an opening tag anywhere in the text, across line breaks
var htmlTagPattern = regexp.MustCompile(`(?is)<\s*[a-z][^>]*>`)

var (
	anchorURLPattern = regexp.MustCompile(`(?i)^\s*(https?|mailto):`)
	imageURLPattern  = regexp.MustCompile(`(?i)^\s*(https?|data):`)
	targetPattern    = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

// ContentPolicy is the allow-list applied to user-authored rich text such as comments
var ContentPolicy = newContentPolicy()

// SanitizationPolicy strips all markup. It is used for fields rendered as plain text.
var SanitizationPolicy = bluemonday.StrictPolicy()

func newContentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h1", "h2", "h3", "h4", "h5", "h6",
		"p", "br", "span", "div",
		"strong", "b", "em", "i", "u", "s", "del",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
	)

	p.AllowNoAttrs().OnElements("a", "img")

	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(false)
	p.AllowURLSchemes("http", "https", "mailto", "data")

	p.AllowAttrs("href").Matching(anchorURLPattern).OnElements("a")
	p.AllowAttrs("title").Matching(bluemonday.Paragraph).OnElements("a", "img")
	p.AllowAttrs("target").Matching(targetPattern).OnElements("a")

	p.AllowAttrs("src").Matching(imageURLPattern).OnElements("img")
	p.AllowAttrs("alt").Matching(bluemonday.Paragraph).OnElements("img")
	p.AllowAttrs("width", "height").Matching(bluemonday.NumberOrPercent).OnElements("img")

	return p
}

// IsHTMLLike reports whether text contains something that looks like an opening HTML tag
func IsHTMLLike(text string) bool {
	return htmlTagPattern.MatchString(text)
}

// SanitizeHTML strips everything outside ContentPolicy
func SanitizeHTML(text string) string {
	return ContentPolicy.Sanitize(text)
}

// CleanContent trims text and, only if it looks like HTML, sanitizes it. Plain text such as
// Markdown is returned trimmed but otherwise untouched.
func CleanContent(text string) string {
	trimmed := strings.TrimSpace(text)
	if !IsHTMLLike(trimmed) {
		return trimmed
	}
	return SanitizeHTML(trimmed)
}

// SanitizeText removes every tag from text and trims it
func SanitizeText(text string) string {
	return strings.TrimSpace(SanitizationPolicy.Sanitize(text))
}
