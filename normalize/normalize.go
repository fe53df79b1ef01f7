// Package normalize converts stored article markup into clean prose suitable
// for chunking and embedding.
package normalize

import (
	"html"
	"regexp"
	"strings"
)

// Pre-compiled expressions for markup stripping.
var (
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockElements = regexp.MustCompile(`(?i)</?(p|div|br|hr|h[1-6]|li|ul|ol|tr|td|th|blockquote|pre|table|section|article|header|footer|figure|figcaption)[^>]*>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Text strips markup from raw article content and returns flat prose.
//
// Script and style elements are removed entirely, block element boundaries
// become whitespace so adjacent blocks do not run together, entities are
// decoded, and every whitespace run collapses to a single space. Malformed
// markup degrades to best-effort extraction; the function never fails.
func Text(markup string) string {
	if markup == "" {
		return ""
	}

	text := scriptTag.ReplaceAllString(markup, "")
	text = styleTag.ReplaceAllString(text, "")
	text = noscriptTag.ReplaceAllString(text, "")
	text = htmlComments.ReplaceAllString(text, "")

	// Block boundaries become separators before tags are dropped, so
	// "<p>a</p><p>b</p>" yields "a b" rather than "ab".
	text = blockElements.ReplaceAllString(text, " ")
	text = allTags.ReplaceAllString(text, "")

	text = html.UnescapeString(text)
	text = whitespace.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}
