package pipeline

import (
	"regexp"
	"strings"
)

var (
	headingMarkers = regexp.MustCompile(`(?m)^\s*#+\s*`)
	bulletMarkers  = regexp.MustCompile(`(?m)^\s*[\*\-]\s+`)
	emphasis       = strings.NewReplacer("**", "", "__", "", "##", "")
)

// CleanText sanitizes raw model output into one flat paragraph: markdown
// emphasis, heading and bullet markers are stripped and all whitespace runs,
// newlines included, collapse to single spaces.
func CleanText(text string) string {
	text = headingMarkers.ReplaceAllString(text, "")
	text = emphasis.Replace(text)
	text = bulletMarkers.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
