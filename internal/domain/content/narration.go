package content

import (
	"regexp"
	"strings"
)

var (
	markdownHeaderRe   = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	markdownEmphasisRe = regexp.MustCompile(`(\*\*|__|\*|_)`)
	paragraphBreakRe   = regexp.MustCompile(`\n\s*\n`)
	whitespaceRe       = regexp.MustCompile(`\s+`)
)

// CleanForNarration prepares an article body for speech synthesis:
// markdown headers and emphasis markers are stripped, paragraph breaks
// become sentence-ending pauses, remaining line breaks become spaces, and
// repeated whitespace collapses. The cleaned text, not the raw stored
// artifact, is what goes to the synthesis provider.
func CleanForNarration(body string) string {
	text := markdownHeaderRe.ReplaceAllString(body, "")
	text = markdownEmphasisRe.ReplaceAllString(text, "")
	text = paragraphBreakRe.ReplaceAllString(text, ". ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
