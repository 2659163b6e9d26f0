package extractor

import (
	"regexp"
	"strings"
)

var (
	paragraphBreakRe = regexp.MustCompile(`\n{2,}`)
	horizontalWSRe   = regexp.MustCompile(`[ \t]+`)
)

// NormalizeText cleans up common PDF extraction artifacts so that chunking is
// deterministic:
//   - form feeds become newlines
//   - a single newline inside a paragraph is merged into a space (soft wraps)
//   - runs of spaces and tabs collapse to one space
//   - runs of 3+ newlines collapse to exactly one blank line
func NormalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")

	paragraphs := paragraphBreakRe.Split(text, -1)
	cleaned := paragraphs[:0]
	for _, p := range paragraphs {
		p = strings.ReplaceAll(p, "\n", " ")
		p = horizontalWSRe.ReplaceAllString(p, " ")
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		cleaned = append(cleaned, p)
	}
	return strings.Join(cleaned, "\n\n")
}
