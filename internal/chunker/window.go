package chunker

import (
	"strconv"
	"strings"

	"github.com/createdbyadham/Questionary/internal/domain"
)

// ChunkByWindow splits text on whitespace into words and accumulates them
// into units until adding the next word would exceed the character budget.
// Words are never split. pageOfWord, when non-empty, maps word positions to
// 1-based page numbers and yields a best-effort page range label per unit;
// it may be nil when page attribution is unavailable.
func ChunkByWindow(text string, chunkSize int, pageOfWord []int, sourceLabel string) []domain.TextUnit {
	if chunkSize <= 0 {
		chunkSize = 2000
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	type span struct {
		firstWord int
		lastWord  int
		text      string
	}

	var spans []span
	var current []string
	currentLen := 0
	firstWord := 0

	for i, word := range words {
		wordLen := len(word) + 1 // +1 for the joining space
		if currentLen+wordLen > chunkSize && len(current) > 0 {
			spans = append(spans, span{firstWord: firstWord, lastWord: i - 1, text: strings.Join(current, " ")})
			current = current[:0]
			currentLen = 0
			firstWord = i
		}
		current = append(current, word)
		currentLen += wordLen
	}
	if len(current) > 0 {
		spans = append(spans, span{firstWord: firstWord, lastWord: len(words) - 1, text: strings.Join(current, " ")})
	}

	units := make([]domain.TextUnit, len(spans))
	for i, sp := range spans {
		units[i] = domain.TextUnit{
			Index:       i,
			Total:       len(spans),
			Text:        sp.text,
			SourceLabel: sourceLabel,
			PageRange:   pageRangeLabel(pageOfWord, sp.firstWord, sp.lastWord),
		}
	}
	return units
}

// pageRangeLabel formats the page span covered by words [first, last],
// e.g. "3-5" or "4". Returns "" when no page index is available.
func pageRangeLabel(pageOfWord []int, first, last int) string {
	if len(pageOfWord) == 0 {
		return ""
	}
	if first >= len(pageOfWord) {
		first = len(pageOfWord) - 1
	}
	if last >= len(pageOfWord) {
		last = len(pageOfWord) - 1
	}
	start, end := pageOfWord[first], pageOfWord[last]
	if start == end {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "-" + strconv.Itoa(end)
}
