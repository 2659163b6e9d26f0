package chunker

import (
	"regexp"
	"strings"

	"github.com/createdbyadham/Questionary/internal/domain"
)

// questionStartPatterns are tried in order; the first one that splits the
// text into more than one segment wins.
var questionStartPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\n\s*\d+[.-]\s+`),          // 1. or 1-
	regexp.MustCompile(`\n\s*Q\d+[.-]\s+`),         // Q1. or Q1-
	regexp.MustCompile(`\n\s*Question\s+\d+[.-]\s+`), // Question 1. or Question 1-
	regexp.MustCompile(`\n\s*\(\d+\)\s+`),          // (1) style
	regexp.MustCompile(`\n\s*\[\d+\]\s+`),          // [1] style
}

// answerMarkerRe recognizes segments that carry answer options, used by the
// blank-line fallback to filter out non-question paragraphs.
var answerMarkerRe = regexp.MustCompile(`(?:[A-D]\.|\(True/False\)|True\s*False)`)

// SplitQuestions splits normalized text into individual question segments
// using question-numbering boundaries. If no numbering pattern produces more
// than one segment, it falls back to splitting on blank lines and keeping
// only paragraphs that look answer-bearing.
func SplitQuestions(text string) []string {
	for _, pattern := range questionStartPatterns {
		segments := splitNonEmpty(pattern, text)
		if len(segments) > 1 {
			return segments
		}
	}

	var questions []string
	for _, seg := range strings.Split(text, "\n\n") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if answerMarkerRe.MatchString(seg) {
			questions = append(questions, seg)
		}
	}
	return questions
}

// ChunkByQuestion groups question segments into fixed-size batches. Batches
// of a few questions keep LLM context small while bounding how much a failed
// batch can lose. The last batch may be smaller.
func ChunkByQuestion(text string, batchSize int) []domain.TextUnit {
	if batchSize <= 0 {
		batchSize = 5
	}

	questions := SplitQuestions(text)
	if len(questions) == 0 {
		return nil
	}

	var batches []string
	for start := 0; start < len(questions); start += batchSize {
		end := start + batchSize
		if end > len(questions) {
			end = len(questions)
		}
		batches = append(batches, strings.Join(questions[start:end], "\n"))
	}

	units := make([]domain.TextUnit, len(batches))
	for i, batch := range batches {
		units[i] = domain.TextUnit{
			Index: i,
			Total: len(batches),
			Text:  batch,
		}
	}
	return units
}

func splitNonEmpty(pattern *regexp.Regexp, text string) []string {
	var segments []string
	for _, seg := range pattern.Split(text, -1) {
		if seg = strings.TrimSpace(seg); seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments
}
