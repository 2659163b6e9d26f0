package domain

import (
	"regexp"
	"strings"
)

// Question represents a single validated multiple-choice or true/false item.
// SourceLabel and PageRange are only populated by the generation pipeline.
type Question struct {
	Text          string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	SourceLabel   string   `json:"source_lecture,omitempty"`
	PageRange     string   `json:"page_range,omitempty"`
}

var (
	leadingNumberRe       = regexp.MustCompile(`^\d+[-.]?\s*`)
	leadingOptionLetterRe = regexp.MustCompile(`^[A-D]\.\s*`)
)

// StripQuestionNumber removes a leading "12." / "3-" style numbering prefix.
func StripQuestionNumber(text string) string {
	return strings.TrimSpace(leadingNumberRe.ReplaceAllString(text, ""))
}

// StripOptionLetter removes a leading "A." style option prefix.
func StripOptionLetter(option string) string {
	return strings.TrimSpace(leadingOptionLetterRe.ReplaceAllString(option, ""))
}

// Normalize strips numbering from the question text and option-letter
// prefixes from each option. The correct answer is deliberately left
// untouched: it must already match an option verbatim.
func (q *Question) Normalize() {
	q.Text = StripQuestionNumber(q.Text)
	for i, opt := range q.Options {
		q.Options[i] = StripOptionLetter(opt)
	}
}

// Validate checks the structural invariants: the question must have exactly
// 4 options, or exactly 2 options that both read "true"/"false" ignoring
// case, and the correct answer must be an exact match of one option.
func (q *Question) Validate() error {
	if q.Text == "" {
		return NewInvalidInputError("question text is required")
	}
	switch len(q.Options) {
	case 4:
	case 2:
		if !isTrueFalse(q.Options) {
			return NewInvalidInputError("two-option questions must be true/false")
		}
	default:
		return NewInvalidInputError("question must have exactly 4 options, or 2 for true/false")
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return NewInvalidInputError("correct answer does not match any option")
}

// isTrueFalse reports whether both options are "true"/"false" ignoring case.
// Distinctness is not enforced.
func isTrueFalse(options []string) bool {
	for _, opt := range options {
		lower := strings.ToLower(opt)
		if lower != "true" && lower != "false" {
			return false
		}
	}
	return true
}
