package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{
			name: "valid four options",
			q: Question{
				Text:          "What is the capital of France?",
				Options:       []string{"Paris", "London", "Berlin", "Madrid"},
				CorrectAnswer: "Paris",
			},
		},
		{
			name: "three options rejected",
			q: Question{
				Text:          "What is the capital of France?",
				Options:       []string{"Paris", "London", "Berlin"},
				CorrectAnswer: "Paris",
			},
			wantErr: true,
		},
		{
			name: "correct answer not among options",
			q: Question{
				Text:          "What is the capital of France?",
				Options:       []string{"Paris", "London", "Berlin", "Madrid"},
				CorrectAnswer: "Rome",
			},
			wantErr: true,
		},
		{
			name: "correct answer is case sensitive",
			q: Question{
				Text:          "What is the capital of France?",
				Options:       []string{"Paris", "London", "Berlin", "Madrid"},
				CorrectAnswer: "paris",
			},
			wantErr: true,
		},
		{
			name: "true false pair",
			q: Question{
				Text:          "The sky is blue.",
				Options:       []string{"True", "False"},
				CorrectAnswer: "True",
			},
		},
		{
			name: "true false is case insensitive on shape",
			q: Question{
				Text:          "The sky is blue.",
				Options:       []string{"TRUE", "false"},
				CorrectAnswer: "TRUE",
			},
		},
		{
			name: "duplicate true options accepted",
			q: Question{
				Text:          "The sky is blue.",
				Options:       []string{"true", "true"},
				CorrectAnswer: "true",
			},
		},
		{
			name: "two non-boolean options rejected",
			q: Question{
				Text:          "Pick one",
				Options:       []string{"Yes", "No"},
				CorrectAnswer: "Yes",
			},
			wantErr: true,
		},
		{
			name: "empty question text rejected",
			q: Question{
				Options:       []string{"Paris", "London", "Berlin", "Madrid"},
				CorrectAnswer: "Paris",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuestionNormalize(t *testing.T) {
	q := Question{
		Text:          "3. What is the capital of France?",
		Options:       []string{"A. Paris", "B. London", "C. Berlin", "D. Madrid"},
		CorrectAnswer: "Paris",
	}
	q.Normalize()

	assert.Equal(t, "What is the capital of France?", q.Text)
	assert.Equal(t, []string{"Paris", "London", "Berlin", "Madrid"}, q.Options)
	assert.NoError(t, q.Validate())
}

func TestNormalizeLeavesCorrectAnswerUntouched(t *testing.T) {
	// The correct answer must already match an option verbatim; a letter
	// prefix on it means the question fails validation after normalization.
	q := Question{
		Text:          "1. Pick a city",
		Options:       []string{"A. Paris", "B. London", "C. Berlin", "D. Madrid"},
		CorrectAnswer: "B. London",
	}
	q.Normalize()
	assert.Equal(t, "B. London", q.CorrectAnswer)
	assert.Error(t, q.Validate())
}

func TestStripQuestionNumber(t *testing.T) {
	assert.Equal(t, "What?", StripQuestionNumber("12. What?"))
	assert.Equal(t, "What?", StripQuestionNumber("3- What?"))
	assert.Equal(t, "What?", StripQuestionNumber("7 What?"))
	assert.Equal(t, "What?", StripQuestionNumber("What?"))
}

func TestIsCode(t *testing.T) {
	err := NewRunEmptyError()
	assert.True(t, IsCode(err, ErrRunEmpty))
	assert.False(t, IsCode(err, ErrExtractionFailed))
	assert.False(t, IsCode(nil, ErrRunEmpty))
}
