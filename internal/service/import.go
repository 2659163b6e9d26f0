package service

import (
	"encoding/json"

	"github.com/createdbyadham/Questionary/internal/domain"
	"github.com/createdbyadham/Questionary/internal/logger"

	"go.uber.org/zap"
)

// ParseQuestionsJSON parses a pre-structured {"questions": [...]} document,
// bypassing the LLM entirely. Each entry is normalized and validated against
// the same invariants as LLM output; invalid entries are dropped with a log
// line rather than failing the import.
func ParseQuestionsJSON(data []byte) ([]domain.Question, error) {
	var doc struct {
		Questions []domain.Question `json:"questions"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, domain.NewInvalidInputError("document is not valid questions JSON")
	}
	if len(doc.Questions) == 0 {
		return nil, domain.NewRunEmptyError()
	}

	l := logger.Get()
	valid := make([]domain.Question, 0, len(doc.Questions))
	for _, q := range doc.Questions {
		q.Normalize()
		if err := q.Validate(); err != nil {
			l.Warn("Imported question dropped by validation",
				zap.String("question", q.Text),
				zap.Error(err))
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, domain.NewRunEmptyError()
	}
	return valid, nil
}
