package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/createdbyadham/Questionary/internal/domain"
	"github.com/createdbyadham/Questionary/internal/repository/models"
	"github.com/createdbyadham/Questionary/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuestionSetDatabaseAdapter implements domain.QuestionRepository using sqlx.DB.
type QuestionSetDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuestionSetDatabaseAdapter creates a new instance of QuestionSetDatabaseAdapter
func NewQuestionSetDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionSetDatabaseAdapter{db: db}
}

// SaveQuestionSet persists the set and its questions in one transaction and
// returns the new set's ID.
func (a *QuestionSetDatabaseAdapter) SaveQuestionSet(ctx context.Context, name string, questions []domain.Question) (string, error) {
	if name == "" {
		name = "Unnamed Set"
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now()
	setID := util.NewULID()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO question_sets (id, name, created_at) VALUES ($1, $2, $3)`,
		setID, name, now,
	); err != nil {
		return "", fmt.Errorf("failed to insert question set: %w", err)
	}

	for _, q := range questions {
		model := models.Question{
			ID:            util.NewULID(),
			SetID:         setID,
			QuestionText:  q.Text,
			Options:       models.StringSlice(q.Options),
			CorrectAnswer: q.CorrectAnswer,
			SourceLabel:   q.SourceLabel,
			PageRange:     q.PageRange,
			CreatedAt:     now,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO questions (id, set_id, question_text, options, correct_answer, source_label, page_range, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			model.ID, model.SetID, model.QuestionText, model.Options,
			model.CorrectAnswer, model.SourceLabel, model.PageRange, model.CreatedAt,
		); err != nil {
			return "", fmt.Errorf("failed to insert question: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit question set: %w", err)
	}
	return setID, nil
}

var _ domain.QuestionRepository = (*QuestionSetDatabaseAdapter)(nil)
