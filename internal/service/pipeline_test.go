package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/createdbyadham/Questionary/internal/config"
	"github.com/createdbyadham/Questionary/internal/domain"
	"github.com/createdbyadham/Questionary/internal/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRepo struct {
	mu    sync.Mutex
	name  string
	saved []domain.Question
}

func (r *fakeRepo) SaveQuestionSet(ctx context.Context, name string, questions []domain.Question) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = name
	r.saved = questions
	return "set-123", nil
}

// recordingStore wraps the memory store and keeps every percent the record
// passes through, so tests can assert progress never moves backwards.
type recordingStore struct {
	*progress.MemoryStore

	mu       sync.Mutex
	percents []float64
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryStore: progress.NewMemoryStore(config.ProgressConfig{})}
}

func (s *recordingStore) Update(ctx context.Context, sessionID string, upd domain.ProgressUpdate) error {
	err := s.MemoryStore.Update(ctx, sessionID, upd)
	if rec, getErr := s.MemoryStore.Get(ctx, sessionID); getErr == nil {
		s.mu.Lock()
		s.percents = append(s.percents, rec.Percent)
		s.mu.Unlock()
	}
	return err
}

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func numberedQuestionsText(n int) string {
	var sb []byte
	for i := 1; i <= n; i++ {
		sb = append(sb, fmt.Sprintf("%d. What is item %d? A. one B. two C. three D. four\n\n", i, i)...)
	}
	return string(sb)
}

func testConfig() *config.Config {
	return &config.Config{Pipeline: testPipelineConfig()}
}

func TestRunExtractEndToEnd(t *testing.T) {
	path := writeTempFile(t, "exam.txt", numberedQuestionsText(12))
	store := newRecordingStore()
	repo := &fakeRepo{}
	p := NewPipeline(echoModel(), testConfig(), store, repo, zap.NewNop())

	result, err := p.Run(context.Background(), "sess-extract", RunRequest{
		Mode:      domain.ModeExtract,
		FilePaths: []string{path},
		SetName:   "Midterm",
	})

	require.NoError(t, err)
	assert.Equal(t, "set-123", result.SetID)
	assert.Len(t, result.Questions, 12)
	assert.Equal(t, "Midterm", repo.name)
	assert.Len(t, repo.saved, 12)

	rec, err := store.Get(context.Background(), "sess-extract")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, rec.Status)
	assert.True(t, rec.Completed)
	assert.Equal(t, 100.0, rec.Percent)
	assert.Contains(t, rec.Message, "12 questions")

	store.mu.Lock()
	defer store.mu.Unlock()
	for i := 1; i < len(store.percents); i++ {
		assert.GreaterOrEqual(t, store.percents[i], store.percents[i-1], "percent must never decrease")
	}
}

func TestRunExtractJSONBypass(t *testing.T) {
	path := writeTempFile(t, "questions.json", `{
		"questions": [
			{"question": "1. Q one?", "options": ["a", "b", "c", "d"], "correct_answer": "a"},
			{"question": "Q two?", "options": ["True", "False"], "correct_answer": "False"}
		]
	}`)
	store := newRecordingStore()
	model := staticModel("should never be called")
	p := NewPipeline(model, testConfig(), store, nil, zap.NewNop())

	result, err := p.Run(context.Background(), "sess-json", RunRequest{
		Mode:      domain.ModeExtract,
		FilePaths: []string{path},
	})

	require.NoError(t, err)
	assert.Empty(t, result.SetID, "no repository configured")
	require.Len(t, result.Questions, 2)
	assert.Equal(t, "Q one?", result.Questions[0].Text)
	assert.Equal(t, int64(0), model.calls.Load(), "JSON input bypasses the LLM")
}

func TestRunMissingFileResolvesToError(t *testing.T) {
	store := newRecordingStore()
	p := NewPipeline(staticModel("{}"), testConfig(), store, nil, zap.NewNop())

	_, err := p.Run(context.Background(), "sess-missing", RunRequest{
		Mode:      domain.ModeExtract,
		FilePaths: []string{filepath.Join(t.TempDir(), "missing.txt")},
	})

	require.Error(t, err)
	rec, getErr := store.Get(context.Background(), "sess-missing")
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusError, rec.Status)
	assert.True(t, rec.Completed)
	assert.Equal(t, 100.0, rec.Percent)
	assert.NotEmpty(t, rec.Error)
}

func TestRunRequiresInputFiles(t *testing.T) {
	store := newRecordingStore()
	p := NewPipeline(staticModel("{}"), testConfig(), store, nil, zap.NewNop())

	_, err := p.Run(context.Background(), "sess-empty", RunRequest{Mode: domain.ModeExtract})

	assert.True(t, domain.IsCode(err, domain.ErrInvalidInput))
}

func TestRunGenerateSamplesDownAndLabels(t *testing.T) {
	path := writeTempFile(t, "notes.txt", "Photosynthesis converts light into chemical energy inside chloroplasts.")
	store := newRecordingStore()
	model := staticModel(`{
		"questions": [
			{"question": "Q1?", "options": ["a", "b", "c", "d"], "correct_answer": "a"},
			{"question": "Q2?", "options": ["a", "b", "c", "d"], "correct_answer": "b"},
			{"question": "Q3?", "options": ["a", "b", "c", "d"], "correct_answer": "c"}
		]
	}`)
	p := NewPipeline(model, testConfig(), store, nil, zap.NewNop())

	result, err := p.Run(context.Background(), "sess-gen", RunRequest{
		Mode:           domain.ModeGenerate,
		FilePaths:      []string{path},
		TotalQuestions: 2,
	})

	require.NoError(t, err)
	assert.Len(t, result.Questions, 2, "sampled down to the requested budget")
	for _, q := range result.Questions {
		assert.Equal(t, "notes.txt", q.SourceLabel)
	}
}

func TestRunAsyncCompletes(t *testing.T) {
	path := writeTempFile(t, "exam.txt", numberedQuestionsText(3))
	store := newRecordingStore()
	p := NewPipeline(echoModel(), testConfig(), store, nil, zap.NewNop())

	sessionID := p.RunAsync(RunRequest{
		Mode:      domain.ModeExtract,
		FilePaths: []string{path},
	})
	require.NotEmpty(t, sessionID)

	require.Eventually(t, func() bool {
		rec, err := store.Get(context.Background(), sessionID)
		return err == nil && rec.Completed
	}, 5*time.Second, 10*time.Millisecond)

	rec, err := store.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusComplete, rec.Status)
}

func TestPerFileBudget(t *testing.T) {
	assert.Equal(t, 3, perFileBudget(10, 3))
	assert.Equal(t, 1, perFileBudget(1, 4), "small budgets floor at one per file")
	assert.Equal(t, 0, perFileBudget(0, 2))
}

func TestAssignQuestionCounts(t *testing.T) {
	units := makeUnits(3)
	assignQuestionCounts(units, 7)
	assert.Equal(t, []int{3, 2, 2}, []int{units[0].NumQuestions, units[1].NumQuestions, units[2].NumQuestions})

	units = makeUnits(3)
	assignQuestionCounts(units, 0)
	for _, u := range units {
		assert.Equal(t, 2, u.NumQuestions, "zero budget falls back to a small default")
	}

	units = makeUnits(4)
	assignQuestionCounts(units, 2)
	for _, u := range units {
		assert.Equal(t, 1, u.NumQuestions, "budget below chunk count floors at one each")
	}
}

func TestSampleDown(t *testing.T) {
	questions := []domain.Question{
		{Text: "q1"}, {Text: "q2"}, {Text: "q3"}, {Text: "q4"}, {Text: "q5"},
	}
	sampled := sampleDown(questions, 3)
	assert.Len(t, sampled, 3)

	texts := map[string]bool{"q1": true, "q2": true, "q3": true, "q4": true, "q5": true}
	for _, q := range sampled {
		assert.True(t, texts[q.Text])
	}

	same := []domain.Question{{Text: "only"}}
	assert.Equal(t, same, sampleDown(same, 0), "zero total means no sampling")
	assert.Equal(t, same, sampleDown(same, 5))
}
