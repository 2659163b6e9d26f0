package service

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/createdbyadham/Questionary/internal/chunker"
	"github.com/createdbyadham/Questionary/internal/config"
	"github.com/createdbyadham/Questionary/internal/domain"
	"github.com/createdbyadham/Questionary/internal/extractor"
	"github.com/createdbyadham/Questionary/internal/util"

	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

// Progress percent sub-ranges of a run: extraction owns 0-20, the dispatcher
// 20-80, persistence 80-100.
const (
	percentExtracted   = 20.0
	percentDispatchEnd = 80.0
)

// RunRequest describes a single extraction or generation invocation.
type RunRequest struct {
	Mode      domain.PipelineMode
	FilePaths []string
	SetName   string

	// TotalQuestions is the generation budget spread across files and
	// chunks. When the merged result exceeds it, the result is sampled
	// down. Zero means no budget (a small default per chunk).
	TotalQuestions int
}

// RunResult is the outcome of a finished run.
type RunResult struct {
	SetID     string
	Questions []domain.Question
}

// Pipeline wires the extractor, chunkers, dispatcher, progress sink, and
// the persistence collaborator into one extraction/generation flow.
type Pipeline struct {
	cfg        *config.Config
	dispatcher *Dispatcher
	store      domain.ProgressStore
	repo       domain.QuestionRepository
	logger     *zap.Logger
}

// NewPipeline creates a Pipeline. repo may be nil when no persistence
// collaborator is configured; results are then only returned to the caller.
func NewPipeline(model llms.Model, cfg *config.Config, store domain.ProgressStore, repo domain.QuestionRepository, logger *zap.Logger) *Pipeline {
	processor := NewBatchProcessor(model, cfg.Pipeline, logger)
	return &Pipeline{
		cfg:        cfg,
		dispatcher: NewDispatcher(processor, cfg.Pipeline, logger),
		store:      store,
		repo:       repo,
		logger:     logger,
	}
}

// RunAsync starts a run on its own goroutine and immediately returns the
// session ID for progress polling. The run has no mid-flight cancellation;
// abandoned sessions age out of the progress store instead.
func (p *Pipeline) RunAsync(req RunRequest) string {
	sessionID := util.NewULID()
	go func() {
		if _, err := p.Run(context.Background(), sessionID, req); err != nil {
			p.logger.Error("Pipeline run failed",
				zap.String("session_id", sessionID),
				zap.Error(err))
		}
	}()
	return sessionID
}

// Run executes a full pipeline invocation under the given session, writing
// progress throughout and resolving the session to a terminal complete or
// error state.
func (p *Pipeline) Run(ctx context.Context, sessionID string, req RunRequest) (*RunResult, error) {
	_ = p.store.Create(ctx, sessionID, domain.ProgressRecord{
		Status:  domain.StatusProcessing,
		Message: "Starting processing...",
	})

	result, err := p.run(ctx, sessionID, req)
	if err != nil {
		_ = p.store.Update(ctx, sessionID, domain.ProgressUpdate{
			Status:    domain.StatusPtr(domain.StatusError),
			Message:   domain.StringPtr(err.Error()),
			Error:     domain.StringPtr(err.Error()),
			Percent:   domain.Float64Ptr(100),
			Completed: domain.BoolPtr(true),
		})
		return nil, err
	}

	_ = p.store.Update(ctx, sessionID, domain.ProgressUpdate{
		Status:    domain.StatusPtr(domain.StatusComplete),
		Message:   domain.StringPtr(fmt.Sprintf("Successfully processed %d questions", len(result.Questions))),
		Percent:   domain.Float64Ptr(100),
		Completed: domain.BoolPtr(true),
	})
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, sessionID string, req RunRequest) (*RunResult, error) {
	if len(req.FilePaths) == 0 {
		return nil, domain.NewInvalidInputError("at least one input file is required")
	}

	var questions []domain.Question
	var err error
	switch req.Mode {
	case domain.ModeGenerate:
		questions, err = p.runGenerate(ctx, sessionID, req)
	default:
		questions, err = p.runExtract(ctx, sessionID, req)
	}
	if err != nil {
		return nil, err
	}

	p.progress(ctx, sessionID, "Saving questions to database...", percentDispatchEnd)

	var setID string
	if p.repo != nil {
		setID, err = p.repo.SaveQuestionSet(ctx, req.SetName, questions)
		if err != nil {
			return nil, domain.NewInternalError("failed to save question set", err)
		}
		p.logger.Info("Saved question set",
			zap.String("set_id", setID),
			zap.String("set_name", req.SetName),
			zap.Int("questions", len(questions)))
	}

	return &RunResult{SetID: setID, Questions: questions}, nil
}

// runExtract pulls existing questions from a single document. A .json input
// bypasses the LLM entirely and is validated against the same invariants.
func (p *Pipeline) runExtract(ctx context.Context, sessionID string, req RunRequest) ([]domain.Question, error) {
	path := req.FilePaths[0]

	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.NewExtractionError(fmt.Sprintf("failed to read file %s", path), err)
		}
		questions, err := ParseQuestionsJSON(data)
		if err != nil {
			return nil, err
		}
		p.progress(ctx, sessionID, fmt.Sprintf("Imported %d questions from JSON", len(questions)), percentDispatchEnd)
		return questions, nil
	}

	text, err := extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	p.progress(ctx, sessionID, "Extracted text from document, processing questions...", percentExtracted)

	units := chunker.ChunkByQuestion(text, p.cfg.Pipeline.BatchSize)
	return p.dispatch(ctx, sessionID, units, domain.ModeExtract)
}

// runGenerate creates new questions from one or more source documents,
// spreading the question budget over files and chunks.
func (p *Pipeline) runGenerate(ctx context.Context, sessionID string, req RunRequest) ([]domain.Question, error) {
	var units []domain.TextUnit
	for i, path := range req.FilePaths {
		p.progress(ctx, sessionID,
			fmt.Sprintf("Reading source %d/%d", i+1, len(req.FilePaths)),
			percentExtracted*float64(i)/float64(len(req.FilePaths)))

		var text string
		var pageOfWord []int
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			res, err := extractor.ExtractPDFWithPages(path)
			if err != nil {
				return nil, err
			}
			text, pageOfWord = res.Text, res.PageOfWord
		} else {
			var err error
			text, err = extractor.ExtractFile(path)
			if err != nil {
				return nil, err
			}
		}

		fileUnits := chunker.ChunkByWindow(text, p.cfg.Pipeline.ChunkSize, pageOfWord, filepath.Base(path))
		perFile := perFileBudget(req.TotalQuestions, len(req.FilePaths))
		assignQuestionCounts(fileUnits, perFile)
		units = append(units, fileUnits...)
	}

	// Reindex across files so the dispatcher sees one ordered sequence.
	for i := range units {
		units[i].Index = i
		units[i].Total = len(units)
	}

	p.progress(ctx, sessionID, "Extracted text from sources, generating questions...", percentExtracted)

	questions, err := p.dispatch(ctx, sessionID, units, domain.ModeGenerate)
	if err != nil {
		return nil, err
	}
	return sampleDown(questions, req.TotalQuestions), nil
}

func (p *Pipeline) dispatch(ctx context.Context, sessionID string, units []domain.TextUnit, mode domain.PipelineMode) ([]domain.Question, error) {
	onProgress := func(message string, completed, total int) {
		frac := float64(completed) / float64(total)
		p.progress(ctx, sessionID, message, percentExtracted+frac*(percentDispatchEnd-percentExtracted))
	}
	return p.dispatcher.Dispatch(ctx, units, mode, onProgress)
}

func (p *Pipeline) progress(ctx context.Context, sessionID, message string, percent float64) {
	_ = p.store.Update(ctx, sessionID, domain.ProgressUpdate{
		Message: domain.StringPtr(message),
		Percent: domain.Float64Ptr(percent),
	})
}

// perFileBudget splits the total question budget evenly across files.
func perFileBudget(total, files int) int {
	if total <= 0 || files <= 0 {
		return 0
	}
	perFile := total / files
	if perFile < 1 {
		perFile = 1
	}
	return perFile
}

// assignQuestionCounts spreads a per-file budget over its chunks: every
// chunk gets the integer share, and the remainder goes one each to the
// leading chunks. Zero budget falls back to a small default per chunk.
func assignQuestionCounts(units []domain.TextUnit, budget int) {
	if len(units) == 0 {
		return
	}
	if budget <= 0 {
		for i := range units {
			units[i].NumQuestions = 2
		}
		return
	}
	perChunk := budget / len(units)
	if perChunk < 1 {
		perChunk = 1
	}
	remaining := 0
	if budget > perChunk*len(units) {
		remaining = budget - perChunk*len(units)
	}
	for i := range units {
		units[i].NumQuestions = perChunk
		if remaining > 0 {
			units[i].NumQuestions++
			remaining--
		}
	}
}

// sampleDown randomly samples the questions to the requested total when the
// run generated more than asked for.
func sampleDown(questions []domain.Question, total int) []domain.Question {
	if total <= 0 || len(questions) <= total {
		return questions
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
	return questions[:total]
}
