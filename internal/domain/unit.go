package domain

import "context"

// PipelineMode selects the chunking strategy and prompt template.
type PipelineMode string

const (
	// ModeExtract pulls existing questions out of the source text.
	ModeExtract PipelineMode = "extract"
	// ModeGenerate writes new questions from source material.
	ModeGenerate PipelineMode = "generate"
)

// TextUnit is one bounded slice of source text submitted as a single LLM
// request. Units are immutable once created; the full ordered sequence is
// fixed before dispatch.
type TextUnit struct {
	Index int
	Total int
	Text  string

	// Generation-only metadata.
	SourceLabel  string
	PageRange    string
	NumQuestions int
}

// QuestionRepository is the persistence collaborator. The pipeline hands it
// the flat validated question list; everything behind it (schema, ownership)
// is outside the pipeline's concern.
type QuestionRepository interface {
	// SaveQuestionSet persists the questions under a named set and returns
	// the new set's ID.
	SaveQuestionSet(ctx context.Context, name string, questions []Question) (string, error)
}
