package service

import (
	"fmt"

	"github.com/createdbyadham/Questionary/internal/domain"
)

const extractionSystemPrompt = `You are an expert at extracting multiple choice questions from text and formatting them as JSON. For each question:
1. Remove question numbers
2. Remove option letters (A,B,C,D)
3. Ensure correct_answer matches one of the options exactly
4. Handle both multiple choice (4 options) and True/False questions
5. Output only valid JSON in the specified format`

const generationSystemPrompt = `You are an expert at generating multiple choice questions from text and formatting them as JSON. For each question:
1. Create clear, concise questions that test understanding
2. Generate 4 distinct options for each question
3. Ensure correct_answer matches one of the options exactly
4. Include source and page information in the output
5. Output only valid JSON in the specified format`

// buildPrompts returns the system and user instructions for one unit,
// depending on the pipeline mode.
func buildPrompts(unit domain.TextUnit, mode domain.PipelineMode) (system, user string) {
	if mode == domain.ModeGenerate {
		return generationSystemPrompt, fmt.Sprintf(`Generate %d multiple choice questions from this text:

%s

Output in this exact JSON format:
{
    "questions": [
        {
            "question": "question text here",
            "options": [
                "option 1 text",
                "option 2 text",
                "option 3 text",
                "option 4 text"
            ],
            "correct_answer": "correct option text here",
            "source_lecture": "%s",
            "page_range": "%s"
        }
    ]
}`, unit.NumQuestions, unit.Text, unit.SourceLabel, unit.PageRange)
	}

	return extractionSystemPrompt, fmt.Sprintf(`Extract these multiple choice questions into JSON format with this exact structure:
{
    "questions": [
        {
            "question": "question text here",
            "options": [
                "option 1 text",
                "option 2 text",
                "option 3 text",
                "option 4 text"
            ],
            "correct_answer": "correct option text here"
        }
    ]
}

Questions to process:
%s`, unit.Text)
}
