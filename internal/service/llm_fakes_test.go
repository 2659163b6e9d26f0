package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/createdbyadham/Questionary/internal/domain"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel implements llms.Model with a scripted respond function.
type fakeModel struct {
	respond func(userPrompt string) (string, error)

	calls         atomic.Int64
	inFlight      atomic.Int64
	maxInFlight   atomic.Int64
	inFlightMutex sync.Mutex
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls.Add(1)

	f.inFlightMutex.Lock()
	cur := f.inFlight.Add(1)
	if cur > f.maxInFlight.Load() {
		f.maxInFlight.Store(cur)
	}
	f.inFlightMutex.Unlock()
	defer f.inFlight.Add(-1)

	var userPrompt string
	for _, msg := range messages {
		if msg.Role == llms.ChatMessageTypeHuman {
			for _, part := range msg.Parts {
				if text, ok := part.(llms.TextContent); ok {
					userPrompt = text.Text
				}
			}
		}
	}

	content, err := f.respond(userPrompt)
	if err != nil {
		return nil, err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: content}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return f.respond(prompt)
}

// staticModel always answers with the same content.
func staticModel(content string) *fakeModel {
	return &fakeModel{respond: func(string) (string, error) { return content, nil }}
}

// echoModel parses the extraction prompt and answers with one well-formed
// question per input segment, mimicking an LLM that extracts faithfully.
func echoModel() *fakeModel {
	return &fakeModel{respond: func(userPrompt string) (string, error) {
		_, body, found := strings.Cut(userPrompt, "Questions to process:\n")
		if !found {
			return "", nil
		}
		var questions []domain.Question
		for _, line := range strings.Split(body, "\n") {
			if line = strings.TrimSpace(line); line == "" {
				continue
			}
			questions = append(questions, domain.Question{
				Text:          line,
				Options:       []string{"alpha", "beta", "gamma", "delta"},
				CorrectAnswer: "alpha",
			})
		}
		data, err := json.Marshal(map[string][]domain.Question{"questions": questions})
		return string(data), err
	}}
}

var _ llms.Model = (*fakeModel)(nil)
