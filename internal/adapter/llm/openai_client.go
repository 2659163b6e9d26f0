package llm

import (
	"fmt"

	"github.com/createdbyadham/Questionary/internal/config"

	"github.com/tmc/langchaingo/llms"
	openaiLLM "github.com/tmc/langchaingo/llms/openai"
)

// NewOpenAIModel creates a LangchainGo model against an OpenAI-compatible
// completion endpoint. The endpoint override lets the pipeline run against
// proxy deployments (e.g. Azure-hosted model gateways) without code changes.
func NewOpenAIModel(cfg config.LLMConfig) (llms.Model, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("LLM API key cannot be empty")
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}

	opts := []openaiLLM.Option{
		openaiLLM.WithToken(cfg.APIKey),
		openaiLLM.WithModel(model),
	}
	if cfg.Endpoint != "" {
		opts = append(opts, openaiLLM.WithBaseURL(cfg.Endpoint))
	}

	llmClient, err := openaiLLM.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LangchainGo OpenAI client: %w", err)
	}
	return llmClient, nil
}
