package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator generates text with OpenAI chat completions
type OpenAIGenerator struct {
	client *openai.Client
	config *Config
}

// NewOpenAIGenerator creates an OpenAI backed generator
func NewOpenAIGenerator(config *Config) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(config.APIKey),
		config: config,
	}
}

// Generate sends the prompt as a single user message
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model(),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: g.config.Temperature,
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ServiceError{Provider: ProviderOpenAI, Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ServiceError{Provider: ProviderOpenAI, Err: errors.New("no response from OpenAI")}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Name returns the provider name
func (g *OpenAIGenerator) Name() string {
	return ProviderOpenAI
}

func (g *OpenAIGenerator) model() string {
	if g.config.Model == "" {
		return DefaultOpenAIModel
	}
	return g.config.Model
}
