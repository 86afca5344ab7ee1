package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiGenerator generates text with the Google Gemini API
type GeminiGenerator struct {
	client *genai.Client
	config *Config
}

// NewGeminiGenerator creates a Gemini backed generator
func NewGeminiGenerator(ctx context.Context, config *Config) (*GeminiGenerator, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiGenerator{client: client, config: config}, nil
}

// Generate sends the prompt in a single GenerateContent call
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if g.config.Temperature > 0 {
		cfg = &genai.GenerateContentConfig{Temperature: genai.Ptr(g.config.Temperature)}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model(), genai.Text(prompt), cfg)
	if err != nil {
		return "", &ServiceError{Provider: ProviderGemini, Err: err}
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", &ServiceError{Provider: ProviderGemini, Err: errors.New("empty response")}
	}

	return text, nil
}

// Name returns the provider name
func (g *GeminiGenerator) Name() string {
	return ProviderGemini
}

func (g *GeminiGenerator) model() string {
	if g.config.Model == "" {
		return DefaultGeminiModel
	}
	return g.config.Model
}
