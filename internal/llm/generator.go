package llm

import (
	"context"
	"errors"
	"fmt"
)

// Supported providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default models per provider
const (
	DefaultGeminiModel = "gemini-1.5-pro"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// ErrMissingAPIKey is returned when a generator is created without credentials
var ErrMissingAPIKey = errors.New("API key not found")

// Generator sends a prompt to a text generation service and returns the raw
// response text. Implementations perform exactly one round trip per call.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name
	Name() string
}

// Config holds the settings needed to construct a Generator
type Config struct {
	Provider    string  // "gemini" or "openai"
	Model       string  // provider model name, empty for the provider default
	APIKey      string
	Temperature float32 // 0 leaves the provider default
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Model:    DefaultGeminiModel,
	}
}

// ServiceError wraps any failure of the remote generation call
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewGenerator creates the generator for the configured provider
func NewGenerator(ctx context.Context, config *Config) (Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", config.Provider, ErrMissingAPIKey)
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiGenerator(ctx, config)
	case ProviderOpenAI:
		return NewOpenAIGenerator(config), nil
	default:
		return nil, fmt.Errorf("unknown model provider: %s", config.Provider)
	}
}

// DefaultModel returns the default model for a provider
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

// APIKeyEnv returns the environment variable holding the provider's key
func APIKeyEnv(provider string) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}
