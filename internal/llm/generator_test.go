package llm

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestNewGenerator_NoAPIKey(t *testing.T) {
	for _, provider := range []string{ProviderGemini, ProviderOpenAI} {
		t.Run(provider, func(t *testing.T) {
			_, err := NewGenerator(context.Background(), &Config{Provider: provider})
			if !errors.Is(err, ErrMissingAPIKey) {
				t.Errorf("Expected ErrMissingAPIKey, got %v", err)
			}
		})
	}
}

func TestNewGenerator_UnknownProvider(t *testing.T) {
	_, err := NewGenerator(context.Background(), &Config{Provider: "parrot", APIKey: "k"})
	if err == nil || !strings.Contains(err.Error(), "unknown model provider") {
		t.Errorf("Expected unknown provider error, got %v", err)
	}
}

func TestNewGenerator_OpenAI(t *testing.T) {
	gen, err := NewGenerator(context.Background(), &Config{Provider: ProviderOpenAI, APIKey: "test-api-key"})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	og, ok := gen.(*OpenAIGenerator)
	if !ok {
		t.Fatalf("Expected *OpenAIGenerator, got %T", gen)
	}
	if og.client == nil {
		t.Error("OpenAI client not initialized")
	}
	if og.Name() != ProviderOpenAI {
		t.Errorf("Name() = %s, want %s", og.Name(), ProviderOpenAI)
	}
	if og.model() != DefaultOpenAIModel {
		t.Errorf("model() = %s, want %s", og.model(), DefaultOpenAIModel)
	}
}

func TestNewGenerator_Gemini(t *testing.T) {
	gen, err := NewGenerator(context.Background(), &Config{Provider: ProviderGemini, APIKey: "test-api-key", Model: "gemini-2.0-flash"})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	gg, ok := gen.(*GeminiGenerator)
	if !ok {
		t.Fatalf("Expected *GeminiGenerator, got %T", gen)
	}
	if gg.model() != "gemini-2.0-flash" {
		t.Errorf("model() = %s, want gemini-2.0-flash", gg.model())
	}
}

func TestServiceError(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := error(&ServiceError{Provider: ProviderGemini, Err: cause})

	if !errors.Is(err, cause) {
		t.Error("ServiceError does not unwrap to its cause")
	}

	var se *ServiceError
	if !errors.As(err, &se) || se.Provider != ProviderGemini {
		t.Errorf("errors.As failed for %v", err)
	}

	if err.Error() != "gemini generation failed: quota exceeded" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		env      string
	}{
		{ProviderGemini, DefaultGeminiModel, "GEMINI_API_KEY"},
		{ProviderOpenAI, DefaultOpenAIModel, "OPENAI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			if got := DefaultModel(tt.provider); got != tt.model {
				t.Errorf("DefaultModel() = %s, want %s", got, tt.model)
			}
			if got := APIKeyEnv(tt.provider); got != tt.env {
				t.Errorf("APIKeyEnv() = %s, want %s", got, tt.env)
			}
		})
	}
}

func TestGenerate_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: GEMINI_API_KEY not set")
	}

	gen, err := NewGenerator(context.Background(), &Config{Provider: ProviderGemini, APIKey: apiKey})
	if err != nil {
		t.Fatalf("NewGenerator failed: %v", err)
	}

	text, err := gen.Generate(context.Background(), `Reply with exactly: "a","b","c","d"`)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if text == "" {
		t.Error("Got empty response")
	}

	t.Logf("Response: %s", text)
}
