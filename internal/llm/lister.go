package llm

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// modelSource returns the model identifiers visible to an API key
type modelSource func(ctx context.Context) ([]string, error)

// Lister handles listing the text generation models available to a key
type Lister struct {
	config *Config
	out    io.Writer
	source modelSource
}

// NewLister creates a new model lister for the configured provider
func NewLister(config *Config) *Lister {
	l := &Lister{config: config, out: os.Stdout}
	switch config.Provider {
	case ProviderOpenAI:
		l.source = l.openAIModels
	default:
		l.source = l.geminiModels
	}
	return l
}

// ListAvailableModels prints the chat capable models sorted by name
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	if l.config.APIKey == "" {
		return fmt.Errorf("%s: %w. Set %s or model.api_key in .examplegen.yaml",
			l.config.Provider, ErrMissingAPIKey, APIKeyEnv(l.config.Provider))
	}

	ids, err := l.source(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	var chat []string
	for _, id := range ids {
		if isTextModel(id) {
			chat = append(chat, id)
		}
	}
	sort.Strings(chat)

	fmt.Fprintf(l.out, "Available %s text generation models:\n", l.config.Provider)
	if len(chat) == 0 {
		fmt.Fprintln(l.out, "  No text generation models found")
		return nil
	}
	for _, id := range chat {
		marker := ""
		if id == l.config.Model || strings.TrimPrefix(id, "models/") == l.config.Model {
			marker = " (selected)"
		}
		fmt.Fprintf(l.out, "  %s%s\n", id, marker)
	}

	return nil
}

func (l *Lister) openAIModels(ctx context.Context) ([]string, error) {
	client := openai.NewClient(l.config.APIKey)
	models, err := client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(models.Models))
	for _, m := range models.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (l *Lister) geminiModels(ctx context.Context) ([]string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  l.config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	var ids []string
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, m.Name)
	}
	return ids, nil
}

// isTextModel filters out embedding, audio and image models
func isTextModel(id string) bool {
	for _, skip := range []string{"embedding", "tts", "audio", "dall-e", "imagen", "whisper", "moderation"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	return strings.Contains(id, "gpt") || strings.Contains(id, "gemini") || strings.Contains(id, "chat")
}
