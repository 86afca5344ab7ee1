package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"codeberg.org/snonux/examplegen/internal/llm"
	"codeberg.org/snonux/examplegen/internal/parser"
)

// MockGenerator mocks a text generation service with scripted answers
type MockGenerator struct {
	// Responses are returned in call order; the last one repeats
	Responses []string
	// Errors maps a 1-based call number to the failure for that call
	Errors map[int]error
	// Calls records every prompt received
	Calls []string

	mu sync.Mutex
}

// Generate mocks a generation call
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, prompt)
	call := len(m.Calls)

	if err, ok := m.Errors[call]; ok {
		return "", &llm.ServiceError{Provider: m.Name(), Err: err}
	}

	if len(m.Responses) == 0 {
		return "", nil
	}
	if call <= len(m.Responses) {
		return m.Responses[call-1], nil
	}
	return m.Responses[len(m.Responses)-1], nil
}

// Name returns the provider name
func (m *MockGenerator) Name() string {
	return "mock"
}

// CallCount returns the number of Generate calls
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// EchoGenerator answers every prompt with one well-formed row per listed word
type EchoGenerator struct {
	Calls [][]string
}

// Generate mocks a generation call
func (e *EchoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	words := ListedWords(prompt)
	e.Calls = append(e.Calls, words)

	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(Row("Ejemplo con "+w+".", "Example with "+w+".", w, "meaning of "+w))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// Name returns the provider name
func (e *EchoGenerator) Name() string {
	return "echo"
}

// ListedWords extracts the "- word" lines of a prompt
func ListedWords(prompt string) []string {
	var words []string
	for _, line := range strings.Split(prompt, "\n") {
		if word, ok := strings.CutPrefix(line, "- "); ok {
			words = append(words, word)
		}
	}
	return words
}

// MemorySink records written batches in memory
type MemorySink struct {
	Batches map[int][]parser.Row
	Rows    []parser.Row
	// FailOn makes Write fail for this batch number
	FailOn int
	Closed bool
}

// NewMemorySink creates an empty memory sink
func NewMemorySink() *MemorySink {
	return &MemorySink{Batches: make(map[int][]parser.Row)}
}

// Write mocks appending rows
func (s *MemorySink) Write(ctx context.Context, batch int, rows []parser.Row) error {
	if s.FailOn != 0 && batch == s.FailOn {
		return fmt.Errorf("disk full writing batch %d", batch)
	}
	s.Batches[batch] = append(s.Batches[batch], rows...)
	s.Rows = append(s.Rows, rows...)
	return nil
}

// Close mocks closing the sink
func (s *MemorySink) Close() error {
	s.Closed = true
	return nil
}

// Row builds a well-formed quoted response line
func Row(fields ...string) string {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
