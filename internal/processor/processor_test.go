package processor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"codeberg.org/snonux/examplegen/internal/batch"
	"codeberg.org/snonux/examplegen/internal/cli"
	"codeberg.org/snonux/examplegen/internal/llm"
	"codeberg.org/snonux/examplegen/internal/parser"
	"codeberg.org/snonux/examplegen/internal/testutil"
)

func newTestProcessor(t *testing.T, gen llm.Generator, words ...string) (*Processor, *cli.Flags, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	flags := cli.NewFlags()
	flags.InputFile = testutil.CreateInputCSV(t, dir, "foreign_word", words...)
	flags.OutputFile = filepath.Join(dir, "output.csv")

	var out bytes.Buffer
	p := NewProcessor(flags, nil)
	p.SetOutput(&out)
	p.SetGeneratorFactory(func(ctx context.Context, config *llm.Config) (llm.Generator, error) {
		return gen, nil
	})
	return p, flags, &out
}

func readOutputRows(t *testing.T, path string) []parser.Row {
	t.Helper()

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	return parser.New(nil).Parse(string(content)).Rows
}

func TestRun(t *testing.T) {
	gen := &testutil.EchoGenerator{}
	p, flags, out := newTestProcessor(t, gen, "casa", "perro", "comer")

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Dispatched != 1 || summary.Rows != 3 {
		t.Errorf("Unexpected summary: %+v", summary)
	}

	rows := readOutputRows(t, flags.OutputFile)
	if len(rows) != 3 || rows[0].Word != "casa" || rows[2].Word != "comer" {
		t.Errorf("Unexpected output rows: %+v", rows)
	}

	testutil.AssertFileContains(t, flags.OutputFile, `"Ejemplo con casa.","Example with casa.","casa","meaning of casa"`)

	if !strings.Contains(out.String(), "=== Batch Processing Summary ===") ||
		!strings.Contains(out.String(), "Rows written: 3") {
		t.Errorf("Summary not printed:\n%s", out.String())
	}
}

func TestRun_SpanishWordColumn(t *testing.T) {
	dir := t.TempDir()
	gen := &testutil.EchoGenerator{}
	p, flags, _ := newTestProcessor(t, gen)
	flags.InputFile = testutil.CreateInputCSV(t, dir, "spanish_word", "mesa")
	flags.Column = "spanish_word"

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(gen.Calls) != 1 || gen.Calls[0][0] != "mesa" {
		t.Errorf("Unexpected calls: %v", gen.Calls)
	}
}

func TestRun_MissingColumn(t *testing.T) {
	gen := &testutil.EchoGenerator{}
	p, flags, _ := newTestProcessor(t, gen, "casa")
	flags.Column = "spanish_word"

	_, err := p.Run(context.Background())
	var ie *batch.InputError
	if !errors.As(err, &ie) {
		t.Fatalf("Expected *batch.InputError, got %v", err)
	}
	if len(gen.Calls) != 0 {
		t.Error("Model was called despite input error")
	}
}

func TestRun_HaltPreservesEarlierBatches(t *testing.T) {
	gen := &testutil.MockGenerator{
		Responses: []string{testutil.Row("Uno.", "One.", "w1", "one")},
		Errors:    map[int]error{2: errors.New("quota exceeded")},
	}
	p, flags, out := newTestProcessor(t, gen, "w1", "w2", "w3", "w4", "w5", "w6")
	flags.BatchSize = 2

	summary, err := p.Run(context.Background())
	if !errors.Is(err, batch.ErrHalted) {
		t.Fatalf("Expected ErrHalted, got %v", err)
	}
	if !summary.Halted || gen.CallCount() != 2 {
		t.Errorf("Expected halt after 2 calls, got %+v with %d calls", summary, gen.CallCount())
	}

	rows := readOutputRows(t, flags.OutputFile)
	if len(rows) != 1 || rows[0].Word != "w1" {
		t.Errorf("Expected only batch 1 rows in output, got %+v", rows)
	}
	if !strings.Contains(out.String(), "Halted:") {
		t.Errorf("Summary does not report halt:\n%s", out.String())
	}
}

func TestRun_ContinueWithMaxFailures(t *testing.T) {
	gen := &testutil.MockGenerator{
		Responses: []string{testutil.Row("a", "b", "c", "d")},
		Errors:    map[int]error{2: errors.New("503 unavailable")},
	}
	p, flags, _ := newTestProcessor(t, gen, "w1", "w2", "w3")
	flags.BatchSize = 1
	flags.MaxFailures = 2

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Failed != 1 || summary.Succeeded != 2 || gen.CallCount() != 3 {
		t.Errorf("Unexpected summary: %+v", summary)
	}
}

func TestRun_DryRun(t *testing.T) {
	called := false
	p, flags, out := newTestProcessor(t, nil, "casa", "perro")
	p.SetGeneratorFactory(func(ctx context.Context, config *llm.Config) (llm.Generator, error) {
		called = true
		return nil, errors.New("should not be called")
	})
	flags.DryRun = true

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if called {
		t.Error("Generator factory used in dry run")
	}
	if !strings.Contains(out.String(), "--- prompt 1 ---") || !strings.Contains(out.String(), "- perro\n") {
		t.Errorf("Prompt not printed:\n%s", out.String())
	}
	testutil.AssertFileNotExists(t, flags.OutputFile)
}

func TestRun_Archive(t *testing.T) {
	gen := &testutil.EchoGenerator{}
	p, flags, _ := newTestProcessor(t, gen, "casa")
	flags.Archive = true

	testutil.CreateTestFile(t, flags.OutputFile, []byte(`"old","row","x","y"`+"\n"))

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(flags.OutputFile), "archive"))
	if err != nil || len(entries) != 1 {
		t.Fatalf("Expected one archived output, got %v (%v)", entries, err)
	}

	rows := readOutputRows(t, flags.OutputFile)
	if len(rows) != 1 || rows[0].Word != "casa" {
		t.Errorf("Unexpected output rows: %+v", rows)
	}
}

func TestRun_SQLiteOutput(t *testing.T) {
	gen := &testutil.EchoGenerator{}
	p, flags, _ := newTestProcessor(t, gen, "casa", "perro")
	flags.OutputFile = filepath.Join(t.TempDir(), "examples.db")

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Rows != 2 {
		t.Errorf("Expected 2 rows, got %d", summary.Rows)
	}
	testutil.AssertFileExists(t, flags.OutputFile)
}

func TestRun_UnknownPromptVariant(t *testing.T) {
	p, flags, _ := newTestProcessor(t, &testutil.EchoGenerator{}, "casa")
	flags.PromptVariant = "limerick"

	if _, err := p.Run(context.Background()); err == nil {
		t.Error("Expected error for unknown prompt variant")
	}
}

func TestRun_MissingAPIKey(t *testing.T) {
	viper.Reset()
	t.Setenv("GEMINI_API_KEY", "")

	p, _, _ := newTestProcessor(t, nil, "casa")
	p.SetGeneratorFactory(llm.NewGenerator)

	_, err := p.Run(context.Background())
	if !errors.Is(err, llm.ErrMissingAPIKey) {
		t.Fatalf("Expected ErrMissingAPIKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("Error does not name the environment variable: %v", err)
	}
}

func TestLLMConfig(t *testing.T) {
	viper.Reset()
	t.Setenv("OPENAI_API_KEY", "sk-test")

	flags := cli.NewFlags()
	flags.Provider = llm.ProviderOpenAI
	flags.Temperature = 0.4

	config := NewProcessor(flags, nil).LLMConfig()
	if config.Model != llm.DefaultOpenAIModel || config.APIKey != "sk-test" || config.Temperature != 0.4 {
		t.Errorf("Unexpected config: %+v", config)
	}
}

func TestRun_SummaryOnStdout(t *testing.T) {
	dir := t.TempDir()
	flags := cli.NewFlags()
	flags.InputFile = testutil.CreateInputCSV(t, dir, "foreign_word", "casa", "perro")
	flags.OutputFile = filepath.Join(dir, "output.csv")
	flags.DryRun = true

	var runErr error
	output := testutil.CaptureOutput(t, func() {
		_, runErr = NewProcessor(flags, nil).Run(context.Background())
	})
	if runErr != nil {
		t.Fatalf("Run failed: %v", runErr)
	}

	for _, want := range []string{"--- prompt 1 ---", "- casa\n", "=== Batch Processing Summary ===", "Words read: 2"} {
		if !strings.Contains(output, want) {
			t.Errorf("Stdout missing %q:\n%s", want, output)
		}
	}
}
