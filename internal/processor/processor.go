package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"codeberg.org/snonux/examplegen/internal"
	"codeberg.org/snonux/examplegen/internal/archive"
	"codeberg.org/snonux/examplegen/internal/batch"
	"codeberg.org/snonux/examplegen/internal/cli"
	"codeberg.org/snonux/examplegen/internal/llm"
	"codeberg.org/snonux/examplegen/internal/parser"
	"codeberg.org/snonux/examplegen/internal/prompt"
	"codeberg.org/snonux/examplegen/internal/sink"
)

// GeneratorFactory creates the model client for a run
type GeneratorFactory func(ctx context.Context, config *llm.Config) (llm.Generator, error)

// Processor handles one examplegen run
type Processor struct {
	flags        *cli.Flags
	logger       *zap.Logger
	runID        string
	out          io.Writer
	newGenerator GeneratorFactory
}

// NewProcessor creates a new processor
func NewProcessor(flags *cli.Flags, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := internal.NewRunID()
	return &Processor{
		flags:        flags,
		logger:       logger.With(zap.String("run", runID)),
		runID:        runID,
		out:          os.Stdout,
		newGenerator: llm.NewGenerator,
	}
}

// SetGeneratorFactory replaces the model client constructor
func (p *Processor) SetGeneratorFactory(f GeneratorFactory) {
	p.newGenerator = f
}

// SetOutput redirects the summary and dry-run prompts
func (p *Processor) SetOutput(w io.Writer) {
	p.out = w
}

// LLMConfig returns the model client configuration with the API key
// resolved from environment or config file
func (p *Processor) LLMConfig() *llm.Config {
	model := p.flags.Model
	if model == "" {
		model = llm.DefaultModel(p.flags.Provider)
	}
	return &llm.Config{
		Provider:    p.flags.Provider,
		Model:       model,
		APIKey:      cli.GetAPIKey(p.flags.Provider),
		Temperature: p.flags.Temperature,
	}
}

// ListModels prints the models available for the configured provider
func (p *Processor) ListModels(ctx context.Context) error {
	return llm.NewLister(p.LLMConfig()).ListAvailableModels(ctx)
}

// Run processes the whole input. A run that halts on a failed batch returns
// the summary together with an error wrapping batch.ErrHalted.
func (p *Processor) Run(ctx context.Context) (summary *batch.Summary, err error) {
	builder, err := prompt.NewBuilder(p.flags.Language, prompt.Variant(p.flags.PromptVariant))
	if err != nil {
		return nil, err
	}

	generator, err := p.generator(ctx)
	if err != nil {
		return nil, err
	}

	src, err := batch.OpenSource(p.flags.InputFile, p.flags.Column)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	out, err := p.openSink()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
	}()

	p.logger.Info("starting run",
		zap.String("input", p.flags.InputFile),
		zap.String("output", p.flags.OutputFile),
		zap.String("provider", generator.Name()),
		zap.Int("batch_size", p.flags.BatchSize))

	pipeline := batch.NewPipeline(builder, generator, parser.New(p.logger), out, p.flags.MaxFailures, p.logger)
	driver := batch.NewDriver(pipeline, batch.Options{
		Size:       p.flags.BatchSize,
		MaxBatches: p.flags.MaxBatches,
		Delay:      p.flags.Delay,
		Logger:     p.logger,
	})

	summary, err = driver.Run(ctx, src)
	p.printSummary(summary)
	if err != nil {
		return summary, err
	}

	if summary.Halted {
		return summary, fmt.Errorf("%w: %v", batch.ErrHalted, summary.Cause)
	}
	return summary, nil
}

func (p *Processor) generator(ctx context.Context) (llm.Generator, error) {
	if p.flags.DryRun {
		return &dryRunGenerator{out: p.out}, nil
	}

	config := p.LLMConfig()
	gen, err := p.newGenerator(ctx, config)
	if errors.Is(err, llm.ErrMissingAPIKey) {
		return nil, fmt.Errorf("%w: set %s or model.api_key in .examplegen.yaml", err, llm.APIKeyEnv(config.Provider))
	}
	return gen, err
}

func (p *Processor) openSink() (sink.Sink, error) {
	if p.flags.DryRun {
		return sink.Discard(), nil
	}

	if p.flags.Archive && p.flags.OutputFile != "-" {
		archived, err := archive.ArchiveOutput(p.flags.OutputFile)
		switch {
		case errors.Is(err, archive.ErrNothingToArchive):
			p.logger.Debug("no previous output to archive", zap.String("output", p.flags.OutputFile))
		case err != nil:
			return nil, err
		default:
			p.logger.Info("archived previous output", zap.String("path", archived))
		}
	}

	return sink.Open(&sink.Config{
		Path:   p.flags.OutputFile,
		Format: p.flags.Format,
		Append: p.flags.Append,
		RunID:  p.runID,
	})
}

// printSummary prints the run totals
func (p *Processor) printSummary(s *batch.Summary) {
	if s == nil {
		return
	}

	w := p.out
	if p.flags.OutputFile == "-" && !p.flags.DryRun {
		w = os.Stderr
	}

	fmt.Fprintf(w, "\n=== Batch Processing Summary ===\n")
	fmt.Fprintf(w, "Words read: %d\n", s.Words)
	if s.SkippedBlank > 0 {
		fmt.Fprintf(w, "Skipped (blank): %d\n", s.SkippedBlank)
	}
	fmt.Fprintf(w, "Batches: %d dispatched, %d succeeded\n", s.Dispatched, s.Succeeded)
	fmt.Fprintf(w, "Rows written: %d\n", s.Rows)
	if s.Dropped > 0 {
		fmt.Fprintf(w, "Rows dropped (malformed): %d\n", s.Dropped)
	}
	if s.Failed > 0 {
		fmt.Fprintf(w, "Failed batches: %d\n", s.Failed)
	}
	if s.Limited {
		fmt.Fprintf(w, "Stopped at batch limit: %d\n", p.flags.MaxBatches)
	}
	if s.Halted {
		fmt.Fprintf(w, "Halted: %v\n", s.Cause)
	}
	fmt.Fprintf(w, "================================\n")
}

// dryRunGenerator prints prompts instead of sending them
type dryRunGenerator struct {
	out   io.Writer
	calls int
}

func (d *dryRunGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	d.calls++
	fmt.Fprintf(d.out, "--- prompt %d ---\n%s", d.calls, prompt)
	return "", nil
}

func (d *dryRunGenerator) Name() string {
	return "dry-run"
}
