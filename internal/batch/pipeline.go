package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/examplegen/internal/llm"
	"codeberg.org/snonux/examplegen/internal/parser"
	"codeberg.org/snonux/examplegen/internal/prompt"
	"codeberg.org/snonux/examplegen/internal/sink"
)

// Batch is an ordered group of words dispatched together
type Batch struct {
	Index int // 1-based
	Words []string
}

// Result is the outcome of dispatching one batch
type Result struct {
	Batch   int
	Words   int
	Rows    int   // rows written to the sink
	Dropped int   // response lines rejected by the parser
	Err     error // *llm.ServiceError when the generation call failed
}

// OK reports whether the batch reached the sink
func (r Result) OK() bool {
	return r.Err == nil
}

// Dispatcher processes one batch
type Dispatcher interface {
	Dispatch(ctx context.Context, b Batch) (Result, error)

	// Tripped reports whether failures reached the configured limit
	Tripped() bool
}

// Pipeline runs PromptBuilder, Generator, Parser and Sink for a batch
type Pipeline struct {
	builder   *prompt.Builder
	generator llm.Generator
	parser    *parser.Parser
	sink      sink.Sink
	breaker   *gobreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewPipeline wires the per-batch stages. The breaker trips after
// maxFailures consecutive generation failures; values below 1 mean 1.
func NewPipeline(builder *prompt.Builder, generator llm.Generator, p *parser.Parser, s sink.Sink, maxFailures int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFailures < 1 {
		maxFailures = 1
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    generator.Name(),
		Timeout: 24 * time.Hour,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Debug("generator breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Pipeline{
		builder:   builder,
		generator: generator,
		parser:    p,
		sink:      s,
		breaker:   breaker,
		logger:    logger,
	}
}

// Dispatch sends one batch through all stages. A failed generation call is
// reported in Result.Err; the returned error is reserved for fatal problems
// such as a failing sink or a cancelled context.
func (p *Pipeline) Dispatch(ctx context.Context, b Batch) (Result, error) {
	res := Result{Batch: b.Index, Words: len(b.Words)}

	text, err := p.builder.Build(b.Words)
	if err != nil {
		return res, fmt.Errorf("batch %d: %w", b.Index, err)
	}

	out, err := p.breaker.Execute(func() (interface{}, error) {
		return p.generator.Generate(ctx, text)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		var se *llm.ServiceError
		if !errors.As(err, &se) {
			se = &llm.ServiceError{Provider: p.generator.Name(), Err: err}
		}
		res.Err = se
		return res, nil
	}

	parsed := p.parser.Parse(out.(string))
	if err := p.sink.Write(ctx, b.Index, parsed.Rows); err != nil {
		return res, err
	}

	res.Rows = len(parsed.Rows)
	res.Dropped = len(parsed.Rejected)
	return res, nil
}

// Tripped reports whether the breaker opened
func (p *Pipeline) Tripped() bool {
	return p.breaker.State() == gobreaker.StateOpen
}
