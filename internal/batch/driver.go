package batch

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultSize is the number of words per batch
const DefaultSize = 10

// State is the driver's position in its run
type State int

const (
	Idle State = iota
	Accumulating
	Dispatching
	Halted
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Dispatching:
		return "dispatching"
	case Halted:
		return "halted"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// Options configures a Driver
type Options struct {
	Size       int           // words per batch, DefaultSize if < 1
	MaxBatches int           // stop after this many dispatches, 0 for no limit
	Delay      time.Duration // pause between the end of one dispatch and the next
	Logger     *zap.Logger
}

// Summary totals a run
type Summary struct {
	Words        int // words read from the source
	SkippedBlank int
	Dispatched   int
	Succeeded    int
	Failed       int
	Rows         int
	Dropped      int
	Limited      bool // stopped by MaxBatches
	Halted       bool
	Cause        error // failure that halted the run
	Results      []Result
}

// Driver accumulates words into batches and dispatches them sequentially
type Driver struct {
	dispatcher Dispatcher
	size       int
	maxBatches int
	delay      time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
	state      State
}

// NewDriver creates a driver over dispatcher
func NewDriver(dispatcher Dispatcher, opts Options) *Driver {
	size := opts.Size
	if size < 1 {
		size = DefaultSize
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	return &Driver{
		dispatcher: dispatcher,
		size:       size,
		maxBatches: opts.MaxBatches,
		delay:      opts.Delay,
		limiter:    limiter,
		logger:     logger,
		state:      Idle,
	}
}

// State returns the current state
func (d *Driver) State() State {
	return d.state
}

// Run reads src to exhaustion, dispatching every full batch and the final
// partial one. A failed batch that trips the dispatcher halts the run;
// rows from earlier batches stay written. The returned error is non-nil only
// for fatal input, sink or cancellation errors.
func (d *Driver) Run(ctx context.Context, src Source) (*Summary, error) {
	summary := &Summary{}
	d.state = Accumulating

	words := make([]string, 0, d.size)
	for {
		word, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			d.state = Done
			return summary, err
		}

		summary.Words++
		if strings.TrimSpace(word) == "" {
			summary.SkippedBlank++
			d.logger.Warn("skipping blank word", zap.Int("record", summary.Words))
			continue
		}

		words = append(words, word)
		if len(words) < d.size {
			continue
		}

		stop, err := d.dispatch(ctx, words, summary, false)
		if err != nil {
			return summary, err
		}
		if stop {
			if summary.Limited && !d.hasMore(src) {
				summary.Limited = false
			}
			if summary.Limited {
				d.logger.Info("batch limit reached, remaining words not sent", zap.Int("limit", d.maxBatches))
			}
			return summary, nil
		}
		words = make([]string, 0, d.size)
	}

	if len(words) > 0 {
		if _, err := d.dispatch(ctx, words, summary, true); err != nil {
			return summary, err
		}
	}

	if d.state != Halted {
		d.state = Done
	}
	return summary, nil
}

// dispatch sends one batch and reports whether the run must stop
func (d *Driver) dispatch(ctx context.Context, words []string, summary *Summary, final bool) (bool, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		d.state = Done
		return true, err
	}

	d.state = Dispatching
	b := Batch{Index: summary.Dispatched + 1, Words: words}
	d.logger.Info("dispatching batch", zap.Int("batch", b.Index), zap.Int("words", len(words)))

	res, err := d.dispatcher.Dispatch(ctx, b)
	d.rest()
	summary.Dispatched++
	summary.Results = append(summary.Results, res)
	if err != nil {
		d.state = Done
		return true, err
	}

	if !res.OK() {
		summary.Failed++
		d.logger.Error("batch failed", zap.Int("batch", b.Index), zap.Error(res.Err))
		if d.dispatcher.Tripped() {
			d.logger.Error("halting, remaining batches will not be sent", zap.Int("batch", b.Index))
			summary.Halted = true
			summary.Cause = res.Err
			d.state = Halted
			return true, nil
		}
	} else {
		summary.Succeeded++
		summary.Rows += res.Rows
		summary.Dropped += res.Dropped
		d.logger.Info("processed batch",
			zap.Int("batch", b.Index),
			zap.Int("rows", res.Rows),
			zap.Int("dropped", res.Dropped))
	}

	if !final && d.maxBatches > 0 && summary.Dispatched >= d.maxBatches {
		summary.Limited = true
		d.state = Done
		return true, nil
	}

	d.state = Accumulating
	return false, nil
}

// rest starts the delay interval when a dispatch returns, so the next batch
// waits the full delay however long the call took
func (d *Driver) rest() {
	if d.delay <= 0 {
		return
	}
	d.limiter = rate.NewLimiter(rate.Every(d.delay), 1)
	d.limiter.Allow()
}

// hasMore reports whether src still holds a non-blank word. Read errors
// count as remaining input.
func (d *Driver) hasMore(src Source) bool {
	for {
		word, err := src.Next()
		if err == io.EOF {
			return false
		}
		if err != nil || strings.TrimSpace(word) != "" {
			return true
		}
	}
}
