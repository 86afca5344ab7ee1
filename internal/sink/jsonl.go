package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"codeberg.org/snonux/examplegen/internal/parser"
)

// jsonlRecord is one line of JSONL output
type jsonlRecord struct {
	RunID string `json:"run_id,omitempty"`
	Batch int    `json:"batch"`
	parser.Row
}

// JSONLSink writes one JSON object per row
type JSONLSink struct {
	w      *bufio.Writer
	enc    *json.Encoder
	closer io.Closer
	runID  string
}

// NewJSONLSink opens path for writing. "-" writes to stdout.
func NewJSONLSink(path string, appendMode bool, runID string) (*JSONLSink, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)
	if path != "-" {
		f, err := openFile(path, appendMode)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}

	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	return &JSONLSink{w: bw, enc: enc, closer: closer, runID: runID}, nil
}

// Write appends the rows and flushes
func (s *JSONLSink) Write(ctx context.Context, batch int, rows []parser.Row) error {
	for _, row := range rows {
		if err := s.enc.Encode(jsonlRecord{RunID: s.runID, Batch: batch, Row: row}); err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
	}

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to write batch %d: %w", batch, err)
	}
	return nil
}

// Close flushes pending output and closes the file
func (s *JSONLSink) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
