package sink

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"codeberg.org/snonux/examplegen/internal/parser"
)

// CSVSink writes headerless rows with every field quoted
type CSVSink struct {
	w      *bufio.Writer
	closer io.Closer
}

// NewCSVSink opens path for writing. "-" writes to stdout.
func NewCSVSink(path string, appendMode bool) (*CSVSink, error) {
	if path == "-" {
		return NewCSVWriter(os.Stdout, nil), nil
	}

	f, err := openFile(path, appendMode)
	if err != nil {
		return nil, err
	}
	return NewCSVWriter(f, f), nil
}

// NewCSVWriter wraps an arbitrary writer. closer may be nil.
func NewCSVWriter(w io.Writer, closer io.Closer) *CSVSink {
	return &CSVSink{w: bufio.NewWriter(w), closer: closer}
}

// Write appends the rows and flushes
func (s *CSVSink) Write(ctx context.Context, batch int, rows []parser.Row) error {
	for _, row := range rows {
		for i, field := range row.Fields() {
			if i > 0 {
				s.w.WriteByte(',')
			}
			s.w.WriteByte('"')
			s.w.WriteString(strings.ReplaceAll(field, `"`, `""`))
			s.w.WriteByte('"')
		}
		s.w.WriteString("\n")
	}

	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to write batch %d: %w", batch, err)
	}
	return nil
}

// Close flushes pending output and closes the file
func (s *CSVSink) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func openFile(path string, appendMode bool) (*os.File, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if appendMode {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	return f, nil
}
