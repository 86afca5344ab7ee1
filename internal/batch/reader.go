package batch

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultColumn is the header name of the word column
const DefaultColumn = "foreign_word"

// Source yields input words in order. Next returns io.EOF when exhausted.
type Source interface {
	Next() (string, error)
	Close() error
}

// OpenSource opens the input at path. "-" reads CSV from stdin, a .txt file
// is read as one word per line, anything else as a CSV table with a header.
func OpenSource(path, column string) (Source, error) {
	if path == "-" {
		return NewCSVSource(os.Stdin, column, nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return NewTextSource(f, f), nil
	}

	src, err := NewCSVSource(f, column, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return src, nil
}

// CSVSource reads the word column of a delimited table with a header row
type CSVSource struct {
	r      *csv.Reader
	column string
	index  int
	closer io.Closer
}

// NewCSVSource reads the header and locates column. closer may be nil.
func NewCSVSource(r io.Reader, column string, closer io.Closer) (*CSVSource, error) {
	if column == "" {
		column = DefaultColumn
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &InputError{Line: 1, Column: column, Err: errors.New("input has no header row")}
	}
	if err != nil {
		return nil, &InputError{Line: 1, Column: column, Err: err}
	}

	index := -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if name == column {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, &InputError{Line: 1, Column: column, Err: ErrMissingColumn}
	}

	return &CSVSource{r: cr, column: column, index: index, closer: closer}, nil
}

// Next returns the word of the next record
func (s *CSVSource) Next() (string, error) {
	record, err := s.r.Read()
	if err == io.EOF {
		return "", io.EOF
	}
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return "", &InputError{Line: pe.Line, Column: s.column, Err: pe.Err}
		}
		return "", &InputError{Column: s.column, Err: err}
	}

	if s.index >= len(record) {
		line, _ := s.r.FieldPos(0)
		return "", &InputError{Line: line, Column: s.column, Err: ErrMissingField}
	}

	return record[s.index], nil
}

// Close closes the underlying file
func (s *CSVSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// TextSource reads one word per line. Lines of the form "word = translation"
// yield the word; empty lines are ignored.
type TextSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewTextSource wraps r. closer may be nil.
func NewTextSource(r io.Reader, closer io.Closer) *TextSource {
	return &TextSource{scanner: bufio.NewScanner(r), closer: closer}
}

// Next returns the next non-empty line's word
func (s *TextSource) Next() (string, error) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		if word, _, found := strings.Cut(line, "="); found {
			return strings.TrimSpace(word), nil
		}
		return line, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return "", io.EOF
}

// Close closes the underlying file
func (s *TextSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// SliceSource yields words from memory
type SliceSource struct {
	words []string
	pos   int
}

// NewSliceSource creates a source over words
func NewSliceSource(words ...string) *SliceSource {
	return &SliceSource{words: words}
}

// Next returns the next word
func (s *SliceSource) Next() (string, error) {
	if s.pos >= len(s.words) {
		return "", io.EOF
	}
	word := s.words[s.pos]
	s.pos++
	return word, nil
}

// Close does nothing
func (s *SliceSource) Close() error {
	return nil
}
