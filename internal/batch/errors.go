package batch

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when the input header lacks the word column
	ErrMissingColumn = errors.New("word column not found in header")

	// ErrMissingField is returned when a record is too short to hold the word column
	ErrMissingField = errors.New("record has no value for word column")

	// ErrHalted is returned by callers when a run stopped on a failed batch
	ErrHalted = errors.New("processing halted after failed batch")
)

// InputError reports a problem with the input table. It is always fatal.
type InputError struct {
	Line   int
	Column string
	Err    error
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("input line %d: column %q: %v", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("input: column %q: %v", e.Column, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}
