package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// Columns is the arity of an example row
const Columns = 4

var errUnterminatedQuote = errors.New("unterminated quoted field")

// Row is one example sentence produced by the model
type Row struct {
	Sentence    string `json:"sentence"`
	Translation string `json:"translation"`
	Word        string `json:"word"`
	Definition  string `json:"definition"`
}

// Fields returns the row in output column order
func (r Row) Fields() []string {
	return []string{r.Sentence, r.Translation, r.Word, r.Definition}
}

// Rejected describes a response line that was dropped
type Rejected struct {
	Line   int    // 1-based line number in the response
	Text   string // raw line
	Fields int    // parsed field count, -1 if the line could not be parsed
	Reason string
}

// Parsed is the outcome of parsing one model response
type Parsed struct {
	Rows     []Row
	Rejected []Rejected
}

// Parser parses model responses into rows
type Parser struct {
	logger *zap.Logger
}

// New creates a parser. A nil logger disables diagnostics.
func New(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse splits text into lines and parses each non-blank line as one quoted,
// comma-delimited record. Records with a field count other than Columns are
// rejected with a warning; Parse never fails.
func (p *Parser) Parse(text string) Parsed {
	var out Parsed

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields, err := parseLine(line)
		if err != nil || len(fields) != Columns {
			if lenient, lerr := splitLenient(line); lerr == nil && len(lenient) == Columns {
				fields, err = lenient, nil
			}
		}
		if err != nil {
			out.Rejected = append(out.Rejected, p.reject(i+1, line, -1, err.Error()))
			continue
		}
		if len(fields) == 0 {
			continue
		}
		if len(fields) != Columns {
			reason := fmt.Sprintf("expected %d fields, got %d", Columns, len(fields))
			out.Rejected = append(out.Rejected, p.reject(i+1, line, len(fields), reason))
			continue
		}

		out.Rows = append(out.Rows, Row{
			Sentence:    fields[0],
			Translation: fields[1],
			Word:        fields[2],
			Definition:  fields[3],
		})
	}

	return out
}

func (p *Parser) reject(lineNo int, line string, fields int, reason string) Rejected {
	p.logger.Warn("skipping malformed response row",
		zap.Int("line", lineNo),
		zap.String("row", line),
		zap.Int("fields", fields),
		zap.Int("expected", Columns),
		zap.String("reason", reason),
	)
	return Rejected{Line: lineNo, Text: line, Fields: fields, Reason: reason}
}

// parseLine reads a single record from one response line. Each line is read
// on its own so a broken quote cannot swallow the lines after it.
func parseLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.Comma = ','
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	record, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// splitLenient reads one record the way a non-strict reader does. A quote
// inside a quoted field closes it only when followed by optional blanks and a
// comma or the end of the line; any other quote is kept as text. Blanks
// between a closing quote and the comma are dropped.
func splitLenient(line string) ([]string, error) {
	var fields []string
	n := len(line)
	i := 0
	for {
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}

		if i < n && line[i] == '"' {
			var b strings.Builder
			closed := false
			for i++; i < n; {
				if line[i] != '"' {
					b.WriteByte(line[i])
					i++
					continue
				}
				if closesField(line, i) {
					closed = true
					for i++; i < n && line[i] != ','; i++ {
					}
					break
				}
				// "" is an escaped quote unless its second half closes the field
				if i+1 < n && line[i+1] == '"' && !closesField(line, i+1) {
					i += 2
				} else {
					i++
				}
				b.WriteByte('"')
			}
			if !closed {
				return nil, errUnterminatedQuote
			}
			fields = append(fields, b.String())
		} else {
			j := strings.IndexByte(line[i:], ',')
			if j < 0 {
				return append(fields, line[i:]), nil
			}
			fields = append(fields, line[i:i+j])
			i += j
		}

		if i >= n {
			return fields, nil
		}
		i++ // comma
	}
}

// closesField reports whether the quote at i ends a quoted field
func closesField(line string, i int) bool {
	j := i + 1
	for j < len(line) && (line[j] == ' ' || line[j] == '\t') {
		j++
	}
	return j == len(line) || line[j] == ','
}
