package sink

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"codeberg.org/snonux/examplegen/internal/parser"
)

// Output formats
const (
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
	FormatJSONL  = "jsonl"
)

// Sink receives the rows of each successfully parsed batch
type Sink interface {
	// Write appends the rows of one batch and flushes them
	Write(ctx context.Context, batch int, rows []parser.Row) error

	// Close flushes and releases the destination
	Close() error
}

// Config holds the settings for opening a sink
type Config struct {
	Path   string // output path, "-" for stdout
	Format string // csv, sqlite or jsonl; empty infers from Path
	Append bool   // append to an existing file instead of truncating
	RunID  string
}

// Open creates the sink for the configured format
func Open(config *Config) (Sink, error) {
	format := config.Format
	if format == "" {
		format = FormatFromPath(config.Path)
	}

	switch format {
	case FormatCSV:
		return NewCSVSink(config.Path, config.Append)
	case FormatSQLite:
		if config.Path == "-" {
			return nil, fmt.Errorf("sqlite output needs a file path")
		}
		return NewSQLiteSink(config.Path, config.RunID, config.Append)
	case FormatJSONL:
		return NewJSONLSink(config.Path, config.Append, config.RunID)
	default:
		return nil, fmt.Errorf("unknown output format: %s", format)
	}
}

// FormatFromPath infers the output format from the file extension
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatCSV
	}
}

// discard drops all rows
type discard struct{}

// Discard returns a sink that drops all rows
func Discard() Sink {
	return discard{}
}

func (discard) Write(ctx context.Context, batch int, rows []parser.Row) error { return nil }

func (discard) Close() error { return nil }
