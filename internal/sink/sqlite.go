package sink

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/examplegen/internal/parser"
)

// SQLiteSink stores rows in the example_rows table of a SQLite database
type SQLiteSink struct {
	db    *sql.DB
	runID string
}

// NewSQLiteSink opens or creates the database at path. Without appendMode
// existing rows are removed first.
func NewSQLiteSink(path, runID string, appendMode bool) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &SQLiteSink{db: db, runID: runID}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	if !appendMode {
		if _, err := db.Exec(`DELETE FROM example_rows`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to truncate example_rows: %w", err)
		}
	}

	return s, nil
}

// createTables creates the schema if it does not exist yet
func (s *SQLiteSink) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS example_rows (
			id integer PRIMARY KEY AUTOINCREMENT,
			run_id text NOT NULL,
			batch integer NOT NULL,
			sentence text NOT NULL,
			translation text NOT NULL,
			word text NOT NULL,
			definition text NOT NULL,
			created_at integer NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS ix_example_rows_word ON example_rows (word)`,
		`CREATE INDEX IF NOT EXISTS ix_example_rows_run ON example_rows (run_id, batch)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// Write inserts the rows of one batch in a single transaction
func (s *SQLiteSink) Write(ctx context.Context, batch int, rows []parser.Row) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO example_rows
		(run_id, batch, sentence, translation, word, definition, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, s.runID, batch, row.Sentence, row.Translation, row.Word, row.Definition, now); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch %d: %w", batch, err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
