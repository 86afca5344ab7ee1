// Package sink provides the append-only destinations for parsed example
// rows: quoted CSV (the default), a SQLite table and JSON lines. Rows are
// written in the order received and flushed once per batch.
package sink
