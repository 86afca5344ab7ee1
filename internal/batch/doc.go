// Package batch reads vocabulary words from an input table, groups them into
// fixed-size batches and drives each batch through prompt building, text
// generation, response parsing and the output sink, strictly one batch at a
// time.
package batch
