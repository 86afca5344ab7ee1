// Package processor contains the top-level run logic for examplegen. It
// turns the command-line settings into a prompt builder, a model client, an
// input source and an output sink, drives the batches and prints the run
// summary.
package processor
