// Package prompt builds the instruction text sent to the language model for
// a batch of vocabulary words. The instruction fixes the shape of the answer:
// quoted CSV rows with four columns and no header line.
package prompt
