// Package parser turns the free-text answer of the language model into
// structured example rows. Parsing is purely structural: lines that do not
// hold exactly the expected number of quoted fields are dropped and reported,
// never corrected.
package parser
