// Package archive moves earlier output files out of the way before a new run.
package archive
