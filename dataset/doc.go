// Package dataset reads and writes the structured chunk dataset as CSV.
//
// The writer quotes every field unconditionally and terminates rows with a
// bare newline, so output is deterministic: converting the same source twice
// yields byte-identical files. The reader accepts any RFC 4180 input whose
// header matches Columns.
package dataset
