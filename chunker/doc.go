// Package chunker converts raw textbook source files into hierarchical
// chunk records.
//
// The splitter scans input line by line, tracking the most recently seen
// part, chapter, section, and subsection headers in explicit parser state.
// Body lines are segmented into sentences and buffered until the estimated
// token count crosses the configured ceiling, at which point a chunk is
// emitted under the current hierarchy context. Headers force a chunk
// boundary; buffers too short to stand alone are merged into the next chunk
// instead of being emitted.
//
// Header detection is best-effort: a line that matches no pattern is body
// content, and mis-detected headers are never reported. Records simply
// inherit whatever the last matched heading was.
package chunker
