package dataset

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/medkb/bookvec/core"
)

// Columns is the dataset header row, in file order.
var Columns = []string{
	"book_title",
	"book_edition",
	"chapter_number",
	"chapter_title",
	"section_number",
	"section_title",
	"subsection_number",
	"subsection_title",
	"chunk_number",
	"content",
	"summary",
	"content_length",
}

// Writer emits chunk records as CSV rows. Every field is quoted, including
// empty ones; encoding/csv only quotes on demand, which would make output
// bytes depend on field content rather than row count alone.
type Writer struct {
	bw      *bufio.Writer
	written int
}

// NewWriter wraps w. Call WriteHeader before the first Write and Flush after
// the last.
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteHeader writes the Columns row.
func (w *Writer) WriteHeader() error {
	return w.writeRow(Columns)
}

// Write appends one record as a row.
func (w *Writer) Write(record *core.ChunkRecord) error {
	row := []string{
		record.BookTitle,
		record.BookEdition,
		record.ChapterNumber,
		record.ChapterTitle,
		record.SectionNumber,
		record.SectionTitle,
		record.SubsectionNumber,
		record.SubsectionTitle,
		strconv.Itoa(record.ChunkNumber),
		record.Content,
		record.Summary,
		strconv.Itoa(record.ContentLength),
	}
	if err := w.writeRow(row); err != nil {
		return err
	}
	w.written++
	return nil
}

// WriteAll writes every record, then flushes.
func (w *Writer) WriteAll(records []*core.ChunkRecord) error {
	for _, record := range records {
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Written reports the number of data rows written so far.
func (w *Writer) Written() int {
	return w.written
}

// Flush writes buffered rows to the underlying writer.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

func (w *Writer) writeRow(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.bw.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.bw.WriteString(quote(field)); err != nil {
			return err
		}
	}
	return w.bw.WriteByte('\n')
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
