package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/medkb/bookvec/core"
)

// Reader decodes a dataset CSV back into chunk records. The header row is
// checked against Columns on the first read.
type Reader struct {
	cr      *csv.Reader
	checked bool
	ordinal int
}

// NewReader wraps r.
func NewReader(r io.Reader) *Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)
	return &Reader{cr: cr}
}

// Read returns the next record and its 0-based position in the file, which
// is what core.VectorID derives vector ids from. io.EOF signals the end of
// the dataset.
func (r *Reader) Read() (*core.ChunkRecord, int, error) {
	if !r.checked {
		if err := r.readHeader(); err != nil {
			return nil, 0, err
		}
	}

	row, err := r.cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, io.EOF
		}
		return nil, 0, fmt.Errorf("%w: %w", ErrBadRow, err)
	}

	record, err := decodeRow(row)
	if err != nil {
		return nil, 0, fmt.Errorf("%w (row %d): %w", ErrBadRow, r.ordinal+2, err)
	}

	ordinal := r.ordinal
	r.ordinal++
	return record, ordinal, nil
}

// ReadAll reads every remaining record.
func (r *Reader) ReadAll() ([]*core.ChunkRecord, error) {
	var records []*core.ChunkRecord
	for {
		record, _, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func (r *Reader) readHeader() error {
	header, err := r.cr.Read()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadHeader, err)
	}
	for i, name := range Columns {
		if header[i] != name {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrBadHeader, i, header[i], name)
		}
	}
	r.checked = true
	return nil
}

func decodeRow(row []string) (*core.ChunkRecord, error) {
	chunkNumber, err := strconv.Atoi(row[8])
	if err != nil {
		return nil, fmt.Errorf("chunk_number: %w", err)
	}
	contentLength, err := strconv.Atoi(row[11])
	if err != nil {
		return nil, fmt.Errorf("content_length: %w", err)
	}

	record := &core.ChunkRecord{
		BookTitle:        row[0],
		BookEdition:      row[1],
		ChapterNumber:    row[2],
		ChapterTitle:     row[3],
		SectionNumber:    row[4],
		SectionTitle:     row[5],
		SubsectionNumber: row[6],
		SubsectionTitle:  row[7],
		ChunkNumber:      chunkNumber,
		Content:          row[9],
		Summary:          row[10],
		ContentLength:    contentLength,
	}
	if err := core.ValidateChunkRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}
