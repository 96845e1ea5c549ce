package core

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// ChunkRecord is a token-bounded slice of source text with inherited
// hierarchy metadata. Records are created once by the chunk builder and are
// immutable afterwards; they are persisted as a dataset CSV row and later as
// a vector-store item.
type ChunkRecord struct {
	BookTitle        string
	BookEdition      string
	ChapterNumber    string
	ChapterTitle     string
	SectionNumber    string
	SectionTitle     string
	SubsectionNumber string
	SubsectionTitle  string
	ChunkNumber      int // 1-based, strictly increasing within a (chapter, section) pair
	Content          string
	Summary          string
	ContentLength    int // rune count of Content
}

// VectorID returns the deterministic vector-store id for the record at the
// given 0-based dataset position. Re-running an upload over the same dataset
// therefore upserts the same ids, which is what makes interrupted runs safe
// to resume.
func VectorID(ordinal int) string {
	return fmt.Sprintf("chunk_%d", ordinal)
}

// ContentChecksum fingerprints chunk content with a 64-bit BLAKE2b digest.
// Identical content always produces an identical checksum; the upload ledger
// uses it to detect content that changed between runs.
func ContentChecksum(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// ContentPreview returns the first limit runes of text. When text is longer
// than limit the result is a strict prefix; otherwise the full text is
// returned. Vector-store metadata carries the preview instead of the full
// content to stay inside per-item metadata size limits.
func ContentPreview(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
