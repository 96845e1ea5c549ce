package chunker

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/medkb/bookvec/core"
)

const (
	// DefaultMaxTokens is the token ceiling per chunk.
	DefaultMaxTokens = 800

	// DefaultMinContentLength is the smallest chunk, in characters, worth
	// emitting on a forced boundary. Shorter buffers are merged into the
	// next chunk instead.
	DefaultMinContentLength = 50
)

// Config holds chunk builder settings. BookTitle and BookEdition are
// constant for every record of a run.
type Config struct {
	BookTitle        string
	BookEdition      string
	MaxTokens        int
	MinContentLength int
}

// Splitter turns raw text into chunk records. It holds no per-run state:
// splitting is a pure function of its input, so re-running over an unchanged
// file yields identical records.
type Splitter struct {
	cfg    Config
	logger *slog.Logger
}

// Option configures a Splitter.
type Option func(*Splitter)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Splitter) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewSplitter creates a splitter, applying defaults for zero-valued limits.
func NewSplitter(cfg Config, opts ...Option) *Splitter {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.MinContentLength <= 0 {
		cfg.MinContentLength = DefaultMinContentLength
	}

	s := &Splitter{
		cfg:    cfg,
		logger: slog.Default().With("component", "chunker"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// parserState is the hierarchy context threaded through segmentation, plus
// the sentence buffer of the chunk under construction. Every field is
// explicit; nothing survives between Split calls.
type parserState struct {
	partNumber       string
	partTitle        string
	chapterNumber    string
	chapterTitle     string
	sectionNumber    string
	sectionTitle     string
	subsectionNumber string
	subsectionTitle  string

	sectionCounter int // per-chapter counter used to number all-caps sections
	chunkNumber    int // last emitted chunk number within (chapter, section)

	buffer []string // buffered sentences of the open chunk
}

// bufferedChars is the rune length the buffer would have when joined, the
// same measure ContentLength reports.
func (st *parserState) bufferedChars() int {
	if len(st.buffer) == 0 {
		return 0
	}
	n := len(st.buffer) - 1 // joining spaces
	for _, sentence := range st.buffer {
		n += utf8.RuneCountInString(sentence)
	}
	return n
}

// applyHeader updates hierarchy context for a matched marker. A part or
// chapter resets everything beneath it, a section resets the subsection, and
// all three reset chunk numbering. A subsection leaves chunk numbering
// alone: chunk numbers run within a (chapter, section) pair.
func (st *parserState) applyHeader(h header) {
	switch h.kind {
	case headerPart:
		st.partNumber = h.number
		st.partTitle = h.title
		st.chapterNumber = ""
		st.chapterTitle = ""
		st.sectionNumber = ""
		st.sectionTitle = ""
		st.subsectionNumber = ""
		st.subsectionTitle = ""
		st.sectionCounter = 0
		st.chunkNumber = 0
	case headerChapter:
		st.chapterNumber = h.number
		st.chapterTitle = h.title
		st.sectionNumber = ""
		st.sectionTitle = ""
		st.subsectionNumber = ""
		st.subsectionTitle = ""
		st.sectionCounter = 0
		st.chunkNumber = 0
	case headerSection:
		st.sectionCounter++
		chapter := st.chapterNumber
		if chapter == "" {
			chapter = "1"
		}
		st.sectionNumber = fmt.Sprintf("%s.%d", chapter, st.sectionCounter)
		st.sectionTitle = h.title
		st.subsectionNumber = ""
		st.subsectionTitle = ""
		st.chunkNumber = 0
	case headerSubsection:
		st.subsectionNumber = h.number
		st.subsectionTitle = h.title
	}
}

// SplitFile reads a source file and returns its chunk records.
func (s *Splitter) SplitFile(path string) ([]*core.ChunkRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	records, err := s.SplitReader(f)
	if err != nil {
		return nil, fmt.Errorf("split %s: %w", path, err)
	}
	return records, nil
}

// SplitReader segments everything read from r into chunk records.
func (s *Splitter) SplitReader(r io.Reader) ([]*core.ChunkRecord, error) {
	var records []*core.ChunkRecord
	st := &parserState{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		s.consumeLine(scanner.Text(), st, &records)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	// End of input: flush whatever is buffered. The final chunk of a file
	// may be shorter than the minimum.
	s.flush(st, &records)

	return records, nil
}

// SplitText segments a string. Convenience wrapper used by tests and small
// callers.
func (s *Splitter) SplitText(text string) []*core.ChunkRecord {
	records, _ := s.SplitReader(strings.NewReader(text))
	return records
}

func (s *Splitter) consumeLine(line string, st *parserState, records *[]*core.ChunkRecord) {
	trimmed := strings.TrimSpace(RepairEncoding(line))
	if trimmed == "" {
		return
	}

	if h, ok := matchHeader(trimmed); ok {
		// A header forces a chunk boundary, but a buffer too short to
		// stand alone is carried into the next chunk rather than
		// emitted under the old context.
		if st.bufferedChars() >= s.cfg.MinContentLength {
			s.flush(st, records)
		}
		st.applyHeader(h)
		return
	}

	body := StripBoilerplate(trimmed)
	if body == "" {
		return
	}

	for _, sentence := range SplitSentences(body) {
		if st.bufferedChars() > 0 &&
			EstimateTokens(strings.Join(st.buffer, " "))+EstimateTokens(sentence) > s.cfg.MaxTokens &&
			st.bufferedChars() >= s.cfg.MinContentLength {
			s.flush(st, records)
		}
		st.buffer = append(st.buffer, sentence)
	}
}

// flush emits the buffered sentences as a chunk under the current context
// and clears the buffer. An empty buffer emits nothing.
func (s *Splitter) flush(st *parserState, records *[]*core.ChunkRecord) {
	if len(st.buffer) == 0 {
		return
	}

	content := strings.Join(st.buffer, " ")
	st.buffer = nil
	st.chunkNumber++

	record := &core.ChunkRecord{
		BookTitle:        s.cfg.BookTitle,
		BookEdition:      s.cfg.BookEdition,
		ChapterNumber:    st.chapterNumber,
		ChapterTitle:     st.chapterTitle,
		SectionNumber:    st.sectionNumber,
		SectionTitle:     st.sectionTitle,
		SubsectionNumber: st.subsectionNumber,
		SubsectionTitle:  st.subsectionTitle,
		ChunkNumber:      st.chunkNumber,
		Content:          content,
		Summary:          Summarize(content),
		ContentLength:    utf8.RuneCountInString(content),
	}
	*records = append(*records, record)

	s.logger.Debug("emitted chunk",
		"chapter", record.ChapterNumber,
		"section", record.SectionNumber,
		"chunk", record.ChunkNumber,
		"chars", record.ContentLength)
}
