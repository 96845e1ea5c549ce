package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medkb/bookvec/core"
)

func sampleRecords() []*core.ChunkRecord {
	return []*core.ChunkRecord{
		{
			BookTitle:     "Nelson Textbook of Pediatrics",
			BookEdition:   "22",
			ChapterNumber: "1",
			ChapterTitle:  "Intro",
			ChunkNumber:   1,
			Content:       "Asthma is common.",
			Summary:       "Asthma is common.",
			ContentLength: 17,
		},
		{
			BookTitle:        "Nelson Textbook of Pediatrics",
			BookEdition:      "22",
			ChapterNumber:    "184",
			ChapterTitle:     "Allergic Rhinitis",
			SectionNumber:    "184.1",
			SectionTitle:     "EPIDEMIOLOGY",
			SubsectionNumber: "184.1",
			SubsectionTitle:  "Global Burden",
			ChunkNumber:      2,
			Content:          `Prevalence is rising, with "hygiene hypothesis" factors implicated.`,
			Summary:          "Prevalence is rising.",
			ContentLength:    67,
		},
	}
}

func TestWriter_QuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteAll(sampleRecords()))
	assert.Equal(t, 2, w.Written())

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)

	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, `"`), "line %d must start quoted", i)
		assert.True(t, strings.HasSuffix(line, `"`), "line %d must end quoted", i)
		assert.Equal(t, len(Columns), countFields(line), "line %d field count", i)
	}

	// Embedded quotes are doubled, not escaped some other way.
	assert.Contains(t, lines[2], `""hygiene hypothesis""`)
}

func TestWriter_Deterministic(t *testing.T) {
	write := func() []byte {
		var buf bytes.Buffer
		w := NewWriter(&buf)
		require.NoError(t, w.WriteHeader())
		require.NoError(t, w.WriteAll(sampleRecords()))
		return buf.Bytes()
	}

	assert.Equal(t, write(), write(), "identical input must produce byte-identical output")
}

func TestRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteAll(records))

	r := NewReader(&buf)
	got, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, got, len(records))

	for i := range records {
		assert.Equal(t, *records[i], *got[i], "record %d must survive the round trip exactly", i)
	}
}

func TestReader_Ordinals(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteAll(sampleRecords()))

	r := NewReader(&buf)

	_, ordinal, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, 0, ordinal)
	assert.Equal(t, "chunk_0", core.VectorID(ordinal))

	_, ordinal, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, 1, ordinal)
}

func TestReader_RejectsBadHeader(t *testing.T) {
	r := NewReader(strings.NewReader("\"a\",\"b\"\n"))

	_, _, err := r.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadHeader)
}

func TestReader_RejectsBadRow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.Flush())

	// chunk_number is not numeric.
	buf.WriteString(`"t","e","1","c","","","","","one","text here","","9"` + "\n")

	r := NewReader(&buf)
	_, _, err := r.Read()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadRow)
}

// countFields counts CSV fields in a fully quoted line.
func countFields(line string) int {
	return strings.Count(line, `","`) + 1
}
