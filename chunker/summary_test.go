package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_PrefersDefinitionSentence(t *testing.T) {
	content := "See also the preceding chapter on wheezing. " +
		"Bronchiolitis is a disease of the small airways caused by viral infection. " +
		"Peak incidence falls between two and six months of age."

	got := Summarize(content)

	assert.Equal(t, "Bronchiolitis is a disease of the small airways caused by viral infection.", got)
}

func TestSummarize_FallsBackToFirstSentence(t *testing.T) {
	content := "Fluid intake should be encouraged throughout the illness. " +
		"Antibiotics offer no benefit in uncomplicated cases."

	got := Summarize(content)

	assert.Equal(t, "Fluid intake should be encouraged throughout the illness.", got)
}

func TestSummarize_TruncatesLongSentences(t *testing.T) {
	content := "The differential diagnosis " + strings.Repeat("spans many overlapping entities ", 20) + "in infancy."

	got := Summarize(content)

	assert.LessOrEqual(t, len([]rune(got)), maxSummaryLength)
	assert.True(t, strings.HasPrefix(content, got))
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, "", Summarize(""))
}
