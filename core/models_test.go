package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorID(t *testing.T) {
	assert.Equal(t, "chunk_0", VectorID(0))
	assert.Equal(t, "chunk_42", VectorID(42))
}

func TestContentChecksum_Deterministic(t *testing.T) {
	a := ContentChecksum("Asthma is a chronic inflammatory disorder of the airways.")
	b := ContentChecksum("Asthma is a chronic inflammatory disorder of the airways.")
	assert.Equal(t, a, b, "identical content must produce identical checksums")

	c := ContentChecksum("Asthma is a chronic inflammatory disorder of the airways!")
	assert.NotEqual(t, a, c, "different content should produce different checksums")
}

func TestContentPreview(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{name: "shorter than limit", text: "short", limit: 500, want: "short"},
		{name: "exactly limit", text: "abcde", limit: 5, want: "abcde"},
		{name: "truncated", text: "abcdef", limit: 5, want: "abcde"},
		{name: "zero limit", text: "abc", limit: 0, want: ""},
		{name: "multibyte runes", text: "αβγδε≥≤", limit: 5, want: "αβγδε"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContentPreview(tt.text, tt.limit))
		})
	}
}

func TestContentPreview_StrictPrefix(t *testing.T) {
	content := strings.Repeat("Fever is a common presenting symptom in children. ", 20)
	preview := ContentPreview(content, 500)

	require.True(t, strings.HasPrefix(content, preview))
	assert.Less(t, len(preview), len(content), "preview of long content must be a strict prefix")
}
