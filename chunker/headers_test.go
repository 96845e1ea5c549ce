package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchHeader(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		wantKind   headerKind
		wantNumber string
		wantTitle  string
	}{
		{"part", "PART I Allergic Disorders", headerPart, "I", "Allergic Disorders"},
		{"part without title", "PART XVI", headerPart, "XVI", ""},
		{"chapter with colon", "Chapter 185: Asthma", headerChapter, "185", "Asthma"},
		{"chapter lowercase", "chapter 185 Asthma", headerChapter, "185", "Asthma"},
		{"bare numeric chapter", "185 Childhood Asthma", headerChapter, "185", "Childhood Asthma"},
		{"subsection", "184.1 Global Allergic Burden", headerSubsection, "184.1", "Global Allergic Burden"},
		{"caps section", "CLINICAL MANIFESTATIONS", headerSection, "", "CLINICAL MANIFESTATIONS"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, ok := matchHeader(tc.in)
			require.True(t, ok)
			assert.Equal(t, tc.wantKind, h.kind)
			assert.Equal(t, tc.wantNumber, h.number)
			assert.Equal(t, tc.wantTitle, h.title)
		})
	}
}

func TestMatchHeader_BodyLines(t *testing.T) {
	for _, line := range []string{
		"Asthma is common.",
		"Give 0.5 mg per kg daily.",
		"185 asthma lowercase title",
		"TB", // too short for a caps section
		"Approximately 185 children were enrolled.",
	} {
		_, ok := matchHeader(line)
		assert.False(t, ok, "line %q must not classify as a header", line)
	}
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Asthma", cleanTitle("  Asthma  "))
	assert.Equal(t, "Asthma", cleanTitle("u Asthma"))

	long := cleanTitle("Asthma and Related Disorders of the Lower Respiratory Tract in Infants, Children, and Adolescents Extended Edition")
	assert.LessOrEqual(t, len(long), maxTitleLength)
}
