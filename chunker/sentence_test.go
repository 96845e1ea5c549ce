package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "two sentences",
			in:   "Asthma is a chronic disease. Wheezing is the cardinal sign.",
			want: []string{"Asthma is a chronic disease.", "Wheezing is the cardinal sign."},
		},
		{
			name: "decimal dose stays intact",
			in:   "Give 0.5 mg per kg daily. Reassess after two weeks.",
			want: []string{"Give 0.5 mg per kg daily.", "Reassess after two weeks."},
		},
		{
			name: "lowercase after period is not a boundary",
			in:   "Common pathogens include S. aureus and group A streptococcus in this age range.",
			want: []string{"Common pathogens include S. aureus and group A streptococcus in this age range."},
		},
		{
			name: "missing terminal punctuation gets a period",
			in:   "Treatment is largely supportive in most patients",
			want: []string{"Treatment is largely supportive in most patients."},
		},
		{
			name: "short fragments dropped",
			in:   "Fig. 12. The incidence rises sharply during winter months.",
			want: []string{"The incidence rises sharply during winter months."},
		},
		{
			name: "question mark boundary",
			in:   "Is surgery indicated here? Rarely before age two years.",
			want: []string{"Is surgery indicated here?", "Rarely before age two years."},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SplitSentences(tc.in))
		})
	}
}

func TestSplitSentences_RoundTripJoin(t *testing.T) {
	in := "Bronchiolitis peaks in winter. Most cases are viral in origin. Supportive care is the mainstay of treatment."

	sentences := SplitSentences(in)
	require.Len(t, sentences, 3)
	assert.Equal(t, in, strings.Join(sentences, " "))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcde"))
	assert.Equal(t, 100, EstimateTokens(strings.Repeat("x", 300)))
	assert.Equal(t, 100, EstimateTokens(strings.Repeat("α", 300)), "multibyte runes count once")
}
