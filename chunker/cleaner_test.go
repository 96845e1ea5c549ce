package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairEncoding(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "apostrophe",
			in:   "CrohnM-bM-^@M-^Ys disease",
			want: "Crohn's disease",
		},
		{
			name: "en dash range",
			in:   "ages 2M-bM-^@M-^S5 years",
			want: "ages 2–5 years",
		},
		{
			name: "double quotes",
			in:   "the M-bM-^@M-^\\gold standardM-bM-^@M-^] test",
			want: "the \"gold standard\" test",
		},
		{
			name: "greek letters",
			in:   "TNF-M-NM-1 and M-NM-2-blockers",
			want: "TNF-α and β-blockers",
		},
		{
			name: "clean text untouched",
			in:   "Asthma is common.",
			want: "Asthma is common.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, RepairEncoding(tc.in))
		})
	}
}

func TestStripBoilerplate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "download notice removed",
			in:   "Downloaded for user at Example University from ClinicalKey.com. Fever persists beyond five days.",
			want: "Fever persists beyond five days.",
		},
		{
			name: "copyright line removed",
			in:   "Copyright ©2025. Elsevier Inc. All rights reserved.",
			want: "",
		},
		{
			name: "trailing page number removed",
			in:   "Treatment is supportive. 1284",
			want: "Treatment is supportive.",
		},
		{
			name: "bare page number line removed",
			in:   "1284",
			want: "",
		},
		{
			name: "clause ending in a number kept",
			in:   "The dose is repeated every 12",
			want: "The dose is repeated every 12",
		},
		{
			name: "measurement before period kept",
			in:   "Onset is typically before age 5.",
			want: "Onset is typically before age 5.",
		},
		{
			name: "body text untouched",
			in:   "Bronchiolitis peaks in winter months.",
			want: "Bronchiolitis peaks in winter months.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, StripBoilerplate(tc.in))
		})
	}
}
