package chunker

import (
	"regexp"
	"strings"
)

// encodingRepairs maps mojibake sequences found in the scanned source files
// to the characters they stand for. Medical symbols (Greek letters,
// inequality signs) matter for terminology like "β-agonist" and "≥38°C".
var encodingRepairs = strings.NewReplacer(
	"M-bM-^@M-^Y", "'", // apostrophe
	"M-bM-^@M-^S", "–", // en dash
	"M-bM-^@M-^T", "—", // em dash
	"M-BM--", "—", // em dash variant
	`M-bM-^@M-^\`, `"`, // opening quote
	"M-bM-^@M-^]", `"`, // closing quote
	"M-bM-^@M-^[", `"`, // opening quote variant
	"M-bM-^@M-^C", "™",
	"M-bM-^@M-^B", "•",
	"M-bM-^@M-^I", " ", // non-breaking space
	"M-NM-1", "α",
	"M-NM-2", "β",
	"M-NM-<", "μ",
	"M-IM-%", "≥",
	"M-IM-$", "≤",
)

// boilerplatePatterns match download attributions and publisher copyright
// notices that contaminate the scanned text.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Downloaded for [^.]+\) at [^.]+\.`),
	regexp.MustCompile(`Downloaded for [^.]*\.com[^.]*\.`),
	regexp.MustCompile(`Copyright ©\d{4}\. Elsevier Inc\. All rights reserved\.`),
	regexp.MustCompile(`No other uses without permission\. Copyright ©\d{4}\. Elsevier[^.]*\.`),
	regexp.MustCompile(`For personal use only\. No other uses without permission\.`),
}

// Page numbers from running heads either stand alone on a line or trail a
// completed sentence. A bare number that ends a clause ("repeated every 12")
// is prose and must survive, so the trailing form is anchored on sentence
// punctuation.
var (
	pageNumberLine     = regexp.MustCompile(`^\s*\d{1,4}\s*$`)
	trailingPageNumber = regexp.MustCompile(`([.!?])\s+\d{1,4}\s*$`)
)

var spaceRuns = regexp.MustCompile(`[ \t]+`)

// RepairEncoding replaces mojibake sequences with the characters they encode.
// Repairs are silent: there is no way to tell a genuine control-sequence
// string in the source from a transcription artifact, so all occurrences are
// substituted.
func RepairEncoding(text string) string {
	return encodingRepairs.Replace(text)
}

// StripBoilerplate removes publisher attribution and copyright text from a
// body line, then collapses runs of spaces and tabs.
func StripBoilerplate(text string) string {
	for _, pattern := range boilerplatePatterns {
		text = pattern.ReplaceAllString(text, "")
	}
	text = pageNumberLine.ReplaceAllString(text, "")
	text = trailingPageNumber.ReplaceAllString(text, "$1")
	return strings.TrimSpace(spaceRuns.ReplaceAllString(text, " "))
}
