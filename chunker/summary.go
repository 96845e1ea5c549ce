package chunker

import (
	"regexp"
	"unicode/utf8"
)

const maxSummaryLength = 200

// definitionPatterns pick out sentences that define a condition or describe
// its presentation. A chunk whose early sentences contain one of these makes
// a better summary than whatever happens to come first.
var definitionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(is|are)\s+(a|an|the)\s+(condition|disease|disorder|syndrome)\b`),
	regexp.MustCompile(`(?i)\b(refers to|defined as|characterized by)\b`),
	regexp.MustCompile(`(?i)\b(involves|includes|comprises)\s+(the|a|an)\b`),
	regexp.MustCompile(`(?i)\b(occurs when|results from|caused by)\b`),
	regexp.MustCompile(`(?i)\b(manifests as|presents with|associated with)\b`),
}

// Summarize produces a best-effort extractive summary of chunk content:
// the first definition-like sentence among the leading five, otherwise the
// first sentence, truncated to maxSummaryLength runes. There is no
// correctness contract; an empty result is acceptable.
func Summarize(content string) string {
	sentences := SplitSentences(content)
	if len(sentences) == 0 {
		return truncateRunes(content, maxSummaryLength)
	}

	limit := len(sentences)
	if limit > 5 {
		limit = 5
	}
	for _, sentence := range sentences[:limit] {
		n := utf8.RuneCountInString(sentence)
		if n <= 30 || n >= 250 {
			continue
		}
		for _, pattern := range definitionPatterns {
			if pattern.MatchString(sentence) {
				return truncateRunes(sentence, maxSummaryLength)
			}
		}
	}

	return truncateRunes(sentences[0], maxSummaryLength)
}

func truncateRunes(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return string(runes[:limit])
}
