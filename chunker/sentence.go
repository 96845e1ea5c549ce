package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minSentenceLength filters fragments produced by abbreviation-heavy medical
// prose ("Dr.", "e.g.", dosage notation) that the splitter mistakes for
// sentence ends.
const minSentenceLength = 10

// EstimateTokens approximates the token count of text as character count
// divided by three. The embedding models used with this corpus average
// roughly three characters per token on English medical prose. Characters
// are runes, so Greek letters and other multibyte symbols count once.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 3
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitSentences splits text into sentences. A boundary is a run of
// terminator punctuation followed by whitespace and a capital letter; this
// keeps decimals ("0.5 mg"), numbered items, and lowercase abbreviations
// inside their sentence. Fragments shorter than minSentenceLength are
// dropped, and sentences missing terminal punctuation get a period appended.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var sentences []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isSentenceTerminator(runes[i]) {
			continue
		}

		// Extend over a run of terminators ("?!", "...").
		end := i
		for end+1 < len(runes) && isSentenceTerminator(runes[end+1]) {
			end++
		}

		// The boundary needs whitespace then a capital letter.
		next := end + 1
		for next < len(runes) && unicode.IsSpace(runes[next]) {
			next++
		}
		if next == end+1 || next >= len(runes) || !unicode.IsUpper(runes[next]) {
			i = end
			continue
		}

		appendSentence(&sentences, string(runes[start:end+1]))
		start = next
		i = next - 1
	}

	if start < len(runes) {
		appendSentence(&sentences, string(runes[start:]))
	}

	return sentences
}

func appendSentence(sentences *[]string, raw string) {
	sentence := strings.TrimSpace(raw)
	if len(sentence) <= minSentenceLength {
		return
	}
	if !strings.HasSuffix(sentence, ".") && !strings.HasSuffix(sentence, "!") && !strings.HasSuffix(sentence, "?") {
		sentence += "."
	}
	*sentences = append(*sentences, sentence)
}
