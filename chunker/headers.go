package chunker

import (
	"regexp"
	"strings"
)

type headerKind int

const (
	headerPart headerKind = iota + 1
	headerChapter
	headerSection
	headerSubsection
)

// header is a recognized structural marker line.
type header struct {
	kind   headerKind
	number string
	title  string
}

var (
	// "PART I Allergic Disorders"
	partPattern = regexp.MustCompile(`^PART\s+([IVXLCDM]+)\b\s*(.*)$`)

	// "Chapter 185: Asthma", "Chapter 185 Asthma", "CHAPTER 185. Asthma"
	chapterPattern = regexp.MustCompile(`(?i)^chapter\s+(\d+)\s*[:.]?\s*(.*)$`)

	// "185 Asthma", bare numeric chapter line as printed in running heads
	numericChapterPattern = regexp.MustCompile(`^(\d+)\s+([A-Z][A-Za-z][A-Za-z ,\-:()]{3,98})$`)

	// "184.1 Global Allergic Burden"
	subsectionPattern = regexp.MustCompile(`^(\d+\.\d+)\s+(\S.*)$`)

	// "CLINICAL MANIFESTATIONS", all-caps major section header
	capsSectionPattern = regexp.MustCompile(`^[A-Z][A-Z ,\-]{7,49}$`)
)

// matchHeader classifies a trimmed line as a structural marker. Patterns are
// tried from most to least specific; a line matching none is body content.
func matchHeader(line string) (header, bool) {
	if m := partPattern.FindStringSubmatch(line); m != nil {
		return header{kind: headerPart, number: m[1], title: cleanTitle(m[2])}, true
	}
	if m := chapterPattern.FindStringSubmatch(line); m != nil {
		return header{kind: headerChapter, number: m[1], title: cleanTitle(m[2])}, true
	}
	if m := subsectionPattern.FindStringSubmatch(line); m != nil {
		return header{kind: headerSubsection, number: m[1], title: cleanTitle(m[2])}, true
	}
	if m := numericChapterPattern.FindStringSubmatch(line); m != nil {
		return header{kind: headerChapter, number: m[1], title: cleanTitle(m[2])}, true
	}
	if capsSectionPattern.MatchString(line) {
		return header{kind: headerSection, title: cleanTitle(line)}, true
	}
	return header{}, false
}

const maxTitleLength = 100

// cleanTitle trims a header title. Mojibake repair occasionally leaves a
// stray leading "u" where a quote character was eaten; it is stripped here
// rather than carried into metadata.
func cleanTitle(title string) string {
	title = strings.TrimSpace(title)
	if rest, ok := strings.CutPrefix(title, "u "); ok {
		title = strings.TrimSpace(rest)
	}
	if len(title) > maxTitleLength {
		title = strings.TrimSpace(title[:maxTitleLength])
	}
	return title
}
