package external

import (
	"strings"
	"unicode"

	extsvc "minote/internal/domain/services/external"
)

// literatureTriggers gates the encyclopedia lookup: only messages that look
// like literature questions are scanned for proper names at all.
var literatureTriggers = []string{
	"nhà văn",
	"nhà thơ",
	"thi sĩ",
	"tác giả",
	"tác phẩm",
	"văn học",
	"bài thơ",
	"truyện",
	"tiểu thuyết",
	"sáng tác",
	"nhân vật",
}

// placeStoplist drops capitalized spans that are common geography rather
// than people or works.
var placeStoplist = map[string]struct{}{
	"việt nam":   {},
	"hà nội":     {},
	"sài gòn":    {},
	"đà nẵng":    {},
	"hải phòng":  {},
	"cần thơ":    {},
	"miền bắc":   {},
	"miền trung": {},
	"miền nam":   {},
	"đông nam á": {},
}

// literatureExtractor is the default CandidateExtractor: a capitalization
// heuristic tuned for Vietnamese literature questions. Vietnamese personal
// names are two or three capitalized syllables, so those spans rank first.
type literatureExtractor struct{}

// NewLiteratureExtractor returns the capitalization-heuristic extractor.
func NewLiteratureExtractor() extsvc.CandidateExtractor {
	return &literatureExtractor{}
}

// Candidates returns up to max capitalized multi-word spans from text, or
// nothing when no literature trigger word is present.
func (e *literatureExtractor) Candidates(text string, max int) []string {
	if max <= 0 {
		return nil
	}

	lower := strings.ToLower(text)
	triggered := false
	for _, trigger := range literatureTriggers {
		if strings.Contains(lower, trigger) {
			triggered = true
			break
		}
	}
	if !triggered {
		return nil
	}

	spans := capitalizedSpans(text)

	// Two- and three-word spans are the most likely personal names.
	ordered := make([]string, 0, len(spans))
	for _, span := range spans {
		if n := len(strings.Fields(span)); n == 2 || n == 3 {
			ordered = append(ordered, span)
		}
	}
	for _, span := range spans {
		if n := len(strings.Fields(span)); n < 2 || n > 3 {
			ordered = append(ordered, span)
		}
	}

	seen := make(map[string]struct{})
	candidates := make([]string, 0, max)
	for _, span := range ordered {
		key := strings.ToLower(span)
		if _, stop := placeStoplist[key]; stop {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		candidates = append(candidates, span)
		if len(candidates) == max {
			break
		}
	}

	return candidates
}

// capitalizedSpans finds maximal runs of two or more capitalized words.
func capitalizedSpans(text string) []string {
	words := strings.Fields(text)

	spans := make([]string, 0)
	run := make([]string, 0, 4)

	flush := func() {
		if len(run) >= 2 {
			spans = append(spans, strings.Join(run, " "))
		}
		run = run[:0]
	}

	for _, word := range words {
		cleaned := strings.TrimFunc(word, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if cleaned == "" || !startsUpper(cleaned) {
			flush()
			continue
		}
		run = append(run, cleaned)
		// Trailing punctuation on the original word ends the run: the name
		// does not continue past a sentence or clause boundary.
		if last := word[len(word)-1]; strings.ContainsRune(".,!?;:", rune(last)) {
			flush()
		}
	}
	flush()

	return spans
}

func startsUpper(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}
