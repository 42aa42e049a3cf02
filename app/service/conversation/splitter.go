package conversation

import "strings"

// popClauses splits accumulated text on sentence-ending punctuation and
// returns the complete clauses plus the unfinished remainder.
func popClauses(text string) ([]string, string) {
	var clauses []string

	start := 0
	for i, r := range text {
		if r == '.' || r == '?' || r == '!' {
			clause := strings.TrimSpace(text[start : i+1])
			if clause != "" {
				clauses = append(clauses, clause)
			}
			start = i + 1
		}
	}

	return clauses, text[start:]
}

// SplitClauses deterministically splits a complete answer into sentence-like
// segments, flushing any trailing text without closing punctuation.
func SplitClauses(text string) []string {
	clauses, remainder := popClauses(text)

	remainder = strings.TrimSpace(remainder)
	if remainder != "" {
		clauses = append(clauses, remainder)
	}

	return clauses
}

// IsMeaningfulCue reports whether a thinking cue contains anything beyond
// punctuation and whitespace.
func IsMeaningfulCue(text string) bool {
	stripped := strings.TrimSpace(text)
	stripped = strings.Trim(stripped, ".!?…")

	return strings.TrimSpace(stripped) != ""
}

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
