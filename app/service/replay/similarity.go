package replay

import (
	"strings"
	"unicode"
)

// normalizeText lowercases, strips punctuation and collapses whitespace so
// fuzzy matching ignores formatting differences.
func normalizeText(text string) string {
	var builder strings.Builder

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			builder.WriteRune(r)
		} else {
			builder.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(builder.String()), " ")
}

// Similarity is a Ratcliff/Obershelp ratio in [0,1]: twice the number of
// matching characters over the total length of both strings.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)

	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}

	return 2.0 * float64(matchingRunes(ra, rb)) / float64(total)
}

func matchingRunes(a, b []rune) int {
	ai, bi, size := longestCommonBlock(a, b)
	if size == 0 {
		return 0
	}

	return size +
		matchingRunes(a[:ai], b[:bi]) +
		matchingRunes(a[ai+size:], b[bi+size:])
}

func longestCommonBlock(a, b []rune) (int, int, int) {
	var bestA, bestB, bestSize int

	// lengths[j] holds the common suffix length ending at a[i-1], b[j-1]
	lengths := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		prev := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]

			if a[i-1] == b[j-1] {
				lengths[j] = prev + 1
				if lengths[j] > bestSize {
					bestSize = lengths[j]
					bestA = i - bestSize
					bestB = j - bestSize
				}
			} else {
				lengths[j] = 0
			}

			prev = cur
		}
	}

	return bestA, bestB, bestSize
}
