package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "what is your name", normalizeText("  What is your name?! "))
	assert.Equal(t, "what s up", normalizeText("WHAT'S   UP..."))
	assert.Equal(t, "", normalizeText("?!... ,,"))
	assert.Equal(t, "q 42", normalizeText("q-42"))
}

func TestSimilarityIdentical(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("hello world", "hello world"), 1e-9)
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
}

func TestSimilarityDisjoint(t *testing.T) {
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
}

func TestSimilarityRatio(t *testing.T) {
	// "ab" matches out of "abc"/"abd": 2*2/6
	assert.InDelta(t, 4.0/6.0, Similarity("abc", "abd"), 1e-9)
}

func TestSimilaritySymmetricEnough(t *testing.T) {
	a, b := "what is your name", "whats your name"

	left := Similarity(a, b)
	right := Similarity(b, a)

	require.Greater(t, left, 0.6)
	assert.InDelta(t, left, right, 0.05)
}
