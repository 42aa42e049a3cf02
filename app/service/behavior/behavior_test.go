package behavior

import (
	"testing"

	"elizabot/app/config"

	"github.com/stretchr/testify/assert"
)

func TestForConfidenceIsPure(t *testing.T) {
	first := ForConfidence(ConfidenceHigh)
	second := ForConfidence(ConfidenceHigh)

	assert.Equal(t, first, second)
	assert.Equal(t, "I'm confident that", first.Prefix)
	assert.Equal(t, "Nod", first.Action.Gesture)
}

func TestForConfidenceUnknownDefaultsToMedium(t *testing.T) {
	assert.Equal(t, ForConfidence(ConfidenceMedium), ForConfidence(Confidence("shrug")))
}

func TestParse(t *testing.T) {
	c, ok := Parse("  HIGH ")
	assert.True(t, ok)
	assert.Equal(t, ConfidenceHigh, c)

	_, ok = Parse("certain")
	assert.False(t, ok)

	_, ok = Parse("")
	assert.False(t, ok)
}

func TestResolveExplicitHintWins(t *testing.T) {
	assert.Equal(t, ConfidenceLow, Resolve("low", 5))
}

func TestResolveFallsBackToWordCount(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, Resolve("", 10))
	assert.Equal(t, ConfidenceMedium, Resolve("banana", 40))
	assert.Equal(t, ConfidenceLow, Resolve("", 120))
}

func TestFromWordCountThresholds(t *testing.T) {
	assert.Equal(t, ConfidenceHigh, FromWordCount(24))
	assert.Equal(t, ConfidenceMedium, FromWordCount(25))
	assert.Equal(t, ConfidenceMedium, FromWordCount(59))
	assert.Equal(t, ConfidenceLow, FromWordCount(60))
}

func TestThinkingActionCycles(t *testing.T) {
	assert.Equal(t, ThinkingAction(0), ThinkingAction(2))
	assert.Equal(t, ThinkingAction(1), ThinkingAction(3))
	assert.NotEqual(t, ThinkingAction(0).Gesture, ThinkingAction(1).Gesture)
}

func TestFromScripted(t *testing.T) {
	action := FromScripted(config.ScriptedBehavior{
		Gesture:    "Nod",
		Expression: "BrowFrown",
		LookAt:     &config.LookAt{X: 0.1, Y: 0.3, Z: 1.0},
	})

	assert.Equal(t, "Nod", action.Gesture)
	assert.Equal(t, "BrowFrown", action.Expression)
	assert.NotNil(t, action.LookAt)
}
