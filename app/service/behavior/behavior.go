package behavior

import (
	"strings"

	"elizabot/app/config"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Word count thresholds for the length heuristic. Short answers read as
// confident, rambling ones as hedging.
const (
	shortAnswerWords  = 25
	mediumAnswerWords = 60
)

// Action is a single expressive command for the robot.
type Action struct {
	Gesture    string
	Expression string
	Led        string
	LookAt     *config.LookAt
}

// Profile pairs the speech prefix of a confidence tier with its action.
type Profile struct {
	Prefix string
	Action Action
}

// The table is identical for live and replayed answers.
var profiles = map[Confidence]Profile{
	ConfidenceLow: {
		Prefix: "I'm not entirely sure, but",
		Action: Action{Gesture: "Shake", Expression: "Oh", Led: "#FFC800"},
	},
	ConfidenceMedium: {
		Prefix: "Let me think",
		Action: Action{Gesture: "Attend", Expression: "Thoughtful", Led: "#0066FF"},
	},
	ConfidenceHigh: {
		Prefix: "I'm confident that",
		Action: Action{Gesture: "Nod", Expression: "BigSmile", Led: "#00FF00"},
	},
}

var thinkingGestures = []string{"Attend", "Shake"}
var thinkingExpressions = []string{"Thoughtful", "Oh"}

const thinkingLed = "#FFA500"

// ForConfidence returns the profile for a tier, defaulting to medium for
// anything unrecognized.
func ForConfidence(c Confidence) Profile {
	if p, ok := profiles[c]; ok {
		return p
	}

	return profiles[ConfidenceMedium]
}

// Parse maps a free-form tier string to a Confidence, or false if it is not
// one of the known tiers.
func Parse(raw string) (Confidence, bool) {
	c := Confidence(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := profiles[c]

	return c, ok
}

// Resolve picks the confidence tier for an answer: an explicit valid hint
// wins, otherwise the tier is derived from the answer length.
func Resolve(hint string, wordCount int) Confidence {
	if c, ok := Parse(hint); ok {
		return c
	}

	return FromWordCount(wordCount)
}

func FromWordCount(wordCount int) Confidence {
	switch {
	case wordCount < shortAnswerWords:
		return ConfidenceHigh
	case wordCount < mediumAnswerWords:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// ThinkingAction returns the expressive action for the i-th thinking cue,
// cycling through the deliberation gestures.
func ThinkingAction(i int) Action {
	return Action{
		Gesture:    thinkingGestures[i%len(thinkingGestures)],
		Expression: thinkingExpressions[i%len(thinkingExpressions)],
		Led:        thinkingLed,
	}
}

// FromScripted converts a configured behavior entry into an Action.
func FromScripted(entry config.ScriptedBehavior) Action {
	return Action{
		Gesture:    entry.Gesture,
		Expression: entry.Expression,
		Led:        thinkingLed,
		LookAt:     entry.LookAt,
	}
}
