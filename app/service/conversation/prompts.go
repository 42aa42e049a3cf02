package conversation

import (
	"fmt"
	"strings"

	_ "embed"

	"github.com/elliotchance/pie/v2"
)

//go:embed controller_prompt_template.txt
var controllerPromptTemplate string

//go:embed thinking_system_prompt.txt
var thinkingSystemPrompt string

//go:embed reasoning_system_prompt.txt
var reasoningSystemPrompt string

// Tone guidance folded into the reasoning prompt per confidence hint.
var confidenceToneGuidance = map[string]string{
	"low":    "Sound tentative and gentle, acknowledging uncertainty briefly.",
	"medium": "Use a thoughtful, balanced tone that shows measured confidence.",
	"high":   "Respond with warm, natural confidence without sounding scripted.",
}

func buildThinkingPrompt(question string, notes []string) string {
	filtered := pie.Filter(notes, func(note string) bool { return note != "" })

	joined := strings.Join(
		pie.Map(filtered, func(note string) string { return "- " + note }),
		"\n",
	)
	if joined == "" {
		joined = "- Organizing possible answers"
	}

	return fmt.Sprintf(
		"User question: %s\nPreliminary thoughts:\n%s\nFollow the system prompt to generate visible thinking phrases.",
		question, joined,
	)
}

func buildReasoningPrompt(question, hint, confidenceHint string) string {
	var parts strings.Builder

	parts.WriteString("User question: " + question)

	if hint != "" {
		parts.WriteString("\nPreliminary hint to consider: " + hint)
	}
	if tone, ok := confidenceToneGuidance[confidenceHint]; ok {
		parts.WriteString("\nAdopt this tone: " + tone)
	}

	parts.WriteString("\nPlease summarize the solution in 2-3 sentences, do not output chain-of-thought reasoning.")

	return parts.String()
}
