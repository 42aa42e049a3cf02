package dialog

import (
	"context"
	"time"

	"elizabot/app/service/behavior"
	"elizabot/app/service/conversation"
)

type Mode string

const (
	ModeReplay   Mode = "replay"
	ModeDirect   Mode = "direct"
	ModeThinking Mode = "thinking"
)

const (
	// ClosingSegmentText ends every answer. Stored answers that already end
	// with it are not suffixed twice.
	ClosingSegmentText = "Do you have another question?"

	// NoStoredAnswerText is spoken on a replay-only miss.
	NoStoredAnswerText = "I don't have a stored answer for that. Please ask one of the prepared questions."

	apologyText = "I'm sorry, I can't provide an answer at the moment."
)

// Sink executes speech and expressive actions. The orchestrator guarantees
// at most one in-flight command at a time.
type Sink interface {
	Speak(ctx context.Context, text string) error
	Act(ctx context.Context, action behavior.Action) error
}

// Decider produces a structured decision for an utterance.
type Decider interface {
	Decide(ctx context.Context, utterance string) (*conversation.Decision, error)
}

// Generator produces the thinking-cue and answer clause streams.
type Generator interface {
	StreamThinking(ctx context.Context, utterance string, notes []string) *conversation.ClauseStream
	StreamAnswer(ctx context.Context, utterance, hint, confidenceHint string) *conversation.ClauseStream
}

// Recorder keeps the dialog history across turns.
type Recorder interface {
	CommitUser(text string)
	CommitRobot(text string)
}

// ThinkingCue is one emitted deliberation line.
type ThinkingCue struct {
	Text     string
	Action   behavior.Action
	IssuedAt time.Time
}

// AnswerSegment is one sentence-like chunk of the final answer.
type AnswerSegment struct {
	Text       string
	Confidence behavior.Confidence
	Action     behavior.Action
	IsFirst    bool
}

// TurnContext is the per-utterance scratch state. It never outlives the turn.
type TurnContext struct {
	Utterance string
	StartedAt time.Time
	Mode      Mode
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
