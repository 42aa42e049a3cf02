package dialog

import (
	"context"
	"log/slog"
	"strings"

	"elizabot/app/service/behavior"
	"elizabot/app/service/conversation"
)

type answerInput struct {
	stream         *conversation.ClauseStream
	confidenceHint string
	// verbatim sources (replay records, controller-provided answers) are
	// spoken exactly as stored, without a confidence prefix.
	verbatim bool
	gate     *answerGate
}

// answerGate couples the answer relay to an in-flight cue relay: the first
// segment signals cancellation and then waits for the current cue to finish
// before taking over the sink.
type answerGate struct {
	firstAnswer  chan struct{}
	thinkingDone <-chan struct{}
}

func (g *answerGate) open() {
	select {
	case <-g.firstAnswer:
	default:
		close(g.firstAnswer)
	}
	<-g.thinkingDone
}

// relayAnswer turns a clause stream into ordered answer segments and emits
// them to the sink. It always produces at least an apology segment and the
// closing segment, and returns the full spoken text.
func (s *Service) relayAnswer(ctx context.Context, sink Sink, in answerInput) string {
	var spoken []string
	firstEmitted := false

	emit := func(text string, conf behavior.Confidence, withPrefix bool) {
		profile := behavior.ForConfidence(conf)

		isFirst := !firstEmitted
		if isFirst {
			if withPrefix && profile.Prefix != "" {
				text = profile.Prefix + " " + text
			}
			if in.gate != nil {
				in.gate.open()
			}
		}

		s.emitSegment(ctx, sink, AnswerSegment{
			Text:       text,
			Confidence: conf,
			Action:     profile.Action,
			IsFirst:    isFirst,
		})

		spoken = append(spoken, text)
		firstEmitted = true
	}

	confidence, hasExplicit := behavior.Parse(in.confidenceHint)

	if hasExplicit {
		// Segments can flow as soon as they arrive.
		for clause := range in.stream.Clauses() {
			emit(clause, confidence, !in.verbatim)
		}
	} else {
		// Length-based inference needs the complete answer first.
		var clauses []string
		for clause := range in.stream.Clauses() {
			clauses = append(clauses, clause)
		}

		confidence = behavior.FromWordCount(in.stream.WordCount())
		for _, clause := range clauses {
			emit(clause, confidence, !in.verbatim)
		}
	}

	if err := in.stream.Err(); err != nil {
		slog.Error("Answer generation failed", "error", err)
	}

	if !firstEmitted {
		confidence = behavior.ConfidenceLow
		emit(apologyText, confidence, false)
	}

	// Fixed closing segment, no confidence prefix.
	if spoken[len(spoken)-1] != ClosingSegmentText {
		emit(ClosingSegmentText, confidence, false)
	}

	return strings.Join(spoken, " ")
}
