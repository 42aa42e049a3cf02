package dialog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"elizabot/app/config"
	"elizabot/app/service/behavior"
	"elizabot/app/service/conversation"

	"github.com/elliotchance/pie/v2"
)

// relayThinking emits paced thinking cues until the answer's first segment
// arrives, the cue budget runs out, or the thinking window closes.
// Cancellation is cooperative: it is checked before each cue and before each
// pause, never mid-emission.
func (s *Service) relayThinking(
	ctx context.Context,
	sink Sink,
	turn *TurnContext,
	decision *conversation.Decision,
	firstAnswer <-chan struct{},
) {
	pol := s.cfg.Thinking
	start := time.Now()
	deadline := start.Add(seconds(pol.MaxDurationSeconds))
	pause := seconds(pol.PauseSeconds)
	emitted := 0

	cancelled := func() bool {
		select {
		case <-firstAnswer:
			return true
		case <-ctx.Done():
			return true
		default:
			return false
		}
	}

	budgetExhausted := func() bool {
		return emitted >= pol.MaxCues || !time.Now().Before(deadline)
	}

	emitCue := func(text string) {
		cue := ThinkingCue{
			Text:     text,
			Action:   s.cueAction(decision, emitted),
			IssuedAt: time.Now(),
		}

		if err := sink.Act(ctx, cue.Action); err != nil {
			slog.Warn("Cue action failed, speech only", "error", err)
		}

		if err := sink.Speak(ctx, cue.Text); err != nil {
			// Degrade to silent thinking, the window still runs its course.
			slog.Warn("Cue speech failed, thinking silently", "error", err)
		} else {
			s.logSession("thinking", cue.Text)
		}

		emitted++
	}

	// Emit one cue and the inter-cue pause; false means stop relaying.
	step := func(text string) bool {
		if cancelled() || budgetExhausted() {
			return false
		}

		emitCue(text)

		if cancelled() || budgetExhausted() {
			return false
		}

		select {
		case <-firstAnswer:
			return false
		case <-ctx.Done():
			return false
		case <-time.After(pause):
			return true
		}
	}

	running := true

	if scripted := s.scriptedCueTexts(); len(scripted) > 0 {
		// Scripted behaviors replace model-generated notes entirely.
		for _, text := range scripted {
			if running = step(text); !running {
				break
			}
		}
	} else {
		for _, note := range decision.ThinkingNotes {
			if running = step(note); !running {
				break
			}
		}

		if running {
			cueStream := s.generator.StreamThinking(ctx, turn.Utterance, decision.ThinkingNotes)

			// Waiting for the next clause is a suspension point too: a slow
			// or stalled stream must not hold up a ready answer or outlive
			// the window.
			for running {
				select {
				case <-firstAnswer:
					running = false
				case <-ctx.Done():
					running = false
				case <-time.After(time.Until(deadline)):
					running = false
				case clause, ok := <-cueStream.Clauses():
					if !ok {
						if err := cueStream.Err(); err != nil {
							// Cue generation failure degrades to silent thinking.
							slog.Warn("Thinking stream failed", "error", err)
						}
						running = false
						break
					}
					if conversation.IsMeaningfulCue(clause) {
						running = step(clause)
					}
				}
			}
		}
	}

	// Pad with silence up to the minimum window, unless cancelled.
	minDuration := seconds(min(pol.MinDurationSeconds, pol.MaxDurationSeconds))
	if remaining := minDuration - time.Since(start); remaining > 0 && !cancelled() {
		select {
		case <-firstAnswer:
		case <-ctx.Done():
		case <-time.After(remaining):
		}
	}

	slog.Debug("Thinking window closed",
		"cues", emitted,
		"elapsed", time.Since(start))
}

// cueAction picks the expressive action for the i-th cue: configured
// scripted behaviors win, then the decision's behavior plan, then the
// default deliberation cycle.
func (s *Service) cueAction(decision *conversation.Decision, i int) behavior.Action {
	if n := len(s.cfg.Thinking.Behaviors); n > 0 {
		return behavior.FromScripted(s.cfg.Thinking.Behaviors[i%n])
	}

	if n := len(decision.BehaviorPlan); n > 0 {
		entry := decision.BehaviorPlan[i%n]
		action := behavior.ThinkingAction(i)

		if entry.Gesture != "" {
			action.Gesture = entry.Gesture
		}
		if entry.Expression != "" {
			action.Expression = entry.Expression
		}
		action.LookAt = entry.LookAt

		return action
	}

	return behavior.ThinkingAction(i)
}

func (s *Service) scriptedCueTexts() []string {
	return pie.Filter(
		pie.Map(s.cfg.Thinking.Behaviors, func(b config.ScriptedBehavior) string {
			return strings.TrimSpace(b.Utterance)
		}),
		func(text string) bool { return text != "" },
	)
}

// relayStoredCues replays recorded cues with the configured pacing. There is
// no generation race here, only the budgets and the context apply.
func (s *Service) relayStoredCues(ctx context.Context, sink Sink, cues []string) {
	pol := s.cfg.Thinking
	pause := seconds(pol.PauseSeconds)
	deadline := time.Now().Add(seconds(pol.MaxDurationSeconds))

	for i, text := range cues {
		if i >= pol.MaxCues || !time.Now().Before(deadline) {
			return
		}

		if err := sink.Act(ctx, behavior.ThinkingAction(i)); err != nil {
			slog.Warn("Stored cue action failed, speech only", "error", err)
		}
		if err := sink.Speak(ctx, text); err != nil {
			slog.Warn("Stored cue speech failed", "error", err)
			continue
		}
		s.logSession("thinking", text)

		select {
		case <-ctx.Done():
			return
		case <-time.After(pause):
		}
	}
}
