package dialog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"elizabot/app/config"
	"elizabot/app/service/behavior"
	"elizabot/app/service/conversation"
	"elizabot/app/service/replay"
	"elizabot/app/service/sessionlog"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

// Service is the turn orchestrator: it arbitrates between replay, direct
// answers, and the visible-thinking path, and serializes all output to the
// sink.
type Service struct {
	cfg   *config.Config
	flags config.Flags

	replaySvc  *replay.Service
	decider    Decider
	generator  Generator
	recorder   Recorder
	sessionSvc *sessionlog.Service
}

func New(di *do.Injector) (*Service, error) {
	convSvc := do.MustInvoke[*conversation.Service](di)

	return newService(
		do.MustInvoke[*config.Config](di),
		do.MustInvoke[config.Flags](di),
		do.MustInvoke[*replay.Service](di),
		convSvc,
		convSvc,
		convSvc,
		do.MustInvoke[*sessionlog.Service](di),
	), nil
}

func newService(
	cfg *config.Config,
	flags config.Flags,
	replaySvc *replay.Service,
	decider Decider,
	generator Generator,
	recorder Recorder,
	sessionSvc *sessionlog.Service,
) *Service {
	return &Service{
		cfg:        cfg,
		flags:      flags,
		replaySvc:  replaySvc,
		decider:    decider,
		generator:  generator,
		recorder:   recorder,
		sessionSvc: sessionSvc,
	}
}

// RunTurn handles one user utterance end to end. Failures are contained:
// the turn always produces spoken output and returns.
func (s *Service) RunTurn(ctx context.Context, sink Sink, utterance string) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	turn := &TurnContext{
		Utterance: utterance,
		StartedAt: time.Now(),
	}

	s.logSession("user", utterance)
	if s.recorder != nil {
		s.recorder.CommitUser(utterance)
	}

	spoken := s.runStates(ctx, sink, turn)

	if s.recorder != nil && spoken != "" {
		s.recorder.CommitRobot(spoken)
	}

	slog.Info("Turn finished",
		"mode", turn.Mode,
		"utterance", utterance,
		"duration", time.Since(turn.StartedAt))
}

func (s *Service) runStates(ctx context.Context, sink Sink, turn *TurnContext) string {
	if !s.flags.NoTrials {
		if rec, score, ok := s.replaySvc.Lookup(turn.Utterance); ok {
			turn.Mode = ModeReplay
			slog.Info("Replay hit", "question", rec.Question, "score", score)

			return s.runReplay(ctx, sink, rec)
		}
	}

	if s.flags.ReplayOnly {
		turn.Mode = ModeReplay
		s.emitSegment(ctx, sink, AnswerSegment{
			Text:       NoStoredAnswerText,
			Confidence: behavior.ConfidenceMedium,
			Action:     behavior.ForConfidence(behavior.ConfidenceMedium).Action,
			IsFirst:    true,
		})

		return NoStoredAnswerText
	}

	decision, err := s.decider.Decide(ctx, turn.Utterance)
	if err != nil {
		slog.Error("Decision failed, degrading to direct answer", "error", err)
		decision = &conversation.Decision{Confidence: string(behavior.ConfidenceLow)}
	}

	s.logSession("decision", fmt.Sprintf(
		"need_thinking=%t confidence=%s notes=%d",
		decision.NeedThinking, decision.Confidence, len(decision.ThinkingNotes)))

	switch {
	case decision.Answer != "":
		turn.Mode = ModeDirect
		s.pacingDelay()

		return s.relayAnswer(ctx, sink, answerInput{
			stream:         conversation.NewLiteralStream(decision.Answer),
			confidenceHint: decision.Confidence,
			verbatim:       true,
		})

	case decision.NeedThinking:
		turn.Mode = ModeThinking

		return s.runThinking(ctx, sink, turn, decision)

	default:
		turn.Mode = ModeDirect

		return s.relayAnswer(ctx, sink, answerInput{
			stream:         s.generator.StreamAnswer(ctx, turn.Utterance, decision.ReasoningHint, decision.Confidence),
			confidenceHint: decision.Confidence,
		})
	}
}

func (s *Service) runReplay(ctx context.Context, sink Sink, rec *replay.Record) string {
	if s.cfg.Replay.ShowStoredCues {
		s.relayStoredCues(ctx, sink, rec.ThinkingCues)
	}

	return s.relayAnswer(ctx, sink, answerInput{
		stream:         conversation.NewLiteralStream(rec.Answer),
		confidenceHint: rec.FinalConfidence,
		verbatim:       true,
	})
}

// runThinking races the cue relay against answer generation. The first
// answer segment cancels the cues; the in-flight cue finishes, then the
// answer takes over the sink.
func (s *Service) runThinking(ctx context.Context, sink Sink, turn *TurnContext, decision *conversation.Decision) string {
	answerStream := s.generator.StreamAnswer(ctx, turn.Utterance, decision.ReasoningHint, decision.Confidence)

	firstAnswer := make(chan struct{})
	thinkingDone := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(thinkingDone)
		s.relayThinking(gctx, sink, turn, decision, firstAnswer)

		return nil
	})

	spoken := s.relayAnswer(ctx, sink, answerInput{
		stream:         answerStream,
		confidenceHint: decision.Confidence,
		gate: &answerGate{
			firstAnswer:  firstAnswer,
			thinkingDone: thinkingDone,
		},
	})

	_ = g.Wait()

	return spoken
}

func (s *Service) pacingDelay() {
	delay := seconds(s.cfg.Thinking.DirectResponseDelaySeconds)
	if delay <= 0 {
		return
	}

	// A pure pacing delay, deliberately not cut short by new input.
	time.Sleep(delay)
}

// emitSegment sends one answer segment to the sink. An action failure
// degrades to speech-only output.
func (s *Service) emitSegment(ctx context.Context, sink Sink, seg AnswerSegment) {
	if err := sink.Act(ctx, seg.Action); err != nil {
		slog.Warn("Segment action failed, speech only", "error", err)
	}

	if err := sink.Speak(ctx, seg.Text); err != nil {
		slog.Error("Segment speech failed", "text", seg.Text, "error", err)
		return
	}

	s.logSession("robot", seg.Text)
}

func (s *Service) logSession(label, text string) {
	if s.sessionSvc != nil {
		s.sessionSvc.Append(label, text)
	}
}
