package dialog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"elizabot/app/config"
	"elizabot/app/service/behavior"
	"elizabot/app/service/conversation"
	"elizabot/app/service/replay"

	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sinkEvent struct {
	kind string // "speak" or "act"
	text string
}

type fakeSink struct {
	mu     sync.Mutex
	events []sinkEvent
}

func (s *fakeSink) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, sinkEvent{kind: "speak", text: text})

	return nil
}

func (s *fakeSink) Act(_ context.Context, _ behavior.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, sinkEvent{kind: "act"})

	return nil
}

func (s *fakeSink) speaks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []string
	for _, ev := range s.events {
		if ev.kind == "speak" {
			result = append(result, ev.text)
		}
	}

	return result
}

type fakeDecider struct {
	decision *conversation.Decision
	err      error
	calls    atomic.Int32
}

func (d *fakeDecider) Decide(_ context.Context, _ string) (*conversation.Decision, error) {
	d.calls.Add(1)

	if d.err != nil {
		return nil, d.err
	}

	decision := *d.decision

	return &decision, nil
}

type fakeGenerator struct {
	answer        func() *conversation.ClauseStream
	thinking      func() *conversation.ClauseStream
	thinkingCalls atomic.Int32
}

func (g *fakeGenerator) StreamAnswer(_ context.Context, _, _, _ string) *conversation.ClauseStream {
	return g.answer()
}

func (g *fakeGenerator) StreamThinking(_ context.Context, _ string, _ []string) *conversation.ClauseStream {
	g.thinkingCalls.Add(1)

	if g.thinking != nil {
		return g.thinking()
	}

	return conversation.NewLiteralStream("")
}

func literalAnswer(text string) func() *conversation.ClauseStream {
	return func() *conversation.ClauseStream {
		return conversation.NewLiteralStream(text)
	}
}

// delayedAnswer emits one clause after the given delay.
func delayedAnswer(delay time.Duration, text string) func() *conversation.ClauseStream {
	return func() *conversation.ClauseStream {
		stream, producer := conversation.NewProducerStream()

		go func() {
			time.Sleep(delay)
			producer.Emit(text)
			producer.Close(nil)
		}()

		return stream
	}
}

// stalledStream never emits and never closes.
func stalledStream() func() *conversation.ClauseStream {
	return func() *conversation.ClauseStream {
		stream, _ := conversation.NewProducerStream()

		return stream
	}
}

func failedAnswer(err error) func() *conversation.ClauseStream {
	return func() *conversation.ClauseStream {
		stream, producer := conversation.NewProducerStream()
		producer.Close(err)

		return stream
	}
}

func newReplayService(t *testing.T, storeContent string) *replay.Service {
	t.Helper()

	path := filepath.Join(t.TempDir(), "trials.json")
	if storeContent != "" {
		require.NoError(t, os.WriteFile(path, []byte(storeContent), 0644))
	}

	cfg := &config.Config{}
	cfg.Replay.Path = path
	cfg.Replay.MatchThreshold = 0.6

	di := do.New()
	do.ProvideValue(di, cfg)

	svc, err := replay.New(di)
	require.NoError(t, err)

	return svc
}

func testConfig() *config.Config {
	return &config.Config{
		Thinking: config.Thinking{
			PauseSeconds:       0.02,
			MinDurationSeconds: 0.05,
			MaxDurationSeconds: 2.0,
			MaxCues:            12,
		},
		Replay: config.Replay{MatchThreshold: 0.6},
	}
}

func newTestService(
	cfg *config.Config,
	flags config.Flags,
	replaySvc *replay.Service,
	decider Decider,
	generator Generator,
) *Service {
	return newService(cfg, flags, replaySvc, decider, generator, nil, nil)
}

const storedTrials = `[
	{"question": "What is your name?", "answer": "I'm Elizabeth. Do you have another question?", "final_confidence": "high"}
]`

func TestReplayHitSkipsDecisionProvider(t *testing.T) {
	decider := &fakeDecider{decision: &conversation.Decision{}}
	generator := &fakeGenerator{answer: literalAnswer("should not be used")}

	svc := newTestService(testConfig(), config.Flags{}, newReplayService(t, storedTrials), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "What is your name?")

	assert.Equal(t, int32(0), decider.calls.Load())
	assert.Equal(t, int32(0), generator.thinkingCalls.Load())
	assert.Equal(t,
		[]string{"I'm Elizabeth.", "Do you have another question?"},
		sink.speaks())
}

func TestReplayOnlyMissSpeaksFixedMessage(t *testing.T) {
	decider := &fakeDecider{decision: &conversation.Decision{}}
	generator := &fakeGenerator{answer: literalAnswer("never generated")}

	svc := newTestService(testConfig(), config.Flags{ReplayOnly: true}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "Anything at all?")

	assert.Equal(t, int32(0), decider.calls.Load())
	assert.Equal(t, []string{NoStoredAnswerText}, sink.speaks())
}

func TestNoTrialsBypassesReplay(t *testing.T) {
	decider := &fakeDecider{decision: &conversation.Decision{Confidence: "high", Answer: "Fresh answer."}}
	generator := &fakeGenerator{answer: literalAnswer("unused")}

	svc := newTestService(testConfig(), config.Flags{NoTrials: true}, newReplayService(t, storedTrials), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "What is your name?")

	assert.Equal(t, int32(1), decider.calls.Load())
	assert.Equal(t, []string{"Fresh answer.", ClosingSegmentText}, sink.speaks())
}

func TestDirectAnswerNeverStartsCues(t *testing.T) {
	decider := &fakeDecider{decision: &conversation.Decision{
		Confidence: "medium",
		Answer:     "Paris is the capital of France.",
	}}
	generator := &fakeGenerator{answer: literalAnswer("unused")}

	svc := newTestService(testConfig(), config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "Capital of France?")

	assert.Equal(t, int32(0), generator.thinkingCalls.Load())
	assert.Equal(t,
		[]string{"Paris is the capital of France.", ClosingSegmentText},
		sink.speaks())
}

func TestThinkingCueBudget(t *testing.T) {
	cfg := testConfig()
	cfg.Thinking.MaxCues = 2
	cfg.Thinking.PauseSeconds = 0.02
	cfg.Thinking.MinDurationSeconds = 0.08

	decider := &fakeDecider{decision: &conversation.Decision{
		NeedThinking:  true,
		Confidence:    "medium",
		ThinkingNotes: []string{"Weighing options", "Comparing outcomes", "Checking edge cases"},
	}}
	generator := &fakeGenerator{
		answer: delayedAnswer(300*time.Millisecond, "The answer is yes."),
	}

	svc := newTestService(cfg, config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "A hard question?")

	speaks := sink.speaks()
	require.GreaterOrEqual(t, len(speaks), 3)

	// Exactly max_cues cues, then the answer, then the closing line.
	assert.Equal(t, []string{"Weighing options", "Comparing outcomes"}, speaks[:2])
	assert.Contains(t, speaks[2], "The answer is yes.")
	assert.Equal(t, ClosingSegmentText, speaks[len(speaks)-1])
}

func TestFirstAnswerSegmentCancelsCues(t *testing.T) {
	cfg := testConfig()
	cfg.Thinking.PauseSeconds = 0.05
	cfg.Thinking.MinDurationSeconds = 5.0
	cfg.Thinking.MaxDurationSeconds = 5.0

	decider := &fakeDecider{decision: &conversation.Decision{
		NeedThinking:  true,
		Confidence:    "high",
		ThinkingNotes: []string{"One", "Two", "Three", "Four"},
	}}
	generator := &fakeGenerator{
		answer: delayedAnswer(120*time.Millisecond, "Done."),
	}

	svc := newTestService(cfg, config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	start := time.Now()
	svc.RunTurn(context.Background(), sink, "Quick one?")
	elapsed := time.Since(start)

	// The min-duration floor is abandoned once the answer is ready.
	assert.Less(t, elapsed, 2*time.Second)

	speaks := sink.speaks()
	answerIndex := -1
	for i, text := range speaks {
		if strings.Contains(text, "Done.") {
			answerIndex = i
			break
		}
	}
	require.GreaterOrEqual(t, answerIndex, 1, "expected at least one cue before the answer")

	// No cue may follow the first answer segment.
	for _, text := range speaks[answerIndex+1:] {
		assert.Equal(t, ClosingSegmentText, text)
	}
}

func TestFirstAnswerUnblocksStalledCueWait(t *testing.T) {
	cfg := testConfig()
	cfg.Thinking.MinDurationSeconds = 5.0
	cfg.Thinking.MaxDurationSeconds = 5.0

	// No notes: the cue relay goes straight to waiting on a stream that
	// never produces. The ready answer must not be held up by it.
	decider := &fakeDecider{decision: &conversation.Decision{
		NeedThinking: true,
		Confidence:   "high",
	}}
	generator := &fakeGenerator{
		answer:   delayedAnswer(50*time.Millisecond, "Ready."),
		thinking: stalledStream(),
	}

	svc := newTestService(cfg, config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	start := time.Now()
	svc.RunTurn(context.Background(), sink, "Slow muse?")
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 2*time.Second)

	speaks := sink.speaks()
	require.NotEmpty(t, speaks)
	assert.Contains(t, speaks[0], "Ready.")
	assert.Equal(t, int32(1), generator.thinkingCalls.Load())
}

func TestStalledCueStreamBoundedByWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Thinking.MinDurationSeconds = 0.05
	cfg.Thinking.MaxDurationSeconds = 0.1

	decider := &fakeDecider{decision: &conversation.Decision{
		NeedThinking: true,
		Confidence:   "medium",
	}}
	generator := &fakeGenerator{
		answer:   delayedAnswer(300*time.Millisecond, "Late."),
		thinking: stalledStream(),
	}

	svc := newTestService(cfg, config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	start := time.Now()
	svc.RunTurn(context.Background(), sink, "Still there?")
	elapsed := time.Since(start)

	// The relay gives up at the window ceiling; the turn finishes once the
	// answer lands.
	assert.Less(t, elapsed, 2*time.Second)

	speaks := sink.speaks()
	require.NotEmpty(t, speaks)
	assert.Contains(t, speaks[0], "Late.")
}

func TestStoredCueReplayHonorsWindow(t *testing.T) {
	cfg := testConfig()
	cfg.Replay.ShowStoredCues = true
	cfg.Thinking.PauseSeconds = 0.1
	cfg.Thinking.MaxDurationSeconds = 0.02

	store := `[{"question": "What is time?", "answer": "Stored.",
		"thinking_cues": ["c1", "c2", "c3", "c4", "c5"],
		"final_confidence": "high"}]`

	decider := &fakeDecider{decision: &conversation.Decision{}}
	generator := &fakeGenerator{answer: literalAnswer("unused")}

	svc := newTestService(cfg, config.Flags{}, newReplayService(t, store), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "What is time?")

	// Only the first stored cue fits inside the window.
	assert.Equal(t, []string{"c1", "Stored.", ClosingSegmentText}, sink.speaks())
}

func TestDecisionFailureStillAnswers(t *testing.T) {
	decider := &fakeDecider{err: errors.New("transport exploded")}
	generator := &fakeGenerator{answer: literalAnswer("Fallback generation works.")}

	svc := newTestService(testConfig(), config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "Will this crash?")

	speaks := sink.speaks()
	require.NotEmpty(t, speaks)
	assert.Equal(t, int32(0), generator.thinkingCalls.Load())
	assert.Contains(t, speaks[0], "Fallback generation works.")
	assert.Equal(t, ClosingSegmentText, speaks[len(speaks)-1])
}

func TestGenerationFailureSpeaksApology(t *testing.T) {
	decider := &fakeDecider{decision: &conversation.Decision{Confidence: "medium"}}
	generator := &fakeGenerator{answer: failedAnswer(errors.New("stream died"))}

	svc := newTestService(testConfig(), config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "Tell me something?")

	speaks := sink.speaks()
	require.Len(t, speaks, 2)
	assert.Equal(t, "I'm sorry, I can't provide an answer at the moment.", speaks[0])
	assert.Equal(t, ClosingSegmentText, speaks[1])
}

func TestConfidenceDerivedFromAnswerLength(t *testing.T) {
	// No explicit confidence: a short answer maps to the high tier and its
	// prefix.
	decider := &fakeDecider{decision: &conversation.Decision{}}
	generator := &fakeGenerator{answer: literalAnswer("Yes.")}

	svc := newTestService(testConfig(), config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "Is water wet?")

	speaks := sink.speaks()
	require.NotEmpty(t, speaks)
	assert.Equal(t, "I'm confident that Yes.", speaks[0])
}

func TestExplicitConfidencePrefixOnLiveAnswer(t *testing.T) {
	decider := &fakeDecider{decision: &conversation.Decision{Confidence: "low"}}
	generator := &fakeGenerator{answer: literalAnswer("It might rain. It might not.")}

	svc := newTestService(testConfig(), config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "Will it rain?")

	speaks := sink.speaks()
	require.GreaterOrEqual(t, len(speaks), 3)
	assert.Equal(t, "I'm not entirely sure, but It might rain.", speaks[0])
	assert.Equal(t, "It might not.", speaks[1])
}

func TestEmptyUtteranceIsIgnored(t *testing.T) {
	decider := &fakeDecider{decision: &conversation.Decision{}}
	generator := &fakeGenerator{answer: literalAnswer("unused")}

	svc := newTestService(testConfig(), config.Flags{}, newReplayService(t, ""), decider, generator)

	sink := &fakeSink{}
	svc.RunTurn(context.Background(), sink, "   ")

	assert.Empty(t, sink.speaks())
	assert.Equal(t, int32(0), decider.calls.Load())
}
