package conversation

import (
	"context"
	"fmt"
	"time"

	"elizabot/app/config"

	"github.com/samber/do"
)

const (
	maxReasonDuration     = 30 * time.Second
	controllerTemperature = 0.2
)

// Service bundles the decision agent and the two streaming generators behind
// one conversational front.
type Service struct {
	cfg *config.Config

	decisionAgent     *DecisionAgent
	thinkingStreamer  *SentenceStreamer
	reasoningStreamer *SentenceStreamer
	state             *State
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	var state State

	thinkingStreamer, err := NewSentenceStreamer(cfg.OpenAI.Thinking, thinkingSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to create thinking streamer: %w", err)
	}

	reasoningStreamer, err := NewSentenceStreamer(cfg.OpenAI.Reasoning, reasoningSystemPrompt)
	if err != nil {
		return nil, fmt.Errorf("failed to create reasoning streamer: %w", err)
	}

	return &Service{
		cfg:               cfg,
		decisionAgent:     NewDecisionAgent(cfg, &state),
		thinkingStreamer:  thinkingStreamer,
		reasoningStreamer: reasoningStreamer,
		state:             &state,
	}, nil
}

// Decide asks the controller what to do with the utterance.
func (s *Service) Decide(ctx context.Context, utterance string) (*Decision, error) {
	return s.decisionAgent.Call(ctx, utterance)
}

// StreamThinking starts the visible-thinking generator.
func (s *Service) StreamThinking(ctx context.Context, utterance string, notes []string) *ClauseStream {
	return s.thinkingStreamer.Stream(ctx, buildThinkingPrompt(utterance, notes))
}

// StreamAnswer starts the reasoning generator for the final answer.
func (s *Service) StreamAnswer(ctx context.Context, utterance, hint, confidenceHint string) *ClauseStream {
	return s.reasoningStreamer.Stream(ctx, buildReasoningPrompt(utterance, hint, confidenceHint))
}

// CommitUser records a user utterance in the dialog history.
func (s *Service) CommitUser(text string) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	s.state.dialogHistory.add("user", text)
}

// CommitRobot records a finished robot reply in the dialog history.
func (s *Service) CommitRobot(text string) {
	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	s.state.dialogHistory.add("robot", text)
	s.state.lastReplyTime = time.Now()
}

func (s *Service) Close() error {
	return nil
}
