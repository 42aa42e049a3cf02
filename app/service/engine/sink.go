package engine

import (
	"context"
	"fmt"
	"log/slog"

	"elizabot/app/client/robot"
	"elizabot/app/service/behavior"
	"elizabot/app/service/dialog"
)

const (
	gestureIntensity = 0.7
	gestureDuration  = 1.0
)

var _ dialog.Sink = (*robotSink)(nil)

// robotSink adapts the websocket client to the orchestrator's sink contract.
type robotSink struct {
	client *robot.Client
}

func (s *robotSink) Speak(_ context.Context, text string) error {
	return s.client.SpeakText(text)
}

func (s *robotSink) Act(_ context.Context, action behavior.Action) error {
	if action.Gesture != "" {
		if err := s.client.Gesture(action.Gesture, gestureIntensity, gestureDuration); err != nil {
			return fmt.Errorf("failed to run gesture %q: %w", action.Gesture, err)
		}
	}

	if action.Expression != "" {
		if err := s.client.Gesture(action.Expression, gestureIntensity, gestureDuration); err != nil {
			return fmt.Errorf("failed to run expression %q: %w", action.Expression, err)
		}
	}

	if action.Led != "" {
		if err := s.client.LedSet(action.Led); err != nil {
			return fmt.Errorf("failed to set led: %w", err)
		}
	}

	return nil
}

var _ dialog.Sink = (*consoleSink)(nil)

// consoleSink prints output locally, for running without a robot.
type consoleSink struct{}

func (s *consoleSink) Speak(_ context.Context, text string) error {
	fmt.Println("Robot:", text)

	return nil
}

func (s *consoleSink) Act(_ context.Context, action behavior.Action) error {
	slog.Debug("Action",
		"gesture", action.Gesture,
		"expression", action.Expression,
		"led", action.Led)

	return nil
}
