package engine

import (
	"testing"

	"elizabot/app/client/robot"
	"elizabot/app/service/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGatingService(t *testing.T) *Service {
	t.Helper()

	queueSvc, err := queue.New(nil)
	require.NoError(t, err)

	return &Service{queueSvc: queueSvc}
}

func drain(svc *Service) []string {
	var texts []string

	for {
		select {
		case utt := <-svc.queueSvc.Channel():
			texts = append(texts, utt.Text)
		default:
			return texts
		}
	}
}

func TestHeardInputIsQueued(t *testing.T) {
	svc := newGatingService(t)

	svc.handleEvent(robot.Event{Type: robot.EventHearEnd, Text: "hello there"})

	assert.Equal(t, []string{"hello there"}, drain(svc))
}

func TestInputDiscardedWhileSpeaking(t *testing.T) {
	svc := newGatingService(t)

	svc.handleEvent(robot.Event{Type: robot.EventSpeakStart})
	svc.handleEvent(robot.Event{Type: robot.EventHearEnd, Text: "ignored"})

	assert.Empty(t, drain(svc))

	// Speech end reopens the gate.
	svc.handleEvent(robot.Event{Type: robot.EventSpeakEnd})
	svc.handleEvent(robot.Event{Type: robot.EventHearEnd, Text: "heard"})

	assert.Equal(t, []string{"heard"}, drain(svc))
}

func TestInputDiscardedWhileTurnRunning(t *testing.T) {
	svc := newGatingService(t)

	svc.turnRunning.Store(true)
	svc.handleEvent(robot.Event{Type: robot.EventHearEnd, Text: "too early"})

	assert.Empty(t, drain(svc))
}

func TestEmptyInputIsIgnored(t *testing.T) {
	svc := newGatingService(t)

	svc.handleEvent(robot.Event{Type: robot.EventHearEnd, Text: "   "})

	assert.Empty(t, drain(svc))
}
