package robot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventUnmarshal(t *testing.T) {
	var event Event

	raw := `{"type": "response.hear.end", "text": "what is your name"}`
	require.NoError(t, json.Unmarshal([]byte(raw), &event))

	assert.Equal(t, EventHearEnd, event.Type)
	assert.Equal(t, "what is your name", event.Text)
	assert.False(t, event.Aborted)
}

func TestEventUnmarshalAborted(t *testing.T) {
	var event Event

	raw := `{"type": "response.speak.end", "aborted": true}`
	require.NoError(t, json.Unmarshal([]byte(raw), &event))

	assert.Equal(t, EventSpeakEnd, event.Type)
	assert.True(t, event.Aborted)
}

func TestDefaultListenOptions(t *testing.T) {
	opts := DefaultListenOptions()

	assert.True(t, opts.Concat)
	assert.True(t, opts.StopRobotStart)
	assert.True(t, opts.ResumeRobotEnd)
	assert.Equal(t, 2.5, opts.EndSpeechTimeout)
}
