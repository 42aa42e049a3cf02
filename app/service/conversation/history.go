package conversation

import (
	"fmt"
	"strings"
	"time"
)

const historySize = 20

type dialogTurn struct {
	Role      string
	Text      string
	Timestamp time.Time
}

// DialogHistory is a bounded transcript of the conversation so far.
type DialogHistory struct {
	turns []dialogTurn
}

func (h *DialogHistory) add(role, text string) {
	turn := dialogTurn{
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	}

	if len(h.turns) >= historySize {
		h.turns = append(h.turns[1:], turn)
	} else {
		h.turns = append(h.turns, turn)
	}
}

func (h *DialogHistory) format() string {
	if len(h.turns) == 0 {
		return "No conversation yet"
	}

	var builder strings.Builder

	for _, turn := range h.turns {
		builder.WriteString(fmt.Sprintf("%s - %s: %s\n", formatTime(turn.Timestamp), turn.Role, turn.Text))
	}

	return builder.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return t.Format("15:04:05")
}
