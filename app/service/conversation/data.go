package conversation

import (
	"strings"
	"sync"
	"time"

	"elizabot/app/config"

	"github.com/elliotchance/pie/v2"
)

const maxThinkingNotes = 4

// Decision is the controller's verdict for one user utterance.
type Decision struct {
	NeedThinking  bool        `json:"need_thinking"`
	Confidence    string      `json:"confidence"`
	ThinkingNotes []string    `json:"thinking_notes"`
	BehaviorPlan  []PlanEntry `json:"thinking_behavior_plan"`
	ReasoningHint string      `json:"reasoning_hint"`
	Answer        string      `json:"answer"`
}

// PlanEntry is one scripted step of the visible thinking behavior plan.
type PlanEntry struct {
	Gesture    string         `json:"gesture"`
	Expression string         `json:"expression"`
	LookAt     *config.LookAt `json:"look_at,omitempty"`
	Reason     string         `json:"reason,omitempty"`
}

func (e PlanEntry) IsEmpty() bool {
	return e.Gesture == "" && e.Expression == "" && e.LookAt == nil
}

// Normalize cleans up a model-produced decision so the orchestrator can
// iterate it safely.
func (d *Decision) Normalize() {
	d.Confidence = strings.ToLower(strings.TrimSpace(d.Confidence))
	d.Answer = strings.TrimSpace(d.Answer)
	d.ReasoningHint = strings.TrimSpace(d.ReasoningHint)

	d.ThinkingNotes = pie.Filter(
		pie.Map(d.ThinkingNotes, strings.TrimSpace),
		func(note string) bool { return note != "" },
	)
	if len(d.ThinkingNotes) > maxThinkingNotes {
		d.ThinkingNotes = d.ThinkingNotes[:maxThinkingNotes]
	}

	d.BehaviorPlan = pie.Filter(d.BehaviorPlan, func(e PlanEntry) bool {
		return !e.IsEmpty()
	})

	// An immediate answer and visible thinking are mutually exclusive.
	if d.Answer != "" {
		d.NeedThinking = false
	}
}

type State struct {
	mu sync.RWMutex

	dialogHistory DialogHistory
	lastReplyTime time.Time
}
