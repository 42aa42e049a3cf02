package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"elizabot/app/config"

	"github.com/sashabaranov/go-openai"
)

type DecisionAgent struct {
	cfg *config.Config

	client *openai.Client
	model  string

	state *State
}

func NewDecisionAgent(cfg *config.Config, state *State) *DecisionAgent {
	return &DecisionAgent{
		cfg:    cfg,
		client: createClient(cfg.OpenAI.Controller),
		model:  cfg.OpenAI.Controller.Model,
		state:  state,
	}
}

func (a *DecisionAgent) Call(ctx context.Context, question string) (*Decision, error) {
	a.state.mu.RLock()
	historyStr := a.state.dialogHistory.format()
	a.state.mu.RUnlock()

	prompt := renderTemplate(controllerPromptTemplate, map[string]any{
		"question": question,
		"history":  historyStr,
	})

	ctx, cancel := context.WithTimeout(ctx, maxReasonDuration)
	defer cancel()

	aiResponse, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxCompletionTokens: 1000,
			Temperature:         controllerTemperature,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}

	if len(aiResponse.Choices) == 0 {
		return nil, fmt.Errorf("no chat completion found")
	}

	return parseDecision(aiResponse.Choices[0].Message.Content)
}

// parseDecision strips markdown fencing some models wrap JSON in, then
// unmarshals and normalizes the decision.
func parseDecision(raw string) (*Decision, error) {
	result := strings.Trim(raw, "`")
	result = strings.TrimSpace(result)
	result = strings.TrimPrefix(result, "json")
	result = strings.TrimSpace(result)

	var decision Decision
	if err := json.Unmarshal([]byte(result), &decision); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
	}

	decision.Normalize()

	return &decision, nil
}
