package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "127.0.0.1", cfg.Robot.Host)
	assert.Equal(t, 0.5, cfg.Thinking.PauseSeconds)
	assert.Equal(t, 8.0, cfg.Thinking.MinDurationSeconds)
	assert.Equal(t, 10.0, cfg.Thinking.MaxDurationSeconds)
	assert.Equal(t, 12, cfg.Thinking.MaxCues)
	assert.Equal(t, "data/trials.json", cfg.Replay.Path)
	assert.Equal(t, 0.6, cfg.Replay.MatchThreshold)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Thinking.MinDurationSeconds = 1.5
	cfg.Thinking.MaxCues = 3
	cfg.Replay.MatchThreshold = 0.8

	applyDefaults(cfg)

	assert.Equal(t, 1.5, cfg.Thinking.MinDurationSeconds)
	assert.Equal(t, 3, cfg.Thinking.MaxCues)
	assert.Equal(t, 0.8, cfg.Replay.MatchThreshold)
}
