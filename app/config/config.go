package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	OpenAI   OpenAI   `yaml:"openai"`
	Robot    Robot    `yaml:"robot"`
	Thinking Thinking `yaml:"thinking"`
	Replay   Replay   `yaml:"replay"`
}

type OpenAI struct {
	Controller ModelConfig `yaml:"controller" validate:"required"`
	Reasoning  ModelConfig `yaml:"reasoning" validate:"required"`
	Thinking   ModelConfig `yaml:"thinking" validate:"required"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1" validate:"required"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// OpenAI model
	Model string `yaml:"model" example:"gpt-4.1-mini" validate:"required"`
	// Sampling temperature
	Temperature float32 `yaml:"temperature" example:"0.4"`
}

type Robot struct {
	// Robot realtime API address
	Host string `yaml:"host" example:"192.168.1.114"`
	// Realtime API auth key
	AuthKey string `yaml:"auth_key"`
}

type Thinking struct {
	// Delay between thinking cues
	PauseSeconds float64 `yaml:"pause_seconds" example:"0.5"`
	// Lower bound of the visible thinking window
	MinDurationSeconds float64 `yaml:"min_duration_seconds" example:"8.0"`
	// Upper bound of the visible thinking window
	MaxDurationSeconds float64 `yaml:"max_duration_seconds" example:"10.0"`
	// Maximum number of cues per turn
	MaxCues int `yaml:"max_cues" example:"12"`
	// Pacing delay before a direct answer
	DirectResponseDelaySeconds float64 `yaml:"direct_response_delay_seconds" example:"0"`
	// Scripted behaviors that replace model-generated thinking actions
	Behaviors []ScriptedBehavior `yaml:"behaviors"`
}

type ScriptedBehavior struct {
	Utterance  string  `yaml:"utterance"`
	Gesture    string  `yaml:"gesture"`
	Expression string  `yaml:"expression"`
	LookAt     *LookAt `yaml:"look_at"`
}

type LookAt struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
	Z float64 `yaml:"z" json:"z"`
}

type Replay struct {
	// Path to the stored trials file
	Path string `yaml:"path" example:"data/trials.json"`
	// Minimum similarity score for a fuzzy match
	MatchThreshold float64 `yaml:"match_threshold" example:"0.6"`
	// Replay stored thinking cues on a hit
	ShowStoredCues bool `yaml:"show_stored_cues" example:"false"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

// Flags holds the parsed command line switches.
type Flags struct {
	// Serve answers exclusively from the replay store
	ReplayOnly bool
	// Ignore the replay store and always generate live
	NoTrials bool
	// Local REPL mode, no robot connection
	Console bool
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	applyDefaults(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Robot.Host == "" {
		cfg.Robot.Host = "127.0.0.1"
	}
	if cfg.Thinking.PauseSeconds == 0 {
		cfg.Thinking.PauseSeconds = 0.5
	}
	if cfg.Thinking.MinDurationSeconds == 0 {
		cfg.Thinking.MinDurationSeconds = 8.0
	}
	if cfg.Thinking.MaxDurationSeconds == 0 {
		cfg.Thinking.MaxDurationSeconds = 10.0
	}
	if cfg.Thinking.MaxCues == 0 {
		cfg.Thinking.MaxCues = 12
	}
	if cfg.Replay.Path == "" {
		cfg.Replay.Path = "data/trials.json"
	}
	if cfg.Replay.MatchThreshold == 0 {
		cfg.Replay.MatchThreshold = 0.6
	}
}
