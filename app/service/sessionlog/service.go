package sessionlog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/do"
)

var logFilePath = filepath.Join("data", "session.jsonl")

// Entry is one logged step of a turn.
type Entry struct {
	Timestamp string `json:"timestamp"`
	Label     string `json:"label"`
	Text      string `json:"text"`
}

// Service appends session transcript entries to a JSONL file. The file is
// truncated at startup so each run gets a fresh transcript.
type Service struct {
	mu sync.Mutex
}

func New(_ *do.Injector) (*Service, error) {
	_ = os.MkdirAll(filepath.Dir(logFilePath), 0755)

	file, err := os.Create(logFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create session log file: %w", err)
	}
	defer file.Close()

	return &Service{}, nil
}

// Append writes one labeled entry. Failures are logged, never fatal.
func (s *Service) Append(label, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Timestamp: time.Now().Format(time.RFC3339),
		Label:     label,
		Text:      text,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		slog.Warn("Failed to marshal session log entry", "error", err)
		return
	}

	file, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		slog.Warn("Failed to open session log file", "error", err)
		return
	}
	defer file.Close()

	if _, err = file.Write(append(data, '\n')); err != nil {
		slog.Warn("Failed to write session log entry", "error", err)
	}
}

func (s *Service) Close() error {
	return nil
}
