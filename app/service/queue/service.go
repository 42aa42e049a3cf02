package queue

import (
	"log/slog"
	"time"

	"github.com/samber/do"
)

const bufferSize = 16

var _ do.Shutdownable = (*Service)(nil)

// Service buffers heard utterances between the robot event layer and the
// turn loop.
type Service struct {
	queue chan Utterance
}

type Utterance struct {
	Text    string
	HeardAt time.Time
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Utterance, bufferSize),
	}, nil
}

func (s *Service) Add(text string) {
	// Add may race with Shutdown; a send on the closed queue is dropped.
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("utterance dropped after shutdown", "text", text)
		}
	}()

	select {
	case s.queue <- Utterance{Text: text, HeardAt: time.Now()}:
	default:
		slog.Warn("utterance queue is full")
	}
}

func (s *Service) Channel() <-chan Utterance {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)

	return nil
}
