package engine

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"elizabot/app/client/robot"
	"elizabot/app/config"
	"elizabot/app/service/dialog"
	"elizabot/app/service/queue"

	"github.com/samber/do"
)

const greeting = "I am Elizabeth, a robot that shows visible thinking. " +
	"I will answer your questions: I will think first, then give a conclusion and a brief reason."

const reconnectDelay = time.Minute

// Service runs the main loop: it feeds heard utterances into the
// orchestrator one turn at a time and gates input while the robot speaks.
type Service struct {
	cfg   *config.Config
	flags config.Flags

	robotClient *robot.Client
	dialogSvc   *dialog.Service
	queueSvc    *queue.Service

	// Input gating: toggled by the robot's speak events, not by the
	// orchestrator.
	speaking    atomic.Bool
	turnRunning atomic.Bool
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:         do.MustInvoke[*config.Config](di),
		flags:       do.MustInvoke[config.Flags](di),
		robotClient: do.MustInvoke[*robot.Client](di),
		dialogSvc:   do.MustInvoke[*dialog.Service](di),
		queueSvc:    do.MustInvoke[*queue.Service](di),
	}, nil
}

func (s *Service) Run(ctx context.Context) {
	if s.flags.Console {
		s.runConsole(ctx)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := s.runIteration(ctx); err != nil {
			slog.Error("Error running iteration", "error", err)
			time.Sleep(reconnectDelay)
		}
	}
}

func (s *Service) runIteration(ctx context.Context) error {
	if err := s.robotClient.Connect(ctx); err != nil {
		return fmt.Errorf("could not connect to robot: %w", err)
	}
	defer s.robotClient.Disconnect()

	s.robotClient.SetListener(s.handleEvent)

	sink := &robotSink{client: s.robotClient}

	if err := s.robotClient.AttendUser(); err != nil {
		return fmt.Errorf("could not attend user: %w", err)
	}

	if err := sink.Speak(ctx, greeting); err != nil {
		return fmt.Errorf("could not greet: %w", err)
	}

	if err := s.robotClient.ListenStart(robot.DefaultListenOptions()); err != nil {
		return fmt.Errorf("could not start listening: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.robotClient.Done():
			return fmt.Errorf("robot connection lost")
		case utt, ok := <-s.queueSvc.Channel():
			if !ok {
				return nil
			}

			s.runTurn(ctx, sink, utt.Text)
		}
	}
}

func (s *Service) runTurn(ctx context.Context, sink dialog.Sink, text string) {
	s.turnRunning.Store(true)
	defer s.turnRunning.Store(false)

	s.dialogSvc.RunTurn(ctx, sink, text)
}

func (s *Service) handleEvent(event robot.Event) {
	switch event.Type {
	case robot.EventHearEnd:
		text := strings.TrimSpace(event.Text)
		if text == "" {
			return
		}

		// Input heard while the robot speaks or a turn is still running is
		// discarded, not queued.
		if s.speaking.Load() || s.turnRunning.Load() {
			slog.Debug("Discarding input mid-turn", "text", text)
			return
		}

		s.queueSvc.Add(text)

	case robot.EventHearStart:
		slog.Debug("User started speaking")

	case robot.EventSpeakStart:
		s.speaking.Store(true)

	case robot.EventSpeakEnd:
		s.speaking.Store(false)
		if event.Aborted {
			slog.Debug("Robot speech interrupted", "text", event.Text)
		}
	}
}

// runConsole is a local REPL without a robot connection.
func (s *Service) runConsole(ctx context.Context) {
	sink := &consoleSink{}

	fmt.Println("Robot:", greeting)
	fmt.Println("Type a question, or exit/quit to stop.")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\nYou> ")

		if !scanner.Scan() {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "exit" || text == "quit" {
			return
		}

		s.dialogSvc.RunTurn(ctx, sink, text)
	}
}
