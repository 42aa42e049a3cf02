package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"elizabot/app/config"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

const clauseBufferSize = 32

// ClauseStream delivers sentence-like segments as they are produced. The
// channel is closed when the producer finishes; Err reports any failure
// after that.
type ClauseStream struct {
	ch chan string

	mu        sync.Mutex
	wordCount int
	err       error
}

func newClauseStream() *ClauseStream {
	return &ClauseStream{
		ch: make(chan string, clauseBufferSize),
	}
}

// NewLiteralStream wraps an already-known answer (replay or direct case) in
// the same shape a live generator produces.
func NewLiteralStream(text string) *ClauseStream {
	clauses := SplitClauses(text)

	stream := &ClauseStream{
		ch:        make(chan string, len(clauses)),
		wordCount: WordCount(text),
	}

	for _, clause := range clauses {
		stream.ch <- clause
	}
	close(stream.ch)

	return stream
}

// NewProducerStream returns a stream fed by an arbitrary incremental
// producer, for answer sources that are not chat completions.
func NewProducerStream() (*ClauseStream, *Producer) {
	stream := newClauseStream()

	return stream, &Producer{stream: stream}
}

// Producer is the write side of a producer-fed ClauseStream.
type Producer struct {
	stream *ClauseStream
	words  int
}

// Emit delivers one complete clause to the consumer.
func (p *Producer) Emit(clause string) {
	p.words += WordCount(clause)
	p.stream.setWordCount(p.words)
	p.stream.ch <- clause
}

// Close ends the stream; a non-nil err marks it failed.
func (p *Producer) Close(err error) {
	if err != nil {
		p.stream.fail(err)
	}
	close(p.stream.ch)
}

func (s *ClauseStream) Clauses() <-chan string {
	return s.ch
}

// Err is valid once the clause channel has been closed.
func (s *ClauseStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// WordCount returns the number of words produced so far.
func (s *ClauseStream) WordCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.wordCount
}

func (s *ClauseStream) setWordCount(n int) {
	s.mu.Lock()
	s.wordCount = n
	s.mu.Unlock()
}

func (s *ClauseStream) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// SentenceStreamer turns a streaming chat completion into sentence-level
// segments.
type SentenceStreamer struct {
	llm          *lcopenai.LLM
	systemPrompt string
	temperature  float64
}

func NewSentenceStreamer(cfg config.ModelConfig, systemPrompt string) (*SentenceStreamer, error) {
	llm, err := createLLM(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm: %w", err)
	}

	return &SentenceStreamer{
		llm:          llm,
		systemPrompt: systemPrompt,
		temperature:  float64(cfg.Temperature),
	}, nil
}

// Stream starts generation and returns immediately; clauses arrive on the
// stream as sentence boundaries are detected in the token flow.
func (s *SentenceStreamer) Stream(ctx context.Context, userContent string) *ClauseStream {
	stream := newClauseStream()

	go s.produce(ctx, userContent, stream)

	return stream
}

func (s *SentenceStreamer) produce(ctx context.Context, userContent string, stream *ClauseStream) {
	defer close(stream.ch)

	var accumulated strings.Builder
	var buffer string

	emit := func(clause string) error {
		select {
		case stream.ch <- clause:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, s.systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userContent),
	}

	_, err := s.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(s.temperature),
		llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
			accumulated.Write(chunk)
			stream.setWordCount(WordCount(accumulated.String()))

			buffer += string(chunk)

			ready, remainder := popClauses(buffer)
			buffer = remainder

			for _, clause := range ready {
				if err := emit(clause); err != nil {
					return err
				}
			}

			return nil
		}),
	)
	if err != nil {
		stream.fail(fmt.Errorf("failed to stream completion: %w", err))
		return
	}

	if remainder := strings.TrimSpace(buffer); remainder != "" {
		if err := emit(remainder); err != nil {
			stream.fail(err)
		}
	}
}
