package conversation

import (
	"context"
	"log/slog"

	"github.com/tmc/langchaingo/callbacks"
)

var _ callbacks.Handler = (*logCallbackHandler)(nil)

// logCallbackHandler surfaces llm failures; everything else stays quiet.
type logCallbackHandler struct {
	callbacks.SimpleHandler
}

func (l logCallbackHandler) HandleLLMError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "LLM error", "error", err)
}

func (l logCallbackHandler) HandleChainError(ctx context.Context, err error) {
	slog.ErrorContext(ctx, "Chain error", "error", err)
}
