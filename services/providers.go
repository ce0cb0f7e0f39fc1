package services

import (
	"context"

	"github.com/maxagent/rag/models"
)

// Embedder maps text to a fixed-length vector. The vector must be the
// deterministic output of one model; mixing models within one index corrupts
// similarity semantics, which the index guards against via ModelName.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

// CompletionOptions are the per-request knobs of a completion call.
type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Completer turns an ordered message list into assistant text. Implementations
// translate transport failures into ErrCompletionFailure.
type Completer interface {
	Complete(ctx context.Context, messages []models.Message, opts CompletionOptions) (string, error)
}
