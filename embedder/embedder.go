package embedder

import (
	"context"
	"errors"
)

// ErrUnavailable wraps any transport or remote failure from the embedding
// provider. Callers decide whether to retry; this layer never does.
var ErrUnavailable = errors.New("embedding service unavailable")

type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
