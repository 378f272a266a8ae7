package generator

import (
	"context"
	"errors"
)

// ErrUnavailable wraps any transport or remote failure from the model
// provider, including failures that arrive mid-stream.
var ErrUnavailable = errors.New("generation service unavailable")

type Generator interface {
	Generate(ctx context.Context, messages []Message, temperature float32) (string, error)
	GenerateStream(ctx context.Context, messages []Message, temperature float32) (<-chan StreamChunk, error)
}
