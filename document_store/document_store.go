package documentstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by Get for ids that are not in the index.
	ErrNotFound = errors.New("document not found")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the index dimension. The dimension is fixed by WithDimension or by the
	// first inserted record.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Store holds (id, vector, content) records and answers ranked cosine
// similarity queries over them.
type Store interface {
	Insert(ctx context.Context, content string, metadata map[string]any, embedding []float32) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Record, error)
	Search(ctx context.Context, embedding []float32, limit int) ([]Record, error)
}
