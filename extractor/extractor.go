package extractor

import (
	"context"
	"errors"
)

// ErrUnsupportedFormat is returned when no provider understands the
// declared document type.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Extractor turns a raw document blob into plain text.
type Extractor interface {
	Extract(ctx context.Context, filename string, blob []byte) (string, error)
}
