package text

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/w-h-a/ragchat/extractor"
)

type textExtractor struct{}

func (e *textExtractor) Extract(ctx context.Context, filename string, blob []byte) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))

	switch ext {
	case "txt", "md", "text", "":
		if !utf8.Valid(blob) {
			return "", fmt.Errorf("%w: %s is not valid UTF-8", extractor.ErrUnsupportedFormat, filename)
		}
		return string(blob), nil
	default:
		return "", fmt.Errorf("%w: %s", extractor.ErrUnsupportedFormat, ext)
	}
}

func NewExtractor() extractor.Extractor {
	return &textExtractor{}
}
