package document

import (
	"context"
	"strings"

	documentstore "github.com/w-h-a/ragchat/document_store"
	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/extractor"
)

// Service coordinates the document index, the embedding gateway, and text
// extraction for uploaded files.
type Service struct {
	store     documentstore.Store
	embedder  embedder.Embedder
	extractor extractor.Extractor
}

func (s *Service) Create(ctx context.Context, content string, metadata map[string]any, embedding []float32) (documentstore.Record, error) {
	return s.store.Insert(ctx, content, metadata, embedding)
}

func (s *Service) Get(ctx context.Context, id string) (documentstore.Record, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]documentstore.Record, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]documentstore.Record, error) {
	return s.store.Search(ctx, embedding, limit)
}

// SearchByText embeds the query and ranks stored documents against it. A
// non-positive limit short-circuits before the embedding call is spent.
func (s *Service) SearchByText(ctx context.Context, text string, limit int) ([]documentstore.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	return s.store.Search(ctx, embedding, limit)
}

// RetrieveContext returns the ranked documents for a query along with their
// contents joined by a blank line, ready for context injection.
func (s *Service) RetrieveContext(ctx context.Context, query string, limit int) ([]documentstore.Record, string, error) {
	records, err := s.SearchByText(ctx, query, limit)
	if err != nil {
		return nil, "", err
	}

	contents := make([]string, 0, len(records))
	for _, rec := range records {
		contents = append(contents, rec.Content)
	}

	return records, strings.Join(contents, "\n\n"), nil
}

// Ingest extracts text from a raw blob, embeds it, and indexes the result.
func (s *Service) Ingest(ctx context.Context, filename string, blob []byte, metadata map[string]any) (documentstore.Record, error) {
	content, err := s.extractor.Extract(ctx, filename, blob)
	if err != nil {
		return documentstore.Record{}, err
	}

	embedding, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return documentstore.Record{}, err
	}

	return s.store.Insert(ctx, content, metadata, embedding)
}

func New(
	store documentstore.Store,
	embedder embedder.Embedder,
	extractor extractor.Extractor,
) *Service {
	return &Service{
		store:     store,
		embedder:  embedder,
		extractor: extractor,
	}
}
