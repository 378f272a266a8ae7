package document

import (
	"context"
	"errors"
	"fmt"
	"testing"

	documentmemory "github.com/w-h-a/ragchat/document_store/memory"
	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/extractor"
	"github.com/w-h-a/ragchat/extractor/text"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.vector, nil
}

func TestSearchByTextRanksDocuments(t *testing.T) {
	ctx := context.Background()
	store := documentmemory.NewStore()
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	svc := New(store, emb, text.NewExtractor())

	if _, err := svc.Create(ctx, "a", nil, []float32{1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, "b", nil, []float32{0, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results, err := svc.SearchByText(ctx, "anything", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Content != "a" {
		t.Fatalf("expected a ranked first, got %+v", results)
	}
}

func TestSearchByTextSkipsEmbedderForNonPositiveLimit(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	svc := New(documentmemory.NewStore(), emb, text.NewExtractor())

	results, err := svc.SearchByText(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
	if emb.calls != 0 {
		t.Fatalf("expected embedder not to be called, got %d calls", emb.calls)
	}
}

func TestSearchByTextPropagatesEmbedderFailure(t *testing.T) {
	emb := &fakeEmbedder{err: fmt.Errorf("%w: boom", embedder.ErrUnavailable)}
	svc := New(documentmemory.NewStore(), emb, text.NewExtractor())

	if _, err := svc.SearchByText(context.Background(), "anything", 3); !errors.Is(err, embedder.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRetrieveContextJoinsWithBlankLine(t *testing.T) {
	ctx := context.Background()
	store := documentmemory.NewStore()
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	svc := New(store, emb, text.NewExtractor())

	if _, err := svc.Create(ctx, "closest", nil, []float32{1, 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Create(ctx, "next", nil, []float32{1, 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, contextText, err := svc.RetrieveContext(ctx, "anything", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if contextText != "closest\n\nnext" {
		t.Fatalf("expected joined context, got %q", contextText)
	}
}

func TestIngestExtractsEmbedsAndIndexes(t *testing.T) {
	ctx := context.Background()
	store := documentmemory.NewStore()
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	svc := New(store, emb, text.NewExtractor())

	rec, err := svc.Ingest(ctx, "notes.txt", []byte("plain text"), map[string]any{"filename": "notes.txt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Content != "plain text" {
		t.Fatalf("expected extracted content, got %q", rec.Content)
	}
	if emb.calls != 1 {
		t.Fatalf("expected one embedding call, got %d", emb.calls)
	}

	got, err := svc.Get(ctx, rec.Id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Content != "plain text" {
		t.Fatalf("expected indexed content, got %q", got.Content)
	}
}

func TestIngestRejectsUnsupportedFormat(t *testing.T) {
	emb := &fakeEmbedder{vector: []float32{1, 0}}
	svc := New(documentmemory.NewStore(), emb, text.NewExtractor())

	if _, err := svc.Ingest(context.Background(), "report.pdf", []byte{0x25, 0x50}, nil); !errors.Is(err, extractor.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if emb.calls != 0 {
		t.Fatalf("expected no embedding call for rejected file, got %d", emb.calls)
	}
}
