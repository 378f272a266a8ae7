package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	documentstore "github.com/w-h-a/ragchat/document_store"
)

type memoryStore struct {
	options   documentstore.Options
	records   []documentstore.Record
	byId      map[string]int
	dimension int
	mtx       sync.RWMutex
}

func (s *memoryStore) Insert(ctx context.Context, content string, metadata map[string]any, embedding []float32) (documentstore.Record, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.dimension == 0 {
		s.dimension = len(embedding)
	}
	if len(embedding) != s.dimension {
		return documentstore.Record{}, documentstore.ErrDimensionMismatch
	}

	now := time.Now().UTC()

	cpy := make([]float32, len(embedding))
	copy(cpy, embedding)

	var meta map[string]any
	if metadata != nil {
		meta = make(map[string]any, len(metadata))
		maps.Copy(meta, metadata)
	}

	rec := documentstore.Record{
		Id:        uuid.New().String(),
		Content:   content,
		Metadata:  meta,
		Embedding: cpy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.byId[rec.Id] = len(s.records)
	s.records = append(s.records, rec)

	return rec, nil
}

func (s *memoryStore) Get(ctx context.Context, id string) (documentstore.Record, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	idx, ok := s.byId[id]
	if !ok {
		return documentstore.Record{}, documentstore.ErrNotFound
	}

	return s.records[idx], nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	idx, ok := s.byId[id]
	if !ok {
		return nil
	}

	s.records = append(s.records[:idx], s.records[idx+1:]...)
	delete(s.byId, id)

	for i := idx; i < len(s.records); i++ {
		s.byId[s.records[i].Id] = i
	}

	return nil
}

func (s *memoryStore) List(ctx context.Context) ([]documentstore.Record, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := make([]documentstore.Record, len(s.records))
	copy(out, s.records)

	return out, nil
}

func (s *memoryStore) Search(ctx context.Context, embedding []float32, limit int) ([]documentstore.Record, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if len(s.records) == 0 {
		return nil, nil
	}

	if s.dimension != 0 && len(embedding) != s.dimension {
		return nil, documentstore.ErrDimensionMismatch
	}

	candidates := make([]documentstore.Record, 0, len(s.records))

	for _, rec := range s.records {
		score := documentstore.CosineSimilarity(embedding, rec.Embedding)
		rec.Score = float32(score)
		candidates = append(candidates, rec)
	}

	// stable sort keeps insertion order between equal scores
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func NewStore(opts ...documentstore.Option) documentstore.Store {
	options := documentstore.NewOptions(opts...)

	s := &memoryStore{
		options:   options,
		records:   []documentstore.Record{},
		byId:      map[string]int{},
		dimension: options.Dimension,
		mtx:       sync.RWMutex{},
	}

	return s
}
