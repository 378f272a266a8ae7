package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	historystore "github.com/w-h-a/ragchat/history_store"
)

type memoryStore struct {
	options   historystore.Options
	messages  []historystore.Message
	sequences map[string]int
	mtx       sync.RWMutex
}

func (s *memoryStore) Append(ctx context.Context, sessionId string, role string, content string, metadata map[string]any) (historystore.Message, error) {
	if !historystore.ValidRole(role) {
		return historystore.Message{}, historystore.ErrInvalidRole
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	var meta map[string]any
	if metadata != nil {
		meta = make(map[string]any, len(metadata))
		maps.Copy(meta, metadata)
	}

	// the lock serializes sequence assignment per session
	seq := s.sequences[sessionId]
	s.sequences[sessionId] = seq + 1

	msg := historystore.Message{
		Id:        uuid.New().String(),
		SessionId: sessionId,
		Role:      role,
		Content:   content,
		Metadata:  meta,
		Sequence:  seq,
		CreatedAt: time.Now().UTC(),
	}

	s.messages = append(s.messages, msg)

	return msg, nil
}

func (s *memoryStore) ListSession(ctx context.Context, sessionId string) ([]historystore.Message, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var out []historystore.Message
	for _, msg := range s.messages {
		if msg.SessionId == sessionId {
			out = append(out, msg)
		}
	}

	sortMessages(out)

	return out, nil
}

func (s *memoryStore) ListAll(ctx context.Context) ([]historystore.Message, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := make([]historystore.Message, len(s.messages))
	copy(out, s.messages)

	sortMessages(out)

	return out, nil
}

func (s *memoryStore) DeleteSession(ctx context.Context, sessionId string) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	kept := s.messages[:0]
	removed := 0

	for _, msg := range s.messages {
		if msg.SessionId == sessionId {
			removed++
			continue
		}
		kept = append(kept, msg)
	}

	s.messages = kept
	delete(s.sequences, sessionId)

	return removed, nil
}

func sortMessages(messages []historystore.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		if messages[i].CreatedAt.Equal(messages[j].CreatedAt) {
			return messages[i].Sequence < messages[j].Sequence
		}
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

func NewStore(opts ...historystore.Option) historystore.Store {
	options := historystore.NewOptions(opts...)

	s := &memoryStore{
		options:   options,
		messages:  []historystore.Message{},
		sequences: map[string]int{},
		mtx:       sync.RWMutex{},
	}

	return s
}
