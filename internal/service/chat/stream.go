package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/w-h-a/ragchat/generator"
	historystore "github.com/w-h-a/ragchat/history_store"
)

// Event is one unit of a streamed conversation turn. Done and Err are
// mutually exclusive and terminal; the channel is closed after either.
type Event struct {
	SessionId string
	Data      string
	Done      bool
	Err       error
}

// Stream is the streaming counterpart of Respond. The user and system
// messages are persisted before the model stream starts; the assistant
// message is persisted only once the upstream stream completes, and the Done
// event is emitted strictly after that persistence.
func (s *Service) Stream(ctx context.Context, sessionId string, query string, contextSize int, temperature float32) (<-chan Event, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return nil, errors.New("query is required")
	}

	if len(strings.TrimSpace(sessionId)) == 0 {
		sessionId = uuid.New().String()
	}

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleUser, query, map[string]any{
		"temperature": temperature,
		"contextSize": contextSize,
	}); err != nil {
		return nil, err
	}

	sysMessage, err := s.persistContext(ctx, sessionId, query, contextSize)
	if err != nil {
		return nil, err
	}

	stream, err := s.generator.GenerateStream(ctx, []generator.Message{
		{Role: generator.RoleSystem, Content: sysMessage},
		{Role: generator.RoleUser, Content: query},
	}, temperature)
	if err != nil {
		return nil, err
	}

	return s.forward(ctx, sessionId, stream), nil
}

// StreamSession is the streaming counterpart of ContinueSession.
func (s *Service) StreamSession(ctx context.Context, sessionId string, query string, temperature float32) (<-chan Event, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return nil, errors.New("query is required")
	}

	prior, err := s.history.ListSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleUser, query, map[string]any{
		"temperature": temperature,
	}); err != nil {
		return nil, err
	}

	messages := append(toMessages(prior), generator.Message{Role: generator.RoleUser, Content: query})

	stream, err := s.generator.GenerateStream(ctx, messages, temperature)
	if err != nil {
		return nil, err
	}

	return s.forward(ctx, sessionId, stream), nil
}

// forward relays fragments to the caller and settles the turn. A partial
// reply is never persisted: an upstream error or a canceled caller discards
// whatever accumulated.
func (s *Service) forward(ctx context.Context, sessionId string, stream <-chan generator.StreamChunk) <-chan Event {
	out := make(chan Event)

	go func() {
		defer close(out)

		for chunk := range stream {
			if chunk.Err != nil {
				slog.ErrorContext(ctx, "stream failed", "session", sessionId, "error", chunk.Err)
				s.emit(ctx, out, Event{SessionId: sessionId, Err: chunk.Err})
				return
			}

			if chunk.Done {
				if _, err := s.history.Append(ctx, sessionId, historystore.RoleAssistant, chunk.FullText, nil); err != nil {
					slog.ErrorContext(ctx, "failed to persist assistant message", "session", sessionId, "error", err)
					s.emit(ctx, out, Event{SessionId: sessionId, Err: err})
					return
				}
				s.emit(ctx, out, Event{SessionId: sessionId, Done: true})
				return
			}

			if len(chunk.Delta) == 0 {
				continue
			}

			if !s.emit(ctx, out, Event{SessionId: sessionId, Data: chunk.Delta}) {
				return
			}
		}
	}()

	return out
}

func (s *Service) emit(ctx context.Context, out chan<- Event, event Event) bool {
	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}
