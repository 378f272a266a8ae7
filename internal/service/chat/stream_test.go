package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/w-h-a/ragchat/generator"
	historystore "github.com/w-h-a/ragchat/history_store"
	historymemory "github.com/w-h-a/ragchat/history_store/memory"
)

func TestStreamForwardsFragmentsThenDone(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{
		chunks: []generator.StreamChunk{
			{Delta: "Hel"},
			{Delta: "lo"},
			{Delta: ""},
			{Delta: "!"},
			{Done: true, FullText: "Hello!"},
		},
	}
	history := historymemory.NewStore()
	svc := New(&fakeRetriever{contextText: "some context"}, gen, history)

	events, err := svc.Stream(ctx, "", "say hello", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fragments []string
	var sessionId string
	sawDone := false

	for event := range events {
		sessionId = event.SessionId
		if event.Err != nil {
			t.Fatalf("unexpected stream error: %v", event.Err)
		}
		if event.Done {
			sawDone = true

			// the assistant message must already be durable when Done arrives
			messages, err := history.ListSession(ctx, sessionId)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			last := messages[len(messages)-1]
			if last.Role != historystore.RoleAssistant || last.Content != "Hello!" {
				t.Fatalf("expected the assistant message before Done, got %+v", last)
			}
			continue
		}
		fragments = append(fragments, event.Data)
	}

	if !sawDone {
		t.Fatal("expected a Done event")
	}
	if len(fragments) != 3 || fragments[0] != "Hel" || fragments[1] != "lo" || fragments[2] != "!" {
		t.Fatalf("expected the non-empty deltas in order, got %v", fragments)
	}

	messages, err := history.ListSession(ctx, sessionId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected user, system, and assistant messages, got %d", len(messages))
	}
	if messages[0].Role != historystore.RoleUser || messages[1].Role != historystore.RoleSystem {
		t.Fatalf("expected the prelude before the stream started, got %+v", messages[:2])
	}
}

func TestStreamHonorsCallerSessionId(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{
		chunks: []generator.StreamChunk{
			{Delta: "ok"},
			{Done: true, FullText: "ok"},
		},
	}
	history := historymemory.NewStore()
	svc := New(&fakeRetriever{}, gen, history)

	events, err := svc.Stream(ctx, "caller-chosen", "hello", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for event := range events {
		if event.SessionId != "caller-chosen" {
			t.Fatalf("expected the caller's session id, got %q", event.SessionId)
		}
	}

	messages, err := history.ListSession(ctx, "caller-chosen")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected the turn under the caller's session, got %d messages", len(messages))
	}
}

func TestStreamUpstreamFailureDiscardsPartialOutput(t *testing.T) {
	ctx := context.Background()
	upstream := errors.New("connection reset")
	gen := &fakeGenerator{
		chunks: []generator.StreamChunk{
			{Delta: "par"},
			{Err: upstream},
		},
	}
	history := historymemory.NewStore()
	svc := New(&fakeRetriever{}, gen, history)

	events, err := svc.Stream(ctx, "", "hello", 3, 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var fragments []string
	var streamErr error

	for event := range events {
		if event.Err != nil {
			streamErr = event.Err
			continue
		}
		if event.Done {
			t.Fatal("did not expect a Done event after an upstream failure")
		}
		fragments = append(fragments, event.Data)
	}

	if !errors.Is(streamErr, upstream) {
		t.Fatalf("expected the upstream error, got %v", streamErr)
	}
	if len(fragments) != 1 || fragments[0] != "par" {
		t.Fatalf("expected the partial delta to be forwarded, got %v", fragments)
	}

	messages, err := history.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, msg := range messages {
		if msg.Role == historystore.RoleAssistant {
			t.Fatalf("partial output must not be persisted, got %+v", msg)
		}
	}
	if len(messages) != 2 {
		t.Fatalf("expected only the user and system messages, got %d", len(messages))
	}
}

func TestStreamSessionReplaysHistory(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{
		chunks: []generator.StreamChunk{
			{Delta: "more"},
			{Done: true, FullText: "more"},
		},
	}
	history := historymemory.NewStore()
	svc := New(&fakeRetriever{}, gen, history)

	if _, err := history.Append(ctx, "s1", historystore.RoleUser, "first", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := history.Append(ctx, "s1", historystore.RoleAssistant, "first answer", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := svc.StreamSession(ctx, "s1", "second", 0.7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for range events {
	}

	if len(gen.got) != 3 {
		t.Fatalf("expected history plus the new turn, got %d messages", len(gen.got))
	}
	if gen.got[2].Role != generator.RoleUser || gen.got[2].Content != "second" {
		t.Fatalf("expected the new user turn last, got %+v", gen.got[2])
	}

	messages, err := history.ListSession(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("expected 4 messages after the streamed turn, got %d", len(messages))
	}
	last := messages[len(messages)-1]
	if last.Role != historystore.RoleAssistant || last.Content != "more" {
		t.Fatalf("expected the accumulated reply last, got %+v", last)
	}
}

func TestStreamRejectsEmptyQuery(t *testing.T) {
	svc := New(&fakeRetriever{}, &fakeGenerator{}, historymemory.NewStore())

	if _, err := svc.Stream(context.Background(), "", " ", 3, 0.7); err == nil {
		t.Fatal("expected an error for an empty query")
	}
}
