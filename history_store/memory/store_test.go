package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	historystore "github.com/w-h-a/ragchat/history_store"
)

func TestAppendAssignsSequences(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for i := 0; i < 3; i++ {
		msg, err := store.Append(ctx, "s1", historystore.RoleUser, "hi", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if msg.Sequence != i {
			t.Fatalf("expected sequence %d, got %d", i, msg.Sequence)
		}
	}

	// a second session starts back at 0
	msg, err := store.Append(ctx, "s2", historystore.RoleUser, "hi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Sequence != 0 {
		t.Fatalf("expected sequence 0 for new session, got %d", msg.Sequence)
	}
}

func TestAppendRejectsUnknownRole(t *testing.T) {
	store := NewStore()

	if _, err := store.Append(context.Background(), "s1", "moderator", "hi", nil); !errors.Is(err, historystore.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestConcurrentAppendsYieldDistinctSequences(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	const n = 50

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Append(ctx, "s1", historystore.RoleUser, "hi", nil); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	messages, err := store.ListSession(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != n {
		t.Fatalf("expected %d messages, got %d", n, len(messages))
	}

	seen := make(map[int]bool, n)
	for _, msg := range messages {
		if msg.Sequence < 0 || msg.Sequence >= n {
			t.Fatalf("sequence %d out of range", msg.Sequence)
		}
		if seen[msg.Sequence] {
			t.Fatalf("duplicate sequence %d", msg.Sequence)
		}
		seen[msg.Sequence] = true
	}
}

func TestListSessionOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for _, content := range []string{"first", "second", "third"} {
		if _, err := store.Append(ctx, "s1", historystore.RoleUser, content, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	messages, err := store.ListSession(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if messages[i].Content != want {
			t.Fatalf("expected %s at %d, got %s", want, i, messages[i].Content)
		}
	}
}

func TestListSessionUnknownIdIsEmpty(t *testing.T) {
	messages, err := NewStore().ListSession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected no messages, got %d", len(messages))
	}
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	for i := 0; i < 3; i++ {
		if _, err := store.Append(ctx, "s1", historystore.RoleUser, "hi", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if _, err := store.Append(ctx, "s2", historystore.RoleUser, "hi", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := store.DeleteSession(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 removed, got %d", count)
	}

	messages, err := store.ListSession(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 0 {
		t.Fatalf("expected empty session after delete, got %d", len(messages))
	}

	// idempotent
	count, err = store.DeleteSession(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 removed on second delete, got %d", count)
	}

	// other sessions untouched
	others, err := store.ListSession(ctx, "s2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(others) != 1 {
		t.Fatalf("expected s2 to keep its message, got %d", len(others))
	}
}

func TestListAllSpansSessions(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.Append(ctx, "s1", historystore.RoleUser, "a", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Append(ctx, "s2", historystore.RoleUser, "b", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messages, err := store.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
}
