package historystore

import (
	"context"
	"errors"
)

var (
	// ErrUnavailable wraps failures of the backing storage.
	ErrUnavailable = errors.New("history storage unavailable")

	// ErrInvalidRole is returned for roles outside system/user/assistant.
	ErrInvalidRole = errors.New("invalid message role")
)

// Store is an append-only ordered log of conversation messages keyed by
// session id. Sessions exist implicitly: they begin with their first append
// and end when DeleteSession removes every message.
type Store interface {
	Append(ctx context.Context, sessionId string, role string, content string, metadata map[string]any) (Message, error)
	ListSession(ctx context.Context, sessionId string) ([]Message, error)
	ListAll(ctx context.Context) ([]Message, error)
	DeleteSession(ctx context.Context, sessionId string) (int, error)
}
