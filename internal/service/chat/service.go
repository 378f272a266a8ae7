package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	documentstore "github.com/w-h-a/ragchat/document_store"
	"github.com/w-h-a/ragchat/generator"
	historystore "github.com/w-h-a/ragchat/history_store"
)

const systemPromptPrefix = "You are a helpful assistant. Answer questions based on the following context:\n\n"

// Retriever is the slice of the document service the conversation pipeline
// needs: ranked documents plus their joined context text.
type Retriever interface {
	RetrieveContext(ctx context.Context, query string, limit int) ([]documentstore.Record, string, error)
}

// Service drives one conversation turn at a time: persist what is about to
// be sent, call the model, persist what came back. It holds no state of its
// own between calls.
type Service struct {
	retriever Retriever
	generator generator.Generator
	history   historystore.Store
}

// Respond starts a fresh session: the user message and a system message
// carrying the retrieved context are persisted before the generation call,
// so history records what was asked even when the model fails.
func (s *Service) Respond(ctx context.Context, query string, contextSize int, temperature float32) (string, string, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return "", "", errors.New("query is required")
	}

	sessionId := uuid.New().String()

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleUser, query, map[string]any{
		"temperature": temperature,
		"contextSize": contextSize,
	}); err != nil {
		return "", "", err
	}

	sysMessage, err := s.persistContext(ctx, sessionId, query, contextSize)
	if err != nil {
		return "", "", err
	}

	response, err := s.generator.Generate(ctx, []generator.Message{
		{Role: generator.RoleSystem, Content: sysMessage},
		{Role: generator.RoleUser, Content: query},
	}, temperature)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate response: %w", err)
	}

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleAssistant, response, nil); err != nil {
		return "", "", err
	}

	return sessionId, response, nil
}

// RespondWithHistory replays a caller-supplied message list into a fresh
// session and generates from exactly those messages.
func (s *Service) RespondWithHistory(ctx context.Context, messages []generator.Message, temperature float32) (string, string, error) {
	if len(messages) == 0 {
		return "", "", errors.New("messages are required")
	}

	sessionId := uuid.New().String()

	for _, msg := range messages {
		if _, err := s.history.Append(ctx, sessionId, msg.Role, msg.Content, map[string]any{
			"temperature": temperature,
		}); err != nil {
			return "", "", err
		}
	}

	response, err := s.generator.Generate(ctx, messages, temperature)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate response: %w", err)
	}

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleAssistant, response, nil); err != nil {
		return "", "", err
	}

	return sessionId, response, nil
}

// ContinueSession appends a user turn to an existing session and generates
// from the full ordered history. A session with no prior messages is not an
// error; generation proceeds with just the new turn.
func (s *Service) ContinueSession(ctx context.Context, sessionId string, query string, temperature float32) (string, error) {
	if len(strings.TrimSpace(query)) == 0 {
		return "", errors.New("query is required")
	}

	prior, err := s.history.ListSession(ctx, sessionId)
	if err != nil {
		return "", err
	}

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleUser, query, map[string]any{
		"temperature": temperature,
	}); err != nil {
		return "", err
	}

	messages := append(toMessages(prior), generator.Message{Role: generator.RoleUser, Content: query})

	response, err := s.generator.Generate(ctx, messages, temperature)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleAssistant, response, nil); err != nil {
		return "", err
	}

	return response, nil
}

func (s *Service) SessionHistory(ctx context.Context, sessionId string) ([]historystore.Message, error) {
	return s.history.ListSession(ctx, sessionId)
}

func (s *Service) AllHistory(ctx context.Context) ([]historystore.Message, error) {
	return s.history.ListAll(ctx)
}

func (s *Service) DeleteSessionHistory(ctx context.Context, sessionId string) (int, error) {
	return s.history.DeleteSession(ctx, sessionId)
}

// persistContext retrieves context for the query and records the synthesized
// system message, returning its content. A contextSize below 1 skips
// retrieval entirely and yields an empty context.
func (s *Service) persistContext(ctx context.Context, sessionId string, query string, contextSize int) (string, error) {
	records, contextText, err := s.retriever.RetrieveContext(ctx, query, contextSize)
	if err != nil {
		return "", fmt.Errorf("failed to retrieve context: %w", err)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.Id)
	}

	content := systemPromptPrefix + contextText

	if _, err := s.history.Append(ctx, sessionId, historystore.RoleSystem, content, map[string]any{
		"contextDocs": ids,
	}); err != nil {
		return "", err
	}

	return content, nil
}

func toMessages(history []historystore.Message) []generator.Message {
	messages := make([]generator.Message, 0, len(history))
	for _, msg := range history {
		messages = append(messages, generator.Message{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return messages
}

func New(
	retriever Retriever,
	generator generator.Generator,
	history historystore.Store,
) *Service {
	return &Service{
		retriever: retriever,
		generator: generator,
		history:   history,
	}
}
