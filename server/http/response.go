package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	documentstore "github.com/w-h-a/ragchat/document_store"
	"github.com/w-h-a/ragchat/embedder"
	"github.com/w-h-a/ragchat/extractor"
	"github.com/w-h-a/ragchat/generator"
	historystore "github.com/w-h-a/ragchat/history_store"
)

type documentResponse struct {
	Id        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
	Score     float32        `json:"score,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type messageResponse struct {
	Id        string         `json:"id"`
	SessionId string         `json:"sessionId"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Sequence  int            `json:"sequence"`
	CreatedAt time.Time      `json:"createdAt"`
}

func toDocumentResponse(rec documentstore.Record) documentResponse {
	return documentResponse{
		Id:        rec.Id,
		Content:   rec.Content,
		Metadata:  rec.Metadata,
		Embedding: rec.Embedding,
		Score:     rec.Score,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

func toDocumentResponses(recs []documentstore.Record) []documentResponse {
	out := make([]documentResponse, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toDocumentResponse(rec))
	}
	return out
}

func toMessageResponses(msgs []historystore.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, messageResponse{
			Id:        msg.Id,
			SessionId: msg.SessionId,
			Role:      msg.Role,
			Content:   msg.Content,
			Metadata:  msg.Metadata,
			Sequence:  msg.Sequence,
			CreatedAt: msg.CreatedAt,
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusOf(err), map[string]string{"error": err.Error()})
}

func writeValidationError(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": detail})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, documentstore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, documentstore.ErrDimensionMismatch):
		return http.StatusUnprocessableEntity
	case errors.Is(err, extractor.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, historystore.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, embedder.ErrUnavailable), errors.Is(err, generator.ErrUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, historystore.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
