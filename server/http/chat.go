package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/w-h-a/ragchat/generator"
)

const (
	defaultContextSize = 3
	defaultTemperature = 0.7
)

type chatRequest struct {
	Query       string   `json:"query"`
	ContextSize *int     `json:"contextSize,omitempty"`
	Temperature *float32 `json:"temperature,omitempty"`
}

type chatHistoryRequest struct {
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (r *chatRequest) contextSize() int {
	if r.ContextSize != nil {
		return *r.ContextSize
	}
	return defaultContextSize
}

func (r *chatRequest) temperature() float32 {
	if r.Temperature != nil {
		return *r.Temperature
	}
	return defaultTemperature
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid json body")
		return
	}

	if len(req.Query) == 0 {
		writeValidationError(w, "query is required")
		return
	}

	sessionId, response, err := s.chat.Respond(r.Context(), req.Query, req.contextSize(), req.temperature())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"sessionId": sessionId,
		"response":  response,
	})
}

func (s *Server) respondWithHistory(w http.ResponseWriter, r *http.Request) {
	var req chatHistoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid json body")
		return
	}

	if len(req.Messages) == 0 {
		writeValidationError(w, "messages are required")
		return
	}

	messages := make([]generator.Message, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, generator.Message{Role: msg.Role, Content: msg.Content})
	}

	temperature := float32(defaultTemperature)
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	sessionId, response, err := s.chat.RespondWithHistory(r.Context(), messages, temperature)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"sessionId": sessionId,
		"response":  response,
	})
}

func (s *Server) continueSession(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid json body")
		return
	}

	if len(req.Query) == 0 {
		writeValidationError(w, "query is required")
		return
	}

	response, err := s.chat.ContinueSession(r.Context(), sessionId, req.Query, req.temperature())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (s *Server) sessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]

	messages, err := s.chat.SessionHistory(r.Context(), sessionId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

func (s *Server) allHistory(w http.ResponseWriter, r *http.Request) {
	messages, err := s.chat.AllHistory(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toMessageResponses(messages))
}

func (s *Server) deleteSessionHistory(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]

	count, err := s.chat.DeleteSessionHistory(r.Context(), sessionId)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"deleted": count})
}

func (s *Server) stream(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	query := params.Get("query")
	if len(query) == 0 {
		writeValidationError(w, "query is required")
		return
	}

	contextSize := defaultContextSize
	if raw := params.Get("contextSize"); len(raw) > 0 {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeValidationError(w, "contextSize must be an integer")
			return
		}
		contextSize = parsed
	}

	temperature := float32(defaultTemperature)
	if raw := params.Get("temperature"); len(raw) > 0 {
		parsed, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			writeValidationError(w, "temperature must be a number")
			return
		}
		temperature = float32(parsed)
	}

	events, err := s.chat.Stream(r.Context(), params.Get("sessionId"), query, contextSize, temperature)
	if err != nil {
		writeError(w, err)
		return
	}

	serveSSE(w, r, events)
}

func (s *Server) streamSession(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid json body")
		return
	}

	if len(req.Query) == 0 {
		writeValidationError(w, "query is required")
		return
	}

	events, err := s.chat.StreamSession(r.Context(), sessionId, req.Query, req.temperature())
	if err != nil {
		writeError(w, err)
		return
	}

	serveSSE(w, r, events)
}
