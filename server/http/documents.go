package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

const maxUploadBytes = 10 << 20

type createDocumentRequest struct {
	Content   string         `json:"content"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
}

type searchDocumentsRequest struct {
	Text  string `json:"text"`
	Limit int    `json:"limit"`
}

type queryDocumentsRequest struct {
	Embedding []float32 `json:"embedding"`
	Limit     int       `json:"limit"`
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid json body")
		return
	}

	if len(req.Content) == 0 || len(req.Embedding) == 0 {
		writeValidationError(w, "content and embedding are required")
		return
	}

	rec, err := s.documents.Create(r.Context(), req.Content, req.Metadata, req.Embedding)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDocumentResponse(rec))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	recs, err := s.documents.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponses(recs))
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := s.documents.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(rec))
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.documents.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) searchDocuments(w http.ResponseWriter, r *http.Request) {
	var req searchDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid json body")
		return
	}

	if len(req.Text) == 0 {
		writeValidationError(w, "text is required")
		return
	}

	if req.Limit == 0 {
		req.Limit = 5
	}

	recs, err := s.documents.SearchByText(r.Context(), req.Text, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponses(recs))
}

func (s *Server) queryDocuments(w http.ResponseWriter, r *http.Request) {
	var req queryDocumentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, "invalid json body")
		return
	}

	if len(req.Embedding) == 0 {
		writeValidationError(w, "embedding is required")
		return
	}

	if req.Limit == 0 {
		req.Limit = 5
	}

	recs, err := s.documents.FindSimilar(r.Context(), req.Embedding, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponses(recs))
}

func (s *Server) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeValidationError(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeValidationError(w, "file is required")
		return
	}
	defer file.Close()

	blob, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeValidationError(w, "failed to read file")
		return
	}

	metadata := map[string]any{"filename": header.Filename}

	rec, err := s.documents.Ingest(r.Context(), header.Filename, blob, metadata)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDocumentResponse(rec))
}
