package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/w-h-a/ragchat/internal/service/chat"
	"github.com/w-h-a/ragchat/internal/service/document"
)

type Server struct {
	options   Options
	chat      *chat.Service
	documents *document.Service
	srv       *http.Server
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/documents", s.createDocument).Methods(http.MethodPost)
	router.HandleFunc("/documents", s.listDocuments).Methods(http.MethodGet)
	router.HandleFunc("/documents/search", s.searchDocuments).Methods(http.MethodPost)
	router.HandleFunc("/documents/query", s.queryDocuments).Methods(http.MethodPost)
	router.HandleFunc("/documents/upload", s.uploadDocument).Methods(http.MethodPost)
	router.HandleFunc("/documents/{id}", s.getDocument).Methods(http.MethodGet)
	router.HandleFunc("/documents/{id}", s.deleteDocument).Methods(http.MethodDelete)

	router.HandleFunc("/chat", s.respond).Methods(http.MethodPost)
	router.HandleFunc("/chat/history", s.allHistory).Methods(http.MethodGet)
	router.HandleFunc("/chat/history", s.respondWithHistory).Methods(http.MethodPost)
	router.HandleFunc("/chat/history/{sessionId}", s.sessionHistory).Methods(http.MethodGet)
	router.HandleFunc("/chat/history/{sessionId}", s.deleteSessionHistory).Methods(http.MethodDelete)
	router.HandleFunc("/chat/session/{sessionId}", s.continueSession).Methods(http.MethodPost)
	router.HandleFunc("/chat/stream", s.stream).Methods(http.MethodGet)
	router.HandleFunc("/chat/stream/session/{sessionId}", s.streamSession).Methods(http.MethodPost)

	var handler http.Handler = router

	handler = logRequests(handler)

	if ms, ok := MiddlewareFrom(s.options.Context); ok {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}
	}

	return handler
}

func (s *Server) Run(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:    s.options.Address,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)

	go func() {
		slog.InfoContext(ctx, "http server listening", "address", s.options.Address)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.InfoContext(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func NewServer(
	chat *chat.Service,
	documents *document.Service,
	opts ...Option,
) *Server {
	options := NewOptions(opts...)

	return &Server{
		options:   options,
		chat:      chat,
		documents: documents,
	}
}
