// Package server exposes the translation operations over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/josego85/pdf-content-search/internal/service"
	"github.com/josego85/pdf-content-search/internal/translation"
	"github.com/josego85/pdf-content-search/pkg/log"
)

// TranslationService is the surface the HTTP layer consumes.
type TranslationService interface {
	RequestTranslation(ctx context.Context, documentID string, page int, targetLanguage string) (*service.RequestResult, error)
	CheckStatus(ctx context.Context, documentID string, page int, targetLanguage string) (*service.StatusResult, error)
}

type Server struct {
	translations TranslationService

	router chi.Router
	server *http.Server
}

func NewServer(translations TranslationService) *Server {
	s := &Server{
		translations: translations,
		router:       chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Recoverer)
	s.router.Post("/api/documents/{documentID}/pages/{page}/translation", s.handleRequestTranslation)
	s.router.Get("/api/documents/{documentID}/pages/{page}/translation", s.handleTranslationStatus)
	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRequestTranslation(w http.ResponseWriter, r *http.Request) {
	documentID, page, lang, ok := s.pageParams(w, r)
	if !ok {
		return
	}

	result, err := s.translations.RequestTranslation(r.Context(), documentID, page, lang)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if result.Status == service.StatusQueued {
		status = http.StatusAccepted
	}
	writeJSON(w, status, result)
}

func (s *Server) handleTranslationStatus(w http.ResponseWriter, r *http.Request) {
	documentID, page, lang, ok := s.pageParams(w, r)
	if !ok {
		return
	}

	result, err := s.translations.CheckStatus(r.Context(), documentID, page, lang)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) pageParams(w http.ResponseWriter, r *http.Request) (string, int, string, bool) {
	documentID := chi.URLParam(r, "documentID")
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "page must be an integer")
		return "", 0, "", false
	}

	lang := r.URL.Query().Get("lang")
	if lang == "" {
		writeError(w, http.StatusBadRequest, "missing lang query parameter")
		return "", 0, "", false
	}
	return documentID, page, lang, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *translation.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, translation.ErrDocumentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, translation.ErrEmptyPage):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case translation.IsTransient(err):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		log.Error("Translation request failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"status": "error", "error": message})
}
