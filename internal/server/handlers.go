package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hyperjump/codectx/internal/embedding"
	"github.com/hyperjump/codectx/internal/models"
	"github.com/hyperjump/codectx/internal/search"
)

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req models.LoadRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Paths) == 0 && req.Directory == "" {
		s.respondError(w, http.StatusBadRequest, "paths or directory is required")
		return
	}
	s.logger.Debug("load request", zap.Strings("paths", req.Paths), zap.String("directory", req.Directory))
	resp := s.indexer.Index(r.Context(), &req)
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	store := s.engine.Store()
	removed := store.Len()
	store.Clear(r.Context())
	s.logger.Info("store cleared", zap.Int("removed", removed))
	resp := map[string]interface{}{"status": "cleared", "removed": removed}
	if err := store.PersistErr(); err != nil {
		resp["persist_error"] = err.Error()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if !s.decode(w, r, &query) {
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("top_k", query.TopK))
	response, err := s.engine.Search(r.Context(), &query)
	if err != nil {
		s.respondEngineError(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("ask request", zap.Int("question_bytes", len(req.Question)), zap.Bool("no_context", req.NoContext))
	response, err := s.engine.Ask(r.Context(), &req)
	if err != nil {
		s.respondEngineError(w, "ask failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	list, err := s.engine.Models(r.Context())
	if err != nil {
		s.respondEngineError(w, "list models failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"models": list})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := s.engine.Store().Status()
	resp.Embedder = s.embedder
	if p := s.engine.Provider(); p != nil {
		resp.Provider = string(p.Kind()) + "/" + p.Model()
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// respondEngineError maps engine errors to status codes: bad input is 400, a missing
// provider is 501 and everything else is 500.
func (s *Server) respondEngineError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, search.ErrInvalidQuery), errors.Is(err, embedding.ErrEmptyInput):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, search.ErrNoProvider):
		s.respondError(w, http.StatusNotImplemented, err.Error())
	default:
		s.logger.Error(msg, zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
