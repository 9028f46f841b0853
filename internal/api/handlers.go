package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type errorResponse struct {
	Error string `json:"error"`
}

type listResponse struct {
	Count int         `json:"count"`
	Data  interface{} `json:"data"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && s.logger != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, errorResponse{Error: message})
}

// parseSportFilter reads the optional ?sport= query parameter.
func parseSportFilter(r *http.Request) (*int, bool) {
	raw := r.URL.Query().Get("sport")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (s *Server) handleGetSports(w http.ResponseWriter, r *http.Request) {
	sports := s.query.GetSports()
	s.writeJSON(w, http.StatusOK, listResponse{Count: len(sports), Data: sports})
}

func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	sportID, ok := parseSportFilter(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid sport filter")
		return
	}

	var isLive *bool
	if raw := r.URL.Query().Get("live"); raw != "" {
		live, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid live filter")
			return
		}
		isLive = &live
	}

	events := s.query.GetEvents(sportID, isLive)
	s.writeJSON(w, http.StatusOK, listResponse{Count: len(events), Data: events})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	event, found := s.query.GetEventByID(id)
	if !found {
		s.writeError(w, http.StatusNotFound, "event not found")
		return
	}
	s.writeJSON(w, http.StatusOK, event)
}

func (s *Server) handleGetLive(w http.ResponseWriter, r *http.Request) {
	sportID, ok := parseSportFilter(r)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "invalid sport filter")
		return
	}

	events := s.query.GetLiveEvents(sportID)
	s.writeJSON(w, http.StatusOK, listResponse{Count: len(events), Data: events})
}

func (s *Server) handleGetProviders(w http.ResponseWriter, r *http.Request) {
	providers := s.query.Providers()
	s.writeJSON(w, http.StatusOK, listResponse{Count: len(providers), Data: providers})
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

type toggleResponse struct {
	ID        string    `json:"id"`
	Enabled   bool      `json:"enabled"`
	UpdatedAt time.Time `json:"updated_at"`
}

// handleToggleProvider flips or sets a provider's enabled flag. With no body
// (or no enabled field) the current state is inverted.
func (s *Server) handleToggleProvider(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req toggleRequest
	if r.Body != nil {
		// An empty body means plain toggle; only malformed JSON is an error.
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	newState, found := s.registry.Toggle(id, req.Enabled)
	if !found {
		s.writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	s.writeJSON(w, http.StatusOK, toggleResponse{
		ID:        id,
		Enabled:   newState,
		UpdatedAt: time.Now().UTC(),
	})
}

type weightRequest struct {
	Weight *int `json:"weight"`
}

type weightResponse struct {
	ID        string    `json:"id"`
	Weight    int       `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Server) handleSetWeight(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req weightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Weight == nil {
		s.writeError(w, http.StatusBadRequest, "request body must contain a weight field")
		return
	}
	if *req.Weight < 0 || *req.Weight > 100 {
		s.writeError(w, http.StatusBadRequest, "weight must be between 0 and 100")
		return
	}

	if !s.registry.SetWeight(id, *req.Weight) {
		s.writeError(w, http.StatusNotFound, "unknown provider")
		return
	}

	s.writeJSON(w, http.StatusOK, weightResponse{
		ID:        id,
		Weight:    *req.Weight,
		UpdatedAt: time.Now().UTC(),
	})
}

func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.query.GetStatus())
}
