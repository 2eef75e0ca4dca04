package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/windrush/job-recommender/internal/types"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	prefs, err := s.service.GetPreferences(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, prefs)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req types.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	prefs, err := s.service.UpdatePreferences(r.Context(), userID, &req)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, prefs)
}
