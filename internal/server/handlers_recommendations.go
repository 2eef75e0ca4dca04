package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/windrush/job-recommender/internal/retrieval"
	"github.com/windrush/job-recommender/internal/types"
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	// Body is optional; an empty body means default limit, no refresh.
	var req types.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "limit must be between 1 and 50")
		return
	}

	result, err := s.service.Generate(r.Context(), userID, req.Limit, req.Refresh)
	if err != nil {
		// No matching jobs is a normal outcome, not a client or server
		// fault: respond with an empty set and an explanation.
		var noCandidates *retrieval.NoCandidatesError
		if errors.As(err, &noCandidates) {
			s.jsonResponse(w, http.StatusOK, map[string]any{
				"recommendations": []types.JobRecommendation{},
				"count":           0,
				"message":         "No jobs match your current preferences. Try broadening your filters.",
			})
			return
		}
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": result.Recommendations,
		"count":           len(result.Recommendations),
		"message":         result.Message,
	})
}

func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	recs, err := s.service.List(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": recs,
		"count":           len(recs),
	})
}

func (s *Server) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	userID, recID, ok := s.pathIDs(w, r)
	if !ok {
		return
	}

	rec, err := s.service.Get(r.Context(), userID, recID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	userID, recID, ok := s.pathIDs(w, r)
	if !ok {
		return
	}

	if err := s.service.RecordClick(r.Context(), userID, recID); err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "clicked"})
}

func (s *Server) handleApplied(w http.ResponseWriter, r *http.Request) {
	userID, recID, ok := s.pathIDs(w, r)
	if !ok {
		return
	}

	if err := s.service.RecordApplied(r.Context(), userID, recID); err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "applied"})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	userID, recID, ok := s.pathIDs(w, r)
	if !ok {
		return
	}

	var req types.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.service.SubmitFeedback(r.Context(), userID, recID, &req); err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "recorded"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	stats, err := s.service.Stats(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, stats)
}

func (s *Server) handleClearStale(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	deleted, err := s.service.ClearStale(r.Context(), userID)
	if err != nil {
		s.serviceError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"deleted": deleted})
}

// pathIDs parses user_id and id from the request path, writing a 400 on
// failure.
func (s *Server) pathIDs(w http.ResponseWriter, r *http.Request) (userID, recID uuid.UUID, ok bool) {
	userID, err := uuid.Parse(r.PathValue("user_id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid user ID")
		return uuid.Nil, uuid.Nil, false
	}
	recID, err = uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid recommendation ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, recID, true
}
