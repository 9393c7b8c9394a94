package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/sponsorboard/internal/db"
	"github.com/jonathan/sponsorboard/internal/server/middleware"
	"github.com/jonathan/sponsorboard/internal/types"
)

// RecommendationService is the engine surface the handlers depend on.
// *recommend.Engine satisfies it; tests use fakes.
type RecommendationService interface {
	Generate(ctx context.Context, userID uuid.UUID, limit int, refresh bool) ([]db.Recommendation, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]db.Recommendation, error)
	Get(ctx context.Context, id uuid.UUID) (*db.Recommendation, error)
	MarkViewed(ctx context.Context, id uuid.UUID) error
	MarkClicked(ctx context.Context, id uuid.UUID) error
	SubmitFeedback(ctx context.Context, id uuid.UUID, tag, notes string) error
	Stats(ctx context.Context, userID uuid.UUID) (*db.RecommendationStats, error)
	PurgeStale(ctx context.Context, userID uuid.UUID) (int64, error)
}

// handleListRecommendations returns the caller's persisted
// recommendations, best match first.
func (s *Server) handleListRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	recs, err := s.recs.List(r.Context(), userID, 0)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// handleGetRecommendation returns one recommendation and records the
// view. Viewing is a one-way flag, so repeats are harmless.
func (s *Server) handleGetRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.ownedRecommendation(w, r)
	if !ok {
		return
	}

	if err := s.recs.MarkViewed(r.Context(), rec.ID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, rec)
}

// handleGenerateRecommendations runs the engine for the caller
func (s *Server) handleGenerateRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.GenerateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	recs, err := s.recs.Generate(r.Context(), userID, req.Limit, req.Refresh)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"recommendations": recs,
		"count":           len(recs),
	})
}

// handleClickRecommendation records a click-through
func (s *Server) handleClickRecommendation(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.ownedRecommendation(w, r)
	if !ok {
		return
	}

	if err := s.recs.MarkClicked(r.Context(), rec.ID); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "clicked"})
}

// handleRecommendationFeedback stores the caller's verdict on one
// recommendation
func (s *Server) handleRecommendationFeedback(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.ownedRecommendation(w, r)
	if !ok {
		return
	}

	var req types.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if err := s.recs.SubmitFeedback(r.Context(), rec.ID, req.Feedback, req.Notes); err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "feedback recorded"})
}

// handleRecommendationStats aggregates the caller's history
func (s *Server) handleRecommendationStats(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	stats, err := s.recs.Stats(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, stats)
}

// handlePurgeRecommendations removes the caller's stale records
func (s *Server) handlePurgeRecommendations(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	removed, err := s.recs.PurgeStale(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]int64{"deleted": removed})
}

// ownedRecommendation loads the {id} path recommendation and verifies it
// belongs to the authenticated user. On failure it writes the error
// response and returns ok=false.
func (s *Server) ownedRecommendation(w http.ResponseWriter, r *http.Request) (*db.Recommendation, bool) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid recommendation ID")
		return nil, false
	}

	rec, err := s.recs.Get(r.Context(), id)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return nil, false
	}
	if rec.UserID != userID {
		forbidden := &ErrForbidden{}
		s.errorResponse(w, HTTPStatus(forbidden), forbidden.Error())
		return nil, false
	}

	return rec, true
}
