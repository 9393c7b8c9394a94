package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/sponsorboard/internal/db"
	"github.com/jonathan/sponsorboard/internal/server/middleware"
	"github.com/jonathan/sponsorboard/internal/types"
)

// PreferenceStore is the persistence surface the preference handlers
// depend on. *db.DB satisfies it.
type PreferenceStore interface {
	GetOrCreatePreferences(ctx context.Context, userID uuid.UUID) (*db.UserPreference, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, input *db.PreferenceUpdateInput) (*db.UserPreference, error)
}

// handleGetPreferences returns the caller's preferences, creating the
// default record on first access
func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prefs, err := s.prefs.GetOrCreatePreferences(r.Context(), userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, prefs)
}

// handleUpdatePreferences replaces the caller's preference record and
// kicks off a refreshed generation run so stale recommendations don't
// outlive the preferences that produced them.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req types.UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	prefs, err := s.prefs.UpdatePreferences(r.Context(), userID, preferenceInput(&req))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if _, err := s.recs.Generate(r.Context(), userID, prefs.MaxRecommendations, true); err != nil {
		// The update itself succeeded; regeneration failure is logged,
		// not surfaced
		log.Printf("[server] Post-update regeneration failed for user %s: %v", userID, err)
	}

	s.jsonResponse(w, http.StatusOK, prefs)
}

// preferenceInput maps the validated request onto the store input
func preferenceInput(req *types.UpdatePreferencesRequest) *db.PreferenceUpdateInput {
	input := &db.PreferenceUpdateInput{
		PreferredLocations:    req.PreferredLocations,
		OpenToRemote:          req.OpenToRemote,
		OpenToHybrid:          req.OpenToHybrid,
		PreferredIndustries:   req.PreferredIndustries,
		ExperienceLevel:       req.ExperienceLevel,
		MinSalary:             req.MinSalary,
		MaxSalary:             req.MaxSalary,
		SalaryCurrency:        req.SalaryCurrency,
		KeySkills:             req.KeySkills,
		AvoidKeywords:         req.AvoidKeywords,
		PreferredCompanySizes: req.PreferredCompanySizes,
		AvoidCompanies:        req.AvoidCompanies,
		RequiresSponsorship:   req.RequiresSponsorship,
		VisaTypesNeeded:       req.VisaTypesNeeded,
		NotificationFrequency: req.NotificationFrequency,
		MaxRecommendations:    req.MaxRecommendations,
	}
	if input.MaxRecommendations == 0 {
		input.MaxRecommendations = db.DefaultMaxRecommendations
	}
	return input
}
