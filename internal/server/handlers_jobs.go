package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/jonathan/sponsorboard/internal/db"
)

// jobListDefaultLimit caps the public active-job listing
const jobListDefaultLimit = 50

// JobStore is the persistence surface the job handlers depend on.
// *db.DB satisfies it.
type JobStore interface {
	GetActiveJobs(ctx context.Context, filters db.JobFilters) ([]db.Job, error)
}

// handleListJobs lists active jobs at licensed sponsor companies,
// newest first
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := jobListDefaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		if n < limit {
			limit = n
		}
	}

	jobs, err := s.jobs.GetActiveJobs(r.Context(), db.JobFilters{
		SponsorOnly: true,
		Limit:       limit,
	})
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  jobs,
		"count": len(jobs),
	})
}
