package api

import (
	"net/http"

	"github.com/okian/vibe/internal/domain/types"
	"github.com/okian/vibe/internal/domain/vibe"
)

type seasonsResponse struct {
	Seasons []types.SeasonSummary `json:"seasons"`
}

type cohortsResponse struct {
	Season      string              `json:"season"`
	League      vibe.Moments        `json:"league_moments"`
	Cohorts     vibe.CohortStats    `json:"cohorts"`
	Diagnostics []vibe.Diagnostic   `json:"diagnostics"`
	Rejected    []*vibe.RecordError `json:"rejected"`
}

// handleSeasons handles GET /seasons.
func (s *Server) handleSeasons(w http.ResponseWriter, r *http.Request) {
	seasons := s.deps.Seasons(r.Context())
	if seasons == nil {
		seasons = []types.SeasonSummary{}
	}
	writeJSON(w, http.StatusOK, seasonsResponse{Seasons: seasons})
}

// handleCohorts handles GET /seasons/{season}/cohorts and exposes the
// normalization frame behind a published board.
func (s *Server) handleCohorts(w http.ResponseWriter, r *http.Request) {
	run, err := s.deps.Run(r.Context(), r.PathValue("season"))
	if err != nil {
		fail(w, err)
		return
	}
	resp := cohortsResponse{
		Season:      run.Season,
		League:      run.LeagueMoments,
		Cohorts:     run.Cohorts,
		Diagnostics: run.Diagnostics,
		Rejected:    run.Rejected,
	}
	if resp.Diagnostics == nil {
		resp.Diagnostics = []vibe.Diagnostic{}
	}
	if resp.Rejected == nil {
		resp.Rejected = []*vibe.RecordError{}
	}
	writeJSON(w, http.StatusOK, resp)
}
