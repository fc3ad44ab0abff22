package api

import (
	"net/http"
)

type rankResponse struct {
	Season string `json:"season"`
	Entry
}

// handleRank handles GET /rank/{player_id}?season=.
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	season, err := s.season(r)
	if err != nil {
		fail(w, err)
		return
	}
	e, err := s.deps.Rank(r.Context(), season, r.PathValue("player_id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rankResponse{Season: season, Entry: e})
}
