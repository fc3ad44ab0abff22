package api

import (
	"net/http"

	"github.com/okian/vibe/internal/domain/vibe"
)

type playerResponse struct {
	Season string `json:"season"`
	vibe.PlayerResult
}

// handlePlayer handles GET /players/{player_id}?season=. Unscored players
// are returned with their reason rather than as an error.
func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	season, err := s.season(r)
	if err != nil {
		fail(w, err)
		return
	}
	res, err := s.deps.Player(r.Context(), season, r.PathValue("player_id"))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerResponse{Season: season, PlayerResult: res})
}
