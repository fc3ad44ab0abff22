package api

import (
	"fmt"
	"net/http"

	"github.com/okian/vibe/internal/domain/vibe"
)

type leaderboardResponse struct {
	Season   string  `json:"season"`
	Position string  `json:"position,omitempty"`
	Limit    int     `json:"limit"`
	Entries  []Entry `json:"entries"`
}

// handleLeaderboard handles GET /leaderboard?season=&limit=&position=.
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "leaderboard"
	q := r.URL.Query()

	limit, err := atoiOr(q.Get("limit"), defaultLimit)
	if err != nil || limit < 1 {
		fail(w, badRequest(op, fmt.Errorf("limit must be a positive integer, got %q", q.Get("limit"))))
		return
	}
	limit = min(limit, s.maxLimit)

	pos, err := parsePosition(q.Get("position"))
	if err != nil {
		fail(w, badRequest(op, err))
		return
	}

	season, err := s.season(r)
	if err != nil {
		fail(w, err)
		return
	}
	entries, err := s.deps.TopN(r.Context(), season, limit, pos)
	if err != nil {
		fail(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Season:   season,
		Position: string(pos),
		Limit:    limit,
		Entries:  entries,
	})
}

// parsePosition treats an empty filter as every position.
func parsePosition(raw string) (vibe.Position, error) {
	if raw == "" {
		return "", nil
	}
	return vibe.ParsePosition(raw)
}
