package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"

	"github.com/okian/vibe/internal/adapters/statsfeed"
	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/types"
)

var errEmptyBody = errors.New("empty request body")

type submissionResponse struct {
	Status string `json:"status"`
	types.Submission
}

// writeSubmission answers 202 for a new job and 200 for a duplicate.
func writeSubmission(w http.ResponseWriter, sub types.Submission) {
	if sub.Duplicate {
		writeJSON(w, http.StatusOK, submissionResponse{Status: "duplicate", Submission: sub})
		return
	}
	writeJSON(w, http.StatusAccepted, submissionResponse{Status: "accepted", Submission: sub})
}

// rosterRequest is the native submission shape. Bodies in the stats
// supplier's result-set shape are accepted as well.
type rosterRequest struct {
	SubmissionID string                     `json:"submission_id" validate:"omitempty,max=128"`
	Players      []model.PlayerSeasonTotals `json:"players" validate:"required,min=1"`
}

// decodeRoster reads a roster body. A body with a "players" array is the
// native shape; anything else is handed to the stats feed decoder.
func (s *Server) decodeRoster(r *http.Request, op string) (rosterRequest, error) {
	var req rosterRequest
	raw, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	if err != nil {
		return req, badRequest(op, fmt.Errorf("read body: %w", err))
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return req, badRequest(op, errEmptyBody)
	}

	if raw[0] == '{' {
		if err := sonic.Unmarshal(raw, &req); err != nil {
			return req, badRequest(op, fmt.Errorf("decode body: %w", err))
		}
	}
	if len(req.Players) == 0 {
		players, err := statsfeed.DecodeBytes(raw)
		if err != nil {
			return req, badRequest(op, err)
		}
		req.Players = players
	}
	if err := s.validate.StructCtx(r.Context(), req); err != nil {
		return req, badRequest(op, err)
	}
	return req, nil
}

// handleSubmitRoster handles POST /seasons/{season}/rosters. Accepted jobs
// answer 202; a repeat of an already queued or finished roster answers 200
// with the original job.
func (s *Server) handleSubmitRoster(w http.ResponseWriter, r *http.Request) {
	const op = "submit_roster"
	req, err := s.decodeRoster(r, op)
	if err != nil {
		fail(w, err)
		return
	}
	sub, err := s.deps.SubmitRoster(r.Context(), r.PathValue("season"), req.SubmissionID, req.Players)
	if err != nil {
		fail(w, err)
		return
	}
	writeSubmission(w, sub)
}

// handleScoreRoster handles POST /seasons/{season}/score. It scores the
// roster synchronously and returns the full run without publishing it.
func (s *Server) handleScoreRoster(w http.ResponseWriter, r *http.Request) {
	const op = "score_roster"
	req, err := s.decodeRoster(r, op)
	if err != nil {
		fail(w, err)
		return
	}
	run, err := s.deps.ScoreRoster(r.Context(), r.PathValue("season"), req.Players)
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleRefresh handles POST /seasons/{season}/refresh, pulling the season
// from the configured stats feed and queueing it.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	sub, err := s.deps.Refresh(r.Context(), r.PathValue("season"))
	if err != nil {
		fail(w, err)
		return
	}
	writeSubmission(w, sub)
}
