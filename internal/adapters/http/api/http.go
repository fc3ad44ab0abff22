// Package api serves the VIBE boards and roster submissions over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/types"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/metrics"
)

const (
	defaultMaxLimit     = 100
	defaultLimit        = 25
	maxRequestBodyBytes = 32 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitRoster(ctx context.Context, season, submissionID string, roster []model.PlayerSeasonTotals) (types.Submission, error)
	ScoreRoster(ctx context.Context, season string, roster []model.PlayerSeasonTotals) (*vibe.Run, error)
	Refresh(ctx context.Context, season string) (types.Submission, error)
	Job(ctx context.Context, jobID string) (types.JobStatus, error)

	// ResolveSeason applies the default season to an empty query value.
	ResolveSeason(ctx context.Context, season string) (string, error)

	// Read operations expose the published boards.
	TopN(ctx context.Context, season string, n int, pos vibe.Position) ([]Entry, error)
	Rank(ctx context.Context, season, playerID string) (Entry, error)
	Player(ctx context.Context, season, playerID string) (vibe.PlayerResult, error)
	Run(ctx context.Context, season string) (*vibe.Run, error)
	Seasons(ctx context.Context) []types.SeasonSummary
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]any
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Option configures a Server.
type Option func(*Server)

// WithMaxLimit caps the leaderboard limit parameter.
func WithMaxLimit(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps     Dependencies
	stats    StatsProvider
	validate *validator.Validate
	maxLimit int
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, stats StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:     deps,
		stats:    stats,
		validate: validator.New(),
		maxLimit: defaultMaxLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.handleHealth, "healthz"))
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.handleStats, "stats"))

	mux.HandleFunc("POST /seasons/{season}/rosters", MetricsMiddleware(s.handleSubmitRoster, "rosters"))
	mux.HandleFunc("POST /seasons/{season}/score", MetricsMiddleware(s.handleScoreRoster, "score"))
	mux.HandleFunc("POST /seasons/{season}/refresh", MetricsMiddleware(s.handleRefresh, "refresh"))
	mux.HandleFunc("GET /seasons/{season}/cohorts", MetricsMiddleware(s.handleCohorts, "cohorts"))
	mux.HandleFunc("GET /seasons", MetricsMiddleware(s.handleSeasons, "seasons"))
	mux.HandleFunc("GET /jobs/{job_id}", MetricsMiddleware(s.handleJob, "jobs"))

	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.handleLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{player_id}", MetricsMiddleware(s.handleRank, "rank"))
	mux.HandleFunc("GET /players/{player_id}", MetricsMiddleware(s.handlePlayer, "players"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// fail classifies err and writes the matching error response.
func fail(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// season resolves the season query parameter against the default season.
func (s *Server) season(r *http.Request) (string, error) {
	return s.deps.ResolveSeason(r.Context(), r.URL.Query().Get("season"))
}

func atoiOr(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
