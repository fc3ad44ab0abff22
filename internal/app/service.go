// Package service wires the scoring pipeline, the job queue and the
// published boards together and implements the dependencies of the HTTP
// API and the CLI.
package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/okian/vibe/internal/adapters/mq/queue"
	"github.com/okian/vibe/internal/adapters/mq/worker"
	"github.com/okian/vibe/internal/adapters/repository"
	"github.com/okian/vibe/internal/adapters/statsfeed"
	"github.com/okian/vibe/internal/batch"
	"github.com/okian/vibe/internal/domain/dedupe"
	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/scoring"
	"github.com/okian/vibe/internal/domain/types"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/logger"
	"github.com/okian/vibe/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Service implements the API dependencies for the VIBE boards.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.TreapStore
	deduper dedupe.Deduper
	scorer  *scoring.PipelineScorer
	jobs    *jobTracker
	source  statsfeed.Source
	queue   *queue.InMemoryQueue
	pool    *worker.Pool
	cancel  context.CancelFunc

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	jobHistory    int
	maxSeasons    int
	league        vibe.League
	defaultSeason string
	preload       []string

	started bool
	logger  logger.Logger
}

// New constructs a Service. Boards, dedupe state and job history live for
// the lifetime of the Service and survive Stop/Start.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   64,
		dedupeSize:  10_000,
		jobHistory:  1_000,
		league:      vibe.DefaultLeague(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.store = repository.NewTreapStore(repository.WithMaxSeasons(s.maxSeasons))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.scorer = scoring.NewPipelineScorer(
		scoring.WithLeague(s.league),
		scoring.WithLogger(s.logger.Named("scoring")),
	)
	s.jobs = newJobTracker(s.jobHistory)
	return s
}

// Start creates the queue, starts the workers and preloads the configured
// seasons. Preload failures are logged and do not stop the service.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil
	}
	s.logger.Info(ctx, "starting vibe service...")

	// Workers outlive the Start call, so they get their own context.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s.scorer, s.store,
		worker.WithLogger(s.logger.Named("worker")),
		worker.WithObserver(s),
	)
	s.pool.Start(runCtx)
	s.started = true
	s.mu.Unlock()

	s.logger.Info(ctx, "vibe service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
	)

	if len(s.preload) > 0 {
		if err := s.Preload(ctx, s.preload...); err != nil {
			return err
		}
	}
	return nil
}

// Stop drains the queue and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping vibe service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()
	s.started = false
	s.logger.Info(ctx, "vibe service stopped")
}

// JobStarted implements worker.Observer.
func (s *Service) JobStarted(_ context.Context, job worker.Job) { //nolint:gocritic // observer signature
	s.jobs.started(job.JobID)
}

// JobFinished implements worker.Observer. A failed submission is forgotten
// by the deduper so that it can be sent again.
func (s *Service) JobFinished(ctx context.Context, job worker.Job, _ *vibe.Run, err error) { //nolint:gocritic // observer signature
	s.jobs.done(job.JobID, err)
	if err != nil {
		s.deduper.Unrecord(ctx, job.SubmissionID)
	}
}

// SubmissionID derives a submission id from the roster content, so that
// an identical resubmission is recognised as a duplicate.
func SubmissionID(season string, roster []model.PlayerSeasonTotals) (string, error) {
	body, err := sonic.Marshal(roster)
	if err != nil {
		return "", fmt.Errorf("encode roster: %w", err)
	}
	h := xxhash.New()
	_, _ = h.WriteString(season)
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(body)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SubmitRoster queues a complete season roster for scoring. A submission
// id already seen returns the original job with Duplicate set.
func (s *Service) SubmitRoster(ctx context.Context, season, submissionID string, roster []model.PlayerSeasonTotals) (types.Submission, error) {
	if !statsfeed.ValidSeason(season) {
		metrics.RecordSubmissionRejected("invalid_season")
		return types.Submission{}, fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}
	if len(roster) == 0 {
		metrics.RecordSubmissionRejected("empty_roster")
		return types.Submission{}, fmt.Errorf("season %q: %w", season, scoring.ErrEmptyRoster)
	}
	if submissionID == "" {
		id, err := SubmissionID(season, roster)
		if err != nil {
			return types.Submission{}, err
		}
		submissionID = id
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.Submission{}, ErrNotStarted
	}

	jobID := uuid.NewString()
	if original, seen := s.deduper.SeenAndRecord(ctx, submissionID, jobID); seen {
		metrics.RecordSubmissionDuplicate()
		s.logger.Debug(ctx, "duplicate submission",
			logger.String("season", season),
			logger.String("submission_id", submissionID),
			logger.String("job_id", original),
		)
		return types.Submission{JobID: original, SubmissionID: submissionID, Duplicate: true}, nil
	}

	job := model.ScoringJob{
		JobID:        jobID,
		SubmissionID: submissionID,
		Season:       season,
		Roster:       roster,
		Submitted:    time.Now(),
	}
	s.jobs.queued(job)
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.jobs.forget(jobID)
		s.deduper.Unrecord(ctx, submissionID)
		if errors.Is(err, queue.ErrFull) {
			metrics.RecordSubmissionRejected("queue_full")
			return types.Submission{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		metrics.RecordSubmissionRejected("enqueue")
		return types.Submission{}, fmt.Errorf("enqueue: %w", err)
	}

	metrics.RecordSubmissionAccepted()
	s.logger.Info(ctx, "roster queued",
		logger.String("season", season),
		logger.String("job_id", jobID),
		logger.Int("players", len(roster)),
	)
	return types.Submission{JobID: jobID, SubmissionID: submissionID}, nil
}

// ScoreRoster scores a roster synchronously without publishing it.
func (s *Service) ScoreRoster(ctx context.Context, season string, roster []model.PlayerSeasonTotals) (*vibe.Run, error) {
	if !statsfeed.ValidSeason(season) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeason, season)
	}
	return s.scorer.Score(ctx, scoring.Input{Season: season, Roster: roster})
}

// Refresh fetches a season from the configured source and queues it.
func (s *Service) Refresh(ctx context.Context, season string) (types.Submission, error) {
	if s.source == nil {
		return types.Submission{}, ErrNoSource
	}
	roster, err := s.source.Fetch(ctx, season)
	if err != nil {
		return types.Submission{}, fmt.Errorf("fetch season %s: %w", season, err)
	}
	return s.SubmitRoster(ctx, season, "", roster)
}

// Preload fetches and scores seasons synchronously, publishing each one
// that succeeds. Only a cancelled ctx is returned as an error.
func (s *Service) Preload(ctx context.Context, seasons ...string) error {
	if s.source == nil {
		s.logger.Warn(ctx, "preload skipped: no stats source configured")
		return nil
	}

	var todo []batch.Season
	for _, season := range seasons {
		roster, err := s.source.Fetch(ctx, season)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			}
			s.logger.Warn(ctx, "preload fetch failed", logger.String("season", season), logger.Error(err))
			continue
		}
		todo = append(todo, batch.Season{Season: season, Roster: roster})
	}
	if len(todo) == 0 {
		return nil
	}

	results, err := batch.ScoreSeasons(ctx, s.scorer, todo,
		batch.WithWorkers(s.workerCount),
		batch.WithLogger(s.logger),
	)
	if err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := s.store.Publish(ctx, r.Run); err != nil {
			s.logger.Warn(ctx, "preload publish failed", logger.String("season", r.Season), logger.Error(err))
			continue
		}
		s.logger.Info(ctx, "season preloaded",
			logger.String("season", r.Season),
			logger.Int("scored", r.Run.Scored),
			logger.Duration("duration", r.Duration),
		)
	}
	return nil
}

// ResolveSeason returns season when given, else the configured default
// season, else the latest published season by name.
func (s *Service) ResolveSeason(ctx context.Context, season string) (string, error) {
	if season != "" {
		if !statsfeed.ValidSeason(season) {
			return "", fmt.Errorf("%w: %q", ErrInvalidSeason, season)
		}
		return season, nil
	}
	if s.defaultSeason != "" {
		return s.defaultSeason, nil
	}
	seasons := s.store.Seasons(ctx)
	if len(seasons) == 0 {
		return "", ErrNoSeason
	}
	return seasons[len(seasons)-1].Season, nil
}

// Job returns the status of a job.
func (s *Service) Job(_ context.Context, jobID string) (types.JobStatus, error) {
	j, ok := s.jobs.get(jobID)
	if !ok {
		return types.JobStatus{}, ErrJobNotFound
	}
	return j, nil
}

// TopN returns the top n entries of a season board.
func (s *Service) TopN(ctx context.Context, season string, n int, pos vibe.Position) ([]types.Entry, error) {
	return s.store.TopN(ctx, season, n, pos)
}

// Rank returns a player's entry on a season board.
func (s *Service) Rank(ctx context.Context, season, playerID string) (types.Entry, error) {
	return s.store.Rank(ctx, season, playerID)
}

// Player returns a player's full breakdown.
func (s *Service) Player(ctx context.Context, season, playerID string) (vibe.PlayerResult, error) {
	return s.store.Player(ctx, season, playerID)
}

// Run returns the published run of a season.
func (s *Service) Run(ctx context.Context, season string) (*vibe.Run, error) {
	return s.store.Run(ctx, season)
}

// Seasons lists published seasons.
func (s *Service) Seasons(ctx context.Context) []types.SeasonSummary {
	return s.store.Seasons(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	seasons := s.store.Seasons(ctx)
	ranked := 0
	for _, season := range seasons {
		ranked += season.Scored
	}
	stats := map[string]any{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"dedupeEntries":  s.deduper.Size(),
		"seasons":        len(seasons),
		"playersRanked":  ranked,
		"jobs":           s.jobs.counts(),
		"sourceEnabled":  s.source != nil,
		"minCohortSize":  s.scorer.League().MinCohortSize,
		"referenceMinMP": s.scorer.League().ReferenceMinMinutes,
	}
	if s.started {
		queueLen := s.queue.Len()
		stats["queueLength"] = queueLen
		metrics.UpdateQueueSize(queueLen, s.queue.Cap())
	}
	return stats
}
