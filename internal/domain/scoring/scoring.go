// Package scoring defines the contract for scoring a roster snapshot.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/logger"
	"github.com/okian/vibe/pkg/metrics"
)

// ErrEmptyRoster is returned when there is nothing to score.
var ErrEmptyRoster = errors.New("empty roster")

// Option applies a configuration option to the PipelineScorer.
type Option func(*PipelineScorer)

// WithLeague replaces the default league constants.
func WithLeague(l vibe.League) Option {
	return func(s *PipelineScorer) {
		s.pipeline = vibe.NewPipeline(l)
	}
}

// WithLogger sets the logger used for run summaries.
func WithLogger(l logger.Logger) Option {
	return func(s *PipelineScorer) {
		if l != nil {
			s.log = l
		}
	}
}

// Input is one complete roster for one season.
type Input struct {
	Season string
	JobID  string
	Roster []model.PlayerSeasonTotals
}

// Scorer scores a full roster as one closed cohort.
type Scorer interface {
	// Score runs the pipeline, honoring ctx for cancellation. A cancelled
	// run returns no result: there is no partial state to keep.
	Score(ctx context.Context, in Input) (*vibe.Run, error)
}

// PipelineScorer implements Scorer over vibe.Pipeline.
type PipelineScorer struct {
	pipeline *vibe.Pipeline
	log      logger.Logger
}

// NewPipelineScorer creates a scorer with the default league constants.
func NewPipelineScorer(opts ...Option) *PipelineScorer {
	s := &PipelineScorer{
		pipeline: vibe.NewPipeline(vibe.DefaultLeague()),
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// League returns the constants the scorer uses.
func (s *PipelineScorer) League() vibe.League { return s.pipeline.League() }

// Score implements Scorer.
func (s *PipelineScorer) Score(ctx context.Context, in Input) (*vibe.Run, error) {
	if err := ctx.Err(); err != nil {
		metrics.RecordScoringRun("canceled", 0, len(in.Roster))
		return nil, fmt.Errorf("context cancelled: %w", err)
	}
	if len(in.Roster) == 0 {
		metrics.RecordScoringRun("error", 0, 0)
		return nil, fmt.Errorf("season %q: %w", in.Season, ErrEmptyRoster)
	}

	start := time.Now()
	run := s.pipeline.Run(in.Season, in.Roster)
	took := time.Since(start)

	if err := ctx.Err(); err != nil {
		metrics.RecordScoringRun("canceled", took, len(in.Roster))
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	record(run)
	metrics.RecordScoringRun("ok", took, len(in.Roster))

	fields := []logger.Field{
		logger.String("season", in.Season),
		logger.Int("players", len(in.Roster)),
		logger.Int("scored", run.Scored),
		logger.Int("unscored", run.Unscored),
		logger.Int("rejected", len(run.Rejected)),
		logger.Duration("duration", took),
	}
	if in.JobID != "" {
		fields = append(fields, logger.String("job_id", in.JobID))
	}
	s.log.Info(ctx, "roster scored", fields...)
	for _, d := range run.Diagnostics {
		s.log.Debug(ctx, "scoring diagnostic",
			logger.String("season", in.Season),
			logger.String("kind", string(d.Kind)),
			logger.String("metric", string(d.Metric)),
			logger.String("scope", d.Scope),
			logger.Int("n", d.N),
		)
	}
	return run, nil
}

func record(run *vibe.Run) {
	unscored := map[string]int{}
	for _, r := range run.Results {
		if !r.Scored {
			unscored[r.Reason]++
		}
	}
	for reason, n := range unscored {
		metrics.RecordUnscored(reason, n)
	}
	for _, rerr := range run.Rejected {
		metrics.RecordRejected(vibe.Reason(rerr), 1)
	}
	for _, d := range run.Diagnostics {
		switch d.Kind {
		case vibe.DiagDegenerateCohort:
			metrics.RecordDegenerateCohort(string(d.Metric), d.Scope)
		case vibe.DiagDegenerateLeague:
			metrics.RecordDegenerateLeague()
		}
	}
}
