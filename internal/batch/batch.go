// Package batch scores many independent seasons at once. Each season is a
// closed roster, so seasons never share cohort statistics and can run in
// parallel on a bounded goroutine pool.
package batch

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/scoring"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/logger"
)

// ErrNoSeasons is returned when there is nothing to score.
var ErrNoSeasons = errors.New("no seasons to score")

// Season is one roster to score.
type Season struct {
	Season string
	Roster []model.PlayerSeasonTotals
}

// Result is the outcome for one season. Exactly one of Run and Err is set.
type Result struct {
	Season   string
	Run      *vibe.Run
	Err      error
	Duration time.Duration
}

// Option configures ScoreSeasons.
type Option func(*options)

type options struct {
	workers int
	log     logger.Logger
}

// WithWorkers bounds the number of seasons scored concurrently.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithLogger sets the logger for per-season failures.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// ScoreSeasons scores every season with scorer. Results come back in input
// order. A failing season does not stop the others; its error is carried
// in its Result. The returned error is reserved for failures of the batch
// itself.
func ScoreSeasons(ctx context.Context, scorer scoring.Scorer, seasons []Season, opts ...Option) ([]Result, error) {
	if len(seasons) == 0 {
		return nil, ErrNoSeasons
	}
	o := options{workers: runtime.NumCPU(), log: logger.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	pool, err := ants.NewPool(min(o.workers, len(seasons)))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	results := make([]Result, len(seasons))
	var wg sync.WaitGroup
	for i, s := range seasons {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			start := time.Now()
			run, err := scorer.Score(ctx, scoring.Input{Season: s.Season, Roster: s.Roster})
			results[i] = Result{Season: s.Season, Run: run, Err: err, Duration: time.Since(start)}
			if err != nil {
				o.log.Warn(ctx, "season scoring failed", logger.String("season", s.Season), logger.Error(err))
			}
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit season %s: %w", s.Season, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("context cancelled: %w", err)
	}
	return results, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}
