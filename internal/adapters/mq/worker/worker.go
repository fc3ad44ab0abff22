// Package worker drains scoring jobs: each job is one full season roster
// that is scored as a closed cohort and then published as a new board.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/scoring"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/logger"
	"github.com/okian/vibe/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// ErrStopped is returned by Shutdown when the worker was already stopped.
var ErrStopped = errors.New("worker stopped")

// Job is what workers read off the queue.
type Job = model.ScoringJob

// Scorer scores one roster.
type Scorer interface {
	Score(ctx context.Context, in scoring.Input) (*vibe.Run, error)
}

// Publisher makes a scored season visible to readers.
type Publisher interface {
	Publish(ctx context.Context, run *vibe.Run) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Observer is told when a job starts and when it finishes. err is nil on
// success, in which case run is the published result.
type Observer interface {
	JobStarted(ctx context.Context, job Job)
	JobFinished(ctx context.Context, job Job, run *vibe.Run, err error)
}

type nopObserver struct{}

func (nopObserver) JobStarted(context.Context, Job)                    {}
func (nopObserver) JobFinished(context.Context, Job, *vibe.Run, error) {}

// Worker processes jobs until its context ends or it is shut down.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	scorer    Scorer
	publisher Publisher
	observer  Observer
	name      string
	logger    logger.Logger

	// busy is shared across a pool to drive the active worker gauge.
	busy *atomic.Int64

	stopOnce sync.Once
	shutdown chan struct{}
	done     chan struct{}
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer Scorer, publisher Publisher, opts ...Option) *InMemoryWorker {
	c := newConfig(opts)
	return &InMemoryWorker{
		queue:     q,
		scorer:    scorer,
		publisher: publisher,
		observer:  c.observer,
		name:      c.name,
		logger:    c.logger.Named(c.name),
		busy:      new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Run implements Worker.
func (w *InMemoryWorker) Run(ctx context.Context) {
	w.consume(ctx, w.queue.Dequeue(ctx))
}

// consume processes jobs from a channel that may be shared with other
// workers, so a free worker always picks up the next job.
func (w *InMemoryWorker) consume(ctx context.Context, jobs <-chan Job) {
	defer close(w.done)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "scoring job failed",
					logger.String("job_id", job.JobID),
					logger.String("season", job.Season),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown implements Worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	stopped := true
	w.stopOnce.Do(func() {
		stopped = false
		close(w.shutdown)
	})
	if stopped {
		return ErrStopped
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job Job) (err error) { //nolint:gocritic // jobs travel by value through the channel
	start := time.Now()
	metrics.UpdateWorkerActiveCount(int(w.busy.Add(1)))
	w.observer.JobStarted(ctx, job)

	var run *vibe.Run
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.busy.Add(-1)))
		status := "done"
		if err != nil {
			status = "failed"
		}
		metrics.RecordJobCompleted(status, time.Since(start))
		w.observer.JobFinished(ctx, job, run, err)
	}()

	run, err = w.scorer.Score(ctx, scoring.Input{Season: job.Season, JobID: job.JobID, Roster: job.Roster})
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "score")
		return fmt.Errorf("score job %s: %w", job.JobID, err)
	}
	run.Submitted = job.Submitted
	if err = w.publisher.Publish(ctx, run); err != nil {
		run = nil
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "publish")
		return fmt.Errorf("publish job %s: %w", job.JobID, err)
	}

	w.logger.Debug(ctx, "season published",
		logger.String("job_id", job.JobID),
		logger.String("season", job.Season),
		logger.Int("scored", run.Scored),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
	wg      sync.WaitGroup
}

// NewPool creates a worker pool. A non-positive count defaults to the
// number of CPUs: scoring is CPU bound.
func NewPool(workerCount int, q Queue, scorer Scorer, publisher Publisher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	c := newConfig(opts)
	busy := new(atomic.Int64)

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  c.logger.Named("pool"),
	}
	for i := range p.workers {
		w := NewInMemoryWorker(q, scorer, publisher,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(c.logger),
			WithObserver(c.observer),
		)
		w.busy = busy
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(workerCount)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool. They share a single dequeue
// channel, so queued seasons are scored in parallel.
func (p *Pool) Start(ctx context.Context) {
	jobs := p.queue.Dequeue(ctx)
	for _, w := range p.workers {
		p.wg.Add(1)
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.consume(ctx, jobs)
		}(w)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop signals every worker and waits for in-flight jobs to finish.
// Jobs still in the queue are left there.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.stopOnce.Do(func() { close(w.shutdown) })
	}
	p.wg.Wait()
}

// Shutdown closes the queue, lets workers drain what is already queued, and
// waits for them up to ctx or the pool timeout, whichever ends first.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()
	select {
	case <-done:
		p.logger.Info(ctx, "worker pool stopped")
		return nil
	case <-shutdownCtx.Done():
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", shutdownCtx.Err())
	}
}
