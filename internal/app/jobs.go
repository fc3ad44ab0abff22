package service

import (
	"sync"
	"time"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/types"
)

// jobTracker keeps the status of pending jobs and of the most recent
// finished ones. Finished jobs beyond limit are forgotten oldest first.
type jobTracker struct {
	mu       sync.RWMutex
	jobs     map[string]*types.JobStatus
	finished []string
	limit    int
	now      func() time.Time
}

func newJobTracker(limit int) *jobTracker {
	return &jobTracker{
		jobs:  make(map[string]*types.JobStatus),
		limit: limit,
		now:   time.Now,
	}
}

func (t *jobTracker) queued(job model.ScoringJob) { //nolint:gocritic // mirrors the queue payload
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[job.JobID] = &types.JobStatus{
		JobID:        job.JobID,
		SubmissionID: job.SubmissionID,
		Season:       job.Season,
		Players:      len(job.Roster),
		State:        types.JobQueued,
		SubmittedAt:  job.Submitted,
	}
}

// forget drops a job that never made it into the queue.
func (t *jobTracker) forget(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, jobID)
}

func (t *jobTracker) started(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if j, ok := t.jobs[jobID]; ok {
		at := t.now()
		j.State = types.JobRunning
		j.StartedAt = &at
	}
}

func (t *jobTracker) done(jobID string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[jobID]
	if !ok {
		return
	}
	at := t.now()
	j.FinishedAt = &at
	j.State = types.JobDone
	if err != nil {
		j.State = types.JobFailed
		j.Error = err.Error()
	}

	t.finished = append(t.finished, jobID)
	for t.limit > 0 && len(t.finished) > t.limit {
		delete(t.jobs, t.finished[0])
		t.finished = t.finished[1:]
	}
}

func (t *jobTracker) get(jobID string) (types.JobStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	j, ok := t.jobs[jobID]
	if !ok {
		return types.JobStatus{}, false
	}
	return *j, true
}

// counts returns the number of tracked jobs per state.
func (t *jobTracker) counts() map[string]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := map[string]int{}
	for _, j := range t.jobs {
		out[j.State]++
	}
	return out
}
