// Package types contains common types used across the application
package types

import "time"

// Entry represents a leaderboard entry
type Entry struct {
	Rank       int     `json:"rank"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name,omitempty"`
	Team       string  `json:"team,omitempty"`
	Position   string  `json:"position"`
	Score      float64 `json:"score"`
	Tier       string  `json:"tier"`
}

// SeasonSummary describes one published season board.
type SeasonSummary struct {
	Season      string    `json:"season"`
	Players     int       `json:"players"`
	Scored      int       `json:"scored"`
	Unscored    int       `json:"unscored"`
	Rejected    int       `json:"rejected"`
	Diagnostics int       `json:"diagnostics"`
	PublishedAt time.Time `json:"published_at"`
}

// Job states reported by JobStatus.State.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// JobStatus reports the progress of one asynchronous scoring job.
type JobStatus struct {
	JobID        string     `json:"job_id"`
	SubmissionID string     `json:"submission_id"`
	Season       string     `json:"season"`
	Players      int        `json:"players"`
	State        string     `json:"status"`
	Error        string     `json:"error,omitempty"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// Submission is the answer to a roster submission.
type Submission struct {
	JobID        string `json:"job_id"`
	SubmissionID string `json:"submission_id"`
	Duplicate    bool   `json:"duplicate"`
}
