package model

import "time"

// ScoringJob is one roster snapshot waiting to be scored. A job always
// carries the complete roster for its season.
type ScoringJob struct {
	JobID        string
	SubmissionID string
	Season       string
	Roster       []PlayerSeasonTotals
	Submitted    time.Time
}
