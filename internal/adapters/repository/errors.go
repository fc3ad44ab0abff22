package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound       = errors.New("player not found")
	ErrSeasonNotFound = errors.New("season not found")
	ErrInvalidLimit   = errors.New("invalid leaderboard limit")
	ErrUnscored       = errors.New("player is unscored")
	ErrNilRun         = errors.New("nil run")
	ErrStaleRun       = errors.New("run superseded by a newer submission")
)
