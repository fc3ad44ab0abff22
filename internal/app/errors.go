package service

import "errors"

var (
	// ErrNotStarted is returned by operations that need running components.
	ErrNotStarted = errors.New("service not started")
	// ErrBackpressure is returned when the job queue is full.
	ErrBackpressure = errors.New("scoring queue is full")
	// ErrNoSource is returned by Refresh when no stats feed is configured.
	ErrNoSource = errors.New("no stats source configured")
	// ErrInvalidSeason is returned for an empty or malformed season name.
	ErrInvalidSeason = errors.New("invalid season")
	// ErrJobNotFound is returned for an unknown or forgotten job id.
	ErrJobNotFound = errors.New("job not found")
	// ErrNoSeason is returned when no season was given and none is published.
	ErrNoSeason = errors.New("no season available")
)
