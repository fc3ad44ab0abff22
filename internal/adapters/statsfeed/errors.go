package statsfeed

import "errors"

var (
	// ErrNoResultSet is returned when a payload carries no table to read.
	ErrNoResultSet = errors.New("no result set in payload")
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidValue is returned when a cell cannot be read as a number.
	ErrInvalidValue = errors.New("invalid cell value")
	// ErrUpstream is returned when the provider answers with a non-2xx status.
	ErrUpstream = errors.New("upstream error")
	// ErrUnknownSeason is returned when a source has nothing for a season.
	ErrUnknownSeason = errors.New("unknown season")
	// ErrInvalidSeason is returned for season names a source cannot address.
	ErrInvalidSeason = errors.New("invalid season name")
)
