package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/vibe/internal/adapters/repository"
	"github.com/okian/vibe/internal/adapters/statsfeed"
	service "github.com/okian/vibe/internal/app"
	"github.com/okian/vibe/internal/domain/scoring"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrBackpressure = errors.New("backpressure")
	ErrServe        = errors.New("http serve failed")
)

// opError tags an error with the handler that produced it.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	switch {
	case e.err == nil:
		return fmt.Sprintf("%s: %v", e.op, e.kind)
	case e.kind == nil:
		return fmt.Sprintf("%s: %v", e.op, e.err)
	default:
		return fmt.Sprintf("%s: %v: %v", e.op, e.kind, e.err)
	}
}

func (e *opError) Unwrap() []error {
	var out []error
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// badRequest wraps err as an ErrBadRequest raised by op.
func badRequest(op string, err error) error {
	return &opError{op: op, kind: ErrBadRequest, err: err}
}

// classify maps a dependency error onto an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, scoring.ErrEmptyRoster),
		errors.Is(err, service.ErrInvalidSeason),
		errors.Is(err, statsfeed.ErrInvalidSeason),
		errors.Is(err, repository.ErrInvalidLimit):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrUnscored):
		return http.StatusNotFound, "unscored"
	case errors.Is(err, repository.ErrSeasonNotFound),
		errors.Is(err, service.ErrNoSeason),
		errors.Is(err, statsfeed.ErrUnknownSeason):
		return http.StatusNotFound, "season_not_found"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrJobNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNoSource), errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, statsfeed.ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
