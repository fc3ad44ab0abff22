package vibe

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel kinds for scoring errors. Callers match them with errors.Is.
var (
	ErrInvalidRecord      = errors.New("invalid record")
	ErrInsufficientSample = errors.New("insufficient sample")

	ErrMissingIdentity = fmt.Errorf("%w: missing player id", ErrInvalidRecord)
	ErrNegativeValue   = fmt.Errorf("%w: negative value", ErrInvalidRecord)
	ErrNonFiniteValue  = fmt.Errorf("%w: non-finite value", ErrInvalidRecord)
	ErrDuplicatePlayer = fmt.Errorf("%w: duplicate player id", ErrInvalidRecord)

	ErrInsufficientMinutes  = fmt.Errorf("%w: no minutes played", ErrInsufficientSample)
	ErrInsufficientShooting = fmt.Errorf("%w: no true shooting attempts", ErrInsufficientSample)
)

// Reason codes reported for rejected and unscored players.
const (
	ReasonMissingIdentity      = "missing_identity"
	ReasonNegativeValue        = "negative_value"
	ReasonNonFiniteValue       = "non_finite_value"
	ReasonDuplicatePlayer      = "duplicate_player"
	ReasonInvalidRecord        = "invalid_record"
	ReasonInsufficientMinutes  = "insufficient_minutes"
	ReasonInsufficientShooting = "insufficient_shooting"
)

// Reason maps an error from this package to its reason code.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingIdentity):
		return ReasonMissingIdentity
	case errors.Is(err, ErrNegativeValue):
		return ReasonNegativeValue
	case errors.Is(err, ErrNonFiniteValue):
		return ReasonNonFiniteValue
	case errors.Is(err, ErrDuplicatePlayer):
		return ReasonDuplicatePlayer
	case errors.Is(err, ErrInsufficientMinutes):
		return ReasonInsufficientMinutes
	case errors.Is(err, ErrInsufficientShooting):
		return ReasonInsufficientShooting
	default:
		return ReasonInvalidRecord
	}
}

// RecordError reports a roster record rejected at input. It never aborts
// the rest of the roster.
type RecordError struct {
	Index    int
	PlayerID string
	Field    string
	Err      error
}

func (e *RecordError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf("record %d (%q): field %s: %v", e.Index, e.PlayerID, e.Field, e.Err)
	default:
		return fmt.Sprintf("record %d (%q): %v", e.Index, e.PlayerID, e.Err)
	}
}

func (e *RecordError) Unwrap() error { return e.Err }

// MarshalJSON renders the rejection with its reason code.
func (e *RecordError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Index    int    `json:"index"`
		PlayerID string `json:"player_id,omitempty"`
		Field    string `json:"field,omitempty"`
		Reason   string `json:"reason"`
		Message  string `json:"message"`
	}{
		Index:    e.Index,
		PlayerID: e.PlayerID,
		Field:    e.Field,
		Reason:   Reason(e.Err),
		Message:  e.Error(),
	})
}
