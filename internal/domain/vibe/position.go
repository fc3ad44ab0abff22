package vibe

import (
	"fmt"
	"strings"

	"github.com/okian/vibe/internal/domain/model"
)

// Position is the cohort a player is compared against on defence.
type Position string

const (
	Guard Position = "guard"
	Wing  Position = "wing"
	Big   Position = "big"
)

// Positions lists every cohort in a stable order.
var Positions = [...]Position{Guard, Wing, Big}

// Valid reports whether p is one of the three cohorts.
func (p Position) Valid() bool {
	switch p {
	case Guard, Wing, Big:
		return true
	}
	return false
}

// ParsePosition accepts the cohort names case-insensitively.
func ParsePosition(s string) (Position, error) {
	p := Position(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown position %q", s)
	}
	return p, nil
}

// Classify assigns the player's cohort from per-game rebounds and assists.
// Big is checked before Guard, so a high-rebound playmaker is a Big.
// GP = 0 has no per-game signal and defaults to Wing with defaulted set.
func Classify(t model.PlayerSeasonTotals, l League) (pos Position, defaulted bool) {
	if t.GP <= 0 {
		return Wing, true
	}
	if (t.ORB+t.DRB)/t.GP >= l.BigReboundsPerGame {
		return Big, false
	}
	if t.AST/t.GP >= l.GuardAssistsPerGame {
		return Guard, false
	}
	return Wing, false
}
