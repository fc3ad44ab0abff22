package vibe

import (
	"math"
	"strings"

	"github.com/okian/vibe/internal/domain/model"
)

// RateProfile is a player's season normalised to 100 individual possessions.
type RateProfile struct {
	Possessions float64 `json:"possessions"`

	PTS100 float64 `json:"pts100"`
	AST100 float64 `json:"ast100"`
	ORB100 float64 `json:"orb100"`
	DRB100 float64 `json:"drb100"`
	TOV100 float64 `json:"tov100"`
	STL100 float64 `json:"stl100"`
	BLK100 float64 `json:"blk100"`
	PF100  float64 `json:"pf100"`
	PM100  float64 `json:"pm100"`

	TS        float64 `json:"ts"`
	TSDefined bool    `json:"ts_defined"`

	// Per-game extras are for display only and never feed the score.
	PPG float64 `json:"ppg"`
	RPG float64 `json:"rpg"`
	APG float64 `json:"apg"`
	PER float64 `json:"per"`
	USG float64 `json:"usg"`
}

// Value returns the profile's value for m. TS reports false when undefined.
func (p RateProfile) Value(m Metric) (float64, bool) {
	switch m {
	case MetricTS:
		return p.TS, p.TSDefined
	case MetricPTS100:
		return p.PTS100, true
	case MetricAST100:
		return p.AST100, true
	case MetricORB100:
		return p.ORB100, true
	case MetricDRB100:
		return p.DRB100, true
	case MetricTOV100:
		return p.TOV100, true
	case MetricSTL100:
		return p.STL100, true
	case MetricBLK100:
		return p.BLK100, true
	case MetricPF100:
		return p.PF100, true
	case MetricPM100:
		return p.PM100, true
	}
	return 0, false
}

// Possessions converts minutes to individual possessions played.
func Possessions(minutes float64, l League) float64 {
	return minutes * 100 / l.PossessionDivisor
}

// Normalize derives the per-100 profile. MIN = 0 fails with
// ErrInsufficientMinutes. TSA = 0 returns the profile with TSDefined unset
// together with ErrInsufficientShooting.
func Normalize(t model.PlayerSeasonTotals, l League) (RateProfile, error) {
	var p RateProfile
	if t.GP > 0 {
		p.PPG = t.PTS / t.GP
		p.RPG = (t.ORB + t.DRB) / t.GP
		p.APG = t.AST / t.GP
		p.PER = (t.PTS + t.ORB + t.DRB + t.AST + t.STL + t.BLK -
			t.TOV - (t.FGA - t.FGM) - (t.FTA - t.FTM)) / t.GP
	}
	if t.MIN <= 0 {
		return p, ErrInsufficientMinutes
	}
	p.USG = (t.FGA + l.FreeThrowFactor*t.FTA + t.TOV) / t.MIN * 100

	poss := Possessions(t.MIN, l)
	per100 := func(x float64) float64 { return 100 * x / poss }

	p.Possessions = poss
	p.PTS100 = per100(t.PTS)
	p.AST100 = per100(t.AST)
	p.ORB100 = per100(t.ORB)
	p.DRB100 = per100(t.DRB)
	p.TOV100 = per100(t.TOV)
	p.STL100 = per100(t.STL)
	p.BLK100 = per100(t.BLK)
	p.PF100 = per100(t.PF)
	p.PM100 = t.PlusMinus / poss * 100

	tsa := t.FGA + l.FreeThrowFactor*t.FTA
	if tsa <= 0 {
		return p, ErrInsufficientShooting
	}
	p.TS = t.PTS / (2 * tsa)
	p.TSDefined = true
	return p, nil
}

// Validate checks identity, sign and finiteness. It returns nil or a
// *RecordError wrapping an ErrInvalidRecord kind.
func Validate(index int, t model.PlayerSeasonTotals) *RecordError {
	id := strings.TrimSpace(string(t.PlayerID))
	if id == "" {
		return &RecordError{Index: index, Field: "PLAYER_ID", Err: ErrMissingIdentity}
	}
	for _, f := range countingFields(t) {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &RecordError{Index: index, PlayerID: id, Field: f.name, Err: ErrNonFiniteValue}
		}
		if f.v < 0 {
			return &RecordError{Index: index, PlayerID: id, Field: f.name, Err: ErrNegativeValue}
		}
	}
	if math.IsNaN(t.PlusMinus) || math.IsInf(t.PlusMinus, 0) {
		return &RecordError{Index: index, PlayerID: id, Field: "PLUS_MINUS", Err: ErrNonFiniteValue}
	}
	return nil
}

type namedValue struct {
	name string
	v    float64
}

func countingFields(t model.PlayerSeasonTotals) []namedValue {
	return []namedValue{
		{"GP", t.GP},
		{"MIN", t.MIN},
		{"PTS", t.PTS},
		{"FGA", t.FGA},
		{"FGM", t.FGM},
		{"FG3A", t.FG3A},
		{"FG3M", t.FG3M},
		{"FTA", t.FTA},
		{"FTM", t.FTM},
		{"OREB", t.ORB},
		{"DREB", t.DRB},
		{"AST", t.AST},
		{"TOV", t.TOV},
		{"STL", t.STL},
		{"BLK", t.BLK},
		{"PF", t.PF},
	}
}
