// Package vibe computes the VIBE player-evaluation score: per-100 rates,
// position cohorts, cohort-relative z-scores, weighted composites, minutes
// shrinkage and the final 100-centred league rescaling.
//
// Everything in this package is a pure function of its inputs. A scoring run
// is a closed cohort over exactly the roster it was given, so results from
// different rosters are not comparable.
package vibe

// OffenseWeights weighs the league-normalised offensive z-scores.
// The turnover weight is negative.
type OffenseWeights struct {
	TS  float64 `json:"ts"`
	PTS float64 `json:"pts100"`
	AST float64 `json:"ast100"`
	ORB float64 `json:"orb100"`
	TOV float64 `json:"tov100"`
}

// DefenseWeights weighs the position-normalised defensive z-scores.
// The personal-foul weight is negative.
type DefenseWeights struct {
	STL float64 `json:"stl100"`
	BLK float64 `json:"blk100"`
	DRB float64 `json:"drb100"`
	PF  float64 `json:"pf100"`
}

// League carries every constant the formula uses. It is passed explicitly
// into the pipeline so that scoring never reads hidden state.
type League struct {
	// PossessionDivisor converts minutes to possessions: MIN*100/divisor.
	PossessionDivisor float64 `json:"possession_divisor"`
	// FreeThrowFactor weighs FTA inside true shooting attempts.
	FreeThrowFactor float64 `json:"free_throw_factor"`

	// Position thresholds, evaluated Big first.
	BigReboundsPerGame  float64 `json:"big_rebounds_per_game"`
	GuardAssistsPerGame float64 `json:"guard_assists_per_game"`

	Offense OffenseWeights `json:"offense"`
	Defense DefenseWeights `json:"defense"`

	// Skill = SkillOffense*OVIBE + SkillDefense*DVIBE.
	SkillOffense float64 `json:"skill_offense"`
	SkillDefense float64 `json:"skill_defense"`
	// Raw = SkillWeight*Skill + ImpactWeight*Impact.
	SkillWeight  float64 `json:"skill_weight"`
	ImpactWeight float64 `json:"impact_weight"`

	// ShrinkMinutes is the k in MIN/(MIN+k).
	ShrinkMinutes float64 `json:"shrink_minutes"`
	Base          float64 `json:"base"`
	Scale         float64 `json:"scale"`

	// MinCohortSize is the smallest reference group that yields a usable
	// standard deviation. Smaller groups are degenerate and z-score to 0.
	MinCohortSize int `json:"min_cohort_size"`
	// ReferenceMinMinutes restricts the z-score reference frame to players
	// with at least this many minutes. Zero uses every scorable player.
	ReferenceMinMinutes float64 `json:"reference_min_minutes"`
}

// DefaultLeague returns the VIBE v2 constants.
func DefaultLeague() League {
	return League{
		PossessionDivisor:   240,
		FreeThrowFactor:     0.44,
		BigReboundsPerGame:  7,
		GuardAssistsPerGame: 4,
		Offense: OffenseWeights{
			TS:  1.8,
			PTS: 1.2,
			AST: 1.3,
			ORB: 0.8,
			TOV: -1.4,
		},
		Defense: DefenseWeights{
			STL: 1.3,
			BLK: 1.1,
			DRB: 0.5,
			PF:  -1.0,
		},
		SkillOffense:  0.6,
		SkillDefense:  0.4,
		SkillWeight:   0.65,
		ImpactWeight:  0.35,
		ShrinkMinutes: 600,
		Base:          100,
		Scale:         15,
		MinCohortSize: 2,
	}
}

// WithMinCohortSize returns a copy of l using n as the minimum reference
// group size. Values below 2 are raised to 2, since a single value has no spread.
func (l League) WithMinCohortSize(n int) League {
	if n < 2 {
		n = 2
	}
	l.MinCohortSize = n
	return l
}

// WithReferenceMinMinutes returns a copy of l whose reference frame only
// includes players with at least minutes played. Negative values disable it.
func (l League) WithReferenceMinMinutes(minutes float64) League {
	if minutes < 0 {
		minutes = 0
	}
	l.ReferenceMinMinutes = minutes
	return l
}
