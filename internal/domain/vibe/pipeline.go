package vibe

import (
	"sort"
	"strings"
	"time"

	"github.com/okian/vibe/internal/domain/model"
)

// PlayerResult is one player's output of a run. Unscored players keep their
// identity, position and whatever profile could be derived, with Final 0.
type PlayerResult struct {
	PlayerID          string   `json:"player_id"`
	PlayerName        string   `json:"player_name,omitempty"`
	Team              string   `json:"team,omitempty"`
	Position          Position `json:"position"`
	PositionDefaulted bool     `json:"position_defaulted,omitempty"`
	Games             float64  `json:"games"`
	Minutes           float64  `json:"minutes"`

	Scored bool   `json:"scored"`
	Reason string `json:"reason,omitempty"`

	Profile RateProfile        `json:"profile"`
	Z       map[Metric]float64 `json:"z,omitempty"`

	OVIBE        float64 `json:"ovibe"`
	DVIBE        float64 `json:"dvibe"`
	Skill        float64 `json:"skill"`
	Impact       float64 `json:"impact"`
	Raw          float64 `json:"raw"`
	ShrinkFactor float64 `json:"shrink_factor"`
	Shrunk       float64 `json:"shrunk"`
	Final        float64 `json:"final"`
	Tier         Tier    `json:"tier"`
}

// Run is the complete output of scoring one roster. Its values are only
// meaningful together: every z-score is relative to this roster alone.
type Run struct {
	Season        string                  `json:"season"`
	Results       map[string]PlayerResult `json:"results"`
	Cohorts       CohortStats             `json:"cohorts"`
	LeagueMoments Moments                 `json:"league_moments"`
	Rejected      []*RecordError          `json:"rejected,omitempty"`
	Diagnostics   []Diagnostic            `json:"diagnostics,omitempty"`
	Scored        int                     `json:"scored"`
	Unscored      int                     `json:"unscored"`

	// Submitted is when the roster behind this run was accepted. Zero for
	// runs that never went through the queue.
	Submitted time.Time `json:"submitted_at"`
}

// Ranked returns scored players by Final descending, ties by player id.
func (r *Run) Ranked() []PlayerResult {
	out := make([]PlayerResult, 0, r.Scored)
	for _, res := range r.Results {
		if res.Scored {
			out = append(out, res)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Final != out[j].Final {
			return out[i].Final > out[j].Final
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}

// Pipeline scores rosters with a fixed set of league constants.
// A Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	league League
}

// NewPipeline returns a pipeline bound to l.
func NewPipeline(l League) *Pipeline {
	if l.MinCohortSize < 2 {
		l.MinCohortSize = 2
	}
	return &Pipeline{league: l}
}

// League returns the constants the pipeline scores with.
func (p *Pipeline) League() League { return p.league }

// Run scores the whole roster as one closed cohort. Invalid records are
// rejected individually; only the first record of a duplicated id is kept.
func (p *Pipeline) Run(season string, roster []model.PlayerSeasonTotals) *Run {
	l := p.league
	run := &Run{
		Season:  season,
		Results: make(map[string]PlayerResult, len(roster)),
	}

	samples := make([]Sample, 0, len(roster))
	for i, t := range roster {
		if rerr := Validate(i, t); rerr != nil {
			run.Rejected = append(run.Rejected, rerr)
			continue
		}
		id := strings.TrimSpace(string(t.PlayerID))
		if _, dup := run.Results[id]; dup {
			run.Rejected = append(run.Rejected, &RecordError{Index: i, PlayerID: id, Field: "PLAYER_ID", Err: ErrDuplicatePlayer})
			continue
		}

		pos, defaulted := Classify(t, l)
		profile, err := Normalize(t, l)
		res := PlayerResult{
			PlayerID:          id,
			PlayerName:        t.PlayerName,
			Team:              t.Team,
			Position:          pos,
			PositionDefaulted: defaulted,
			Games:             t.GP,
			Minutes:           t.MIN,
			Profile:           profile,
		}
		if err != nil {
			res.Reason = Reason(err)
			res.Tier = TierUnscored
			run.Unscored++
		} else {
			res.Scored = true
			samples = append(samples, Sample{PlayerID: id, Position: pos, Profile: profile, Minutes: t.MIN})
		}
		run.Results[id] = res
	}

	cohorts, diags := ComputeCohorts(samples, l)
	run.Cohorts = cohorts
	run.Diagnostics = diags

	samples = sortSamples(samples)
	comps := make([]Components, len(samples))
	inputs := make([]ScaleInput, len(samples))
	for i, s := range samples {
		comps[i] = Compose(s.Profile, s.Position, cohorts, l)
		inputs[i] = ScaleInput{Raw: comps[i].Raw, Minutes: s.Minutes}
	}
	scaled, league := Scale(inputs, l)
	run.LeagueMoments = league
	if league.Degenerate && league.N > 0 {
		run.Diagnostics = append(run.Diagnostics, Diagnostic{Kind: DiagDegenerateLeague, Scope: string(ScopeLeague), N: league.N})
	}

	for i, s := range samples {
		res := run.Results[s.PlayerID]
		c := comps[i]
		res.Z = c.Z
		res.OVIBE = c.OVIBE
		res.DVIBE = c.DVIBE
		res.Skill = c.Skill
		res.Impact = c.Impact
		res.Raw = c.Raw
		res.ShrinkFactor = scaled[i].ShrinkFactor
		res.Shrunk = scaled[i].Shrunk
		res.Final = scaled[i].Final
		res.Tier = TierFor(res.Final)
		run.Results[s.PlayerID] = res
	}
	run.Scored = len(samples)
	return run
}
