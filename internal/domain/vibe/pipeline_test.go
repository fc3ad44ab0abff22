package vibe_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/vibe"
	. "github.com/smartystreets/goconvey/convey"
)

// benchTotals is a clearly weaker full-season line than starTotals.
func benchTotals(id string, gp float64) model.PlayerSeasonTotals {
	return model.PlayerSeasonTotals{
		PlayerID: model.PlayerID(id),
		GP:       gp, MIN: 2000, PTS: 1200,
		FGA: 1200, FGM: 500, FTA: 200, FTM: 150,
		ORB: 60, DRB: 300, AST: 300, TOV: 260,
		STL: 60, BLK: 10, PF: 200, PlusMinus: -100,
	}
}

// quarterTotals is starTotals at a quarter of the minutes with the same
// per-minute rates.
func quarterTotals() model.PlayerSeasonTotals {
	return model.PlayerSeasonTotals{
		PlayerID: "B", PlayerName: "Player B",
		GP: 40, MIN: 500, PTS: 500,
		FGA: 375, FGM: 200, FTA: 75, FTM: 62.5,
		ORB: 25, DRB: 100, AST: 125, TOV: 50,
		STL: 25, BLK: 5, PF: 37.5, PlusMinus: 50,
	}
}

func exampleRoster() []model.PlayerSeasonTotals {
	return []model.PlayerSeasonTotals{
		starTotals(),
		quarterTotals(),
		benchTotals("g1", 70),
		benchTotals("g2", 70),
		benchTotals("w1", 80),
		benchTotals("w2", 80),
	}
}

func TestPipelineRun(t *testing.T) {
	p := vibe.NewPipeline(vibe.DefaultLeague())

	Convey("Given a star and the same rates over a quarter of the minutes", t, func() {
		run := p.Run("2023-24", exampleRoster())
		a, b := run.Results["A"], run.Results["B"]

		Convey("Then both are scored", func() {
			So(run.Scored, ShouldEqual, 6)
			So(run.Unscored, ShouldEqual, 0)
			So(run.Rejected, ShouldBeEmpty)
			So(a.Position, ShouldEqual, vibe.Guard)
			So(b.Position, ShouldEqual, vibe.Wing)
		})

		Convey("Then their per-100 rates match", func() {
			So(b.Profile.PTS100, ShouldAlmostEqual, a.Profile.PTS100, 1e-9)
			So(b.Profile.AST100, ShouldAlmostEqual, a.Profile.AST100, 1e-9)
			So(b.Profile.TS, ShouldAlmostEqual, a.Profile.TS, 1e-12)
			So(b.OVIBE, ShouldAlmostEqual, a.OVIBE, 1e-9)
		})

		Convey("Then B sits closer to 100 because of shrinkage", func() {
			So(b.ShrinkFactor, ShouldBeLessThan, a.ShrinkFactor)
			So(math.Abs(b.Final-100), ShouldBeLessThan, math.Abs(a.Final-100))
			So(a.Final, ShouldBeGreaterThan, b.Final)
		})

		Convey("Then the composites follow the fixed weights", func() {
			z := a.Z
			ovibe := 1.8*z[vibe.MetricTS] + 1.2*z[vibe.MetricPTS100] + 1.3*z[vibe.MetricAST100] +
				0.8*z[vibe.MetricORB100] - 1.4*z[vibe.MetricTOV100]
			dvibe := 1.3*z[vibe.MetricSTL100] + 1.1*z[vibe.MetricBLK100] + 0.5*z[vibe.MetricDRB100] - 1.0*z[vibe.MetricPF100]
			So(a.OVIBE, ShouldAlmostEqual, ovibe, 1e-12)
			So(a.DVIBE, ShouldAlmostEqual, dvibe, 1e-12)
			So(a.Skill, ShouldAlmostEqual, 0.6*ovibe+0.4*dvibe, 1e-12)
			So(a.Impact, ShouldEqual, z[vibe.MetricPM100])
			So(a.Raw, ShouldAlmostEqual, 0.65*a.Skill+0.35*a.Impact, 1e-12)
			So(a.Shrunk, ShouldAlmostEqual, a.Raw*2000/2600, 1e-12)
		})

		Convey("Then ranking orders by final score", func() {
			ranked := run.Ranked()
			So(len(ranked), ShouldEqual, 6)
			So(ranked[0].PlayerID, ShouldEqual, "A")
			for i := 1; i < len(ranked); i++ {
				So(ranked[i-1].Final, ShouldBeGreaterThanOrEqualTo, ranked[i].Final)
			}
		})
	})

	Convey("Given the same roster twice", t, func() {
		roster := exampleRoster()
		first := p.Run("2023-24", roster)
		second := p.Run("2023-24", roster)

		Convey("Then the results are bit-identical", func() {
			So(second, ShouldResemble, first)
		})

		Convey("Then permuting the input does not change any value", func() {
			permuted := []model.PlayerSeasonTotals{roster[4], roster[1], roster[5], roster[0], roster[3], roster[2]}
			third := p.Run("2023-24", permuted)
			So(third.Results, ShouldResemble, first.Results)
			So(third.Cohorts, ShouldResemble, first.Cohorts)
			So(third.LeagueMoments, ShouldResemble, first.LeagueMoments)
		})
	})

	Convey("Given a roster with bad and unscorable records", t, func() {
		bad := starTotals()
		bad.PlayerID = ""
		neg := benchTotals("neg", 80)
		neg.TOV = -3
		dnp := benchTotals("dnp", 0)
		dnp.MIN = 0
		noShots := benchTotals("noshots", 10)
		noShots.FGA, noShots.FTA, noShots.FGM, noShots.FTM = 0, 0, 0, 0

		roster := append(exampleRoster(), bad, neg, dnp, noShots, starTotals())
		run := p.Run("2023-24", roster)

		Convey("Then invalid records are rejected without aborting the batch", func() {
			So(len(run.Rejected), ShouldEqual, 3)
			So(errors.Is(run.Rejected[0], vibe.ErrMissingIdentity), ShouldBeTrue)
			So(errors.Is(run.Rejected[1], vibe.ErrNegativeValue), ShouldBeTrue)
			So(errors.Is(run.Rejected[2], vibe.ErrDuplicatePlayer), ShouldBeTrue)
			So(run.Scored, ShouldEqual, 6)
		})

		Convey("Then insufficient samples are kept as unscored", func() {
			So(run.Unscored, ShouldEqual, 2)
			So(run.Results["dnp"].Scored, ShouldBeFalse)
			So(run.Results["dnp"].Reason, ShouldEqual, vibe.ReasonInsufficientMinutes)
			So(run.Results["dnp"].Tier, ShouldEqual, vibe.TierUnscored)
			So(run.Results["dnp"].PositionDefaulted, ShouldBeTrue)
			So(run.Results["noshots"].Reason, ShouldEqual, vibe.ReasonInsufficientShooting)
		})

		Convey("Then unscored players do not pollute the cohorts", func() {
			clean := p.Run("2023-24", exampleRoster())
			So(run.Cohorts, ShouldResemble, clean.Cohorts)
			So(run.Results["A"].Final, ShouldEqual, clean.Results["A"].Final)
		})

		Convey("Then the run encodes to JSON", func() {
			b, err := json.Marshal(run)
			So(err, ShouldBeNil)
			So(string(b), ShouldContainSubstring, `"reason":"missing_identity"`)
		})
	})

	Convey("Given a single scorable player", t, func() {
		run := p.Run("solo", []model.PlayerSeasonTotals{starTotals()})

		Convey("Then the league is degenerate and the score is exactly 100", func() {
			So(run.Results["A"].Final, ShouldEqual, 100)
			So(run.LeagueMoments.Degenerate, ShouldBeTrue)
			var kinds []vibe.DiagnosticKind
			for _, d := range run.Diagnostics {
				kinds = append(kinds, d.Kind)
			}
			So(kinds, ShouldContain, vibe.DiagDegenerateLeague)
			So(kinds, ShouldContain, vibe.DiagDegenerateCohort)
		})
	})

	Convey("Given identical players", t, func() {
		x, y := benchTotals("x", 80), benchTotals("y", 80)
		run := p.Run("twins", []model.PlayerSeasonTotals{x, y})

		Convey("Then every final score is exactly 100", func() {
			So(run.Results["x"].Final, ShouldEqual, 100)
			So(run.Results["y"].Final, ShouldEqual, 100)
			for _, z := range run.Results["x"].Z {
				So(z, ShouldEqual, 0)
			}
		})
	})
}
