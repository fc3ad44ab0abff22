package scoring_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/vibe/internal/domain/model"
	"github.com/okian/vibe/internal/domain/scoring"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/pkg/metrics"
	. "github.com/smartystreets/goconvey/convey"
)

func roster(n int) []model.PlayerSeasonTotals {
	out := make([]model.PlayerSeasonTotals, 0, n)
	for i := 0; i < n; i++ {
		f := float64(i + 1)
		out = append(out, model.PlayerSeasonTotals{
			PlayerID: model.PlayerID(fmt.Sprintf("p%02d", i)),
			GP:       60 + f, MIN: 900 + 90*f, PTS: 600 + 55*f,
			FGA: 500 + 40*f, FGM: 230 + 20*f, FTA: 120 + 7*f, FTM: 90 + 5*f,
			ORB: 40 + 9*float64(i%4), DRB: 200 + 17*float64(i%5), AST: 120 + 30*float64(i%3),
			TOV: 80 + 4*f, STL: 40 + 3*float64(i%4), BLK: 15 + 6*float64(i%3), PF: 120 + 2*f,
			PlusMinus: float64(i*13%41 - 20),
		})
	}
	return out
}

func TestPipelineScorer_Score(t *testing.T) {
	Convey("Given a new pipeline scorer", t, func() {
		scorer := scoring.NewPipelineScorer()

		Convey("When scoring a roster", func() {
			run, err := scorer.Score(context.Background(), scoring.Input{Season: "2023-24", JobID: "job-1", Roster: roster(12)})

			Convey("Then every player is scored on the VIBE scale", func() {
				So(err, ShouldBeNil)
				So(run.Season, ShouldEqual, "2023-24")
				So(run.Scored, ShouldEqual, 12)
				var sum float64
				for _, r := range run.Results {
					sum += r.Final
				}
				So(sum/12, ShouldAlmostEqual, 100, 1e-9)
			})
		})

		Convey("When the roster is empty", func() {
			_, err := scorer.Score(context.Background(), scoring.Input{Season: "2023-24"})

			Convey("Then it should fail with ErrEmptyRoster", func() {
				So(errors.Is(err, scoring.ErrEmptyRoster), ShouldBeTrue)
			})
		})

		Convey("When context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			run, err := scorer.Score(ctx, scoring.Input{Season: "2023-24", Roster: roster(5)})

			Convey("Then it should return context error and no result", func() {
				So(run, ShouldBeNil)
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})

		Convey("When scoring a roster with unscorable players", func() {
			r := roster(4)
			r[0].MIN = 0
			before, _ := metrics.Value("vibe_service_players_unscored_total", map[string]string{"reason": vibe.ReasonInsufficientMinutes})
			run, err := scorer.Score(context.Background(), scoring.Input{Season: "s", Roster: r})
			after, _ := metrics.Value("vibe_service_players_unscored_total", map[string]string{"reason": vibe.ReasonInsufficientMinutes})

			Convey("Then the unscored count is recorded", func() {
				So(err, ShouldBeNil)
				So(run.Unscored, ShouldEqual, 1)
				So(after-before, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a scorer with a stricter reference frame", t, func() {
		l := vibe.DefaultLeague().WithReferenceMinMinutes(1500)
		scorer := scoring.NewPipelineScorer(scoring.WithLeague(l))

		Convey("Then the league is carried into the pipeline", func() {
			So(scorer.League().ReferenceMinMinutes, ShouldEqual, 1500)
			run, err := scorer.Score(context.Background(), scoring.Input{Season: "s", Roster: roster(12)})
			So(err, ShouldBeNil)
			So(run.Cohorts.League[vibe.MetricPTS100].N, ShouldBeLessThan, 12)
		})
	})
}
