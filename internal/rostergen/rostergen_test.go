package rostergen_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/internal/rostergen"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerate(t *testing.T) {
	Convey("Given a seed", t, func() {
		a := rostergen.Generate(60, 42)
		b := rostergen.Generate(60, 42)

		Convey("Then the roster is reproducible", func() {
			So(a, ShouldResemble, b)
		})

		Convey("Then ids are unique and box scores are consistent", func() {
			seen := map[string]bool{}
			for i, p := range a {
				So(seen[string(p.PlayerID)], ShouldBeFalse)
				seen[string(p.PlayerID)] = true
				So(vibe.Validate(i, p), ShouldBeNil)
				So(p.FGM, ShouldBeLessThanOrEqualTo, p.FGA)
				So(p.FG3M, ShouldBeLessThanOrEqualTo, p.FG3A)
				So(p.FTM, ShouldBeLessThanOrEqualTo, p.FTA)
				So(p.MIN, ShouldBeGreaterThan, 0)
			}
		})

		Convey("Then every position is represented", func() {
			counts := map[vibe.Position]int{}
			for _, p := range a {
				pos, _ := vibe.Classify(p, vibe.DefaultLeague())
				counts[pos]++
			}
			So(len(counts), ShouldEqual, 3)
		})

		Convey("Then the whole roster scores", func() {
			run := vibe.NewPipeline(vibe.DefaultLeague()).Run("synthetic", a)
			So(run.Rejected, ShouldBeEmpty)
			So(run.Scored, ShouldEqual, 60)
		})
	})

	Convey("Given different seeds or namespaces", t, func() {
		base := rostergen.Generate(5, 1)
		other := rostergen.Generate(5, 2)
		spaced := rostergen.Generate(5, 1, rostergen.WithNamespace(uuid.NameSpaceOID))

		Convey("Then the ids differ", func() {
			So(base[0].PlayerID, ShouldNotEqual, other[0].PlayerID)
			So(base[0].PlayerID, ShouldNotEqual, spaced[0].PlayerID)
		})
	})

	Convey("Given a DNP share", t, func() {
		roster := rostergen.Generate(200, 9, rostergen.WithDNPShare(0.2))
		run := vibe.NewPipeline(vibe.DefaultLeague()).Run("synthetic", roster)

		Convey("Then some players are unscored for lack of minutes", func() {
			So(run.Unscored, ShouldBeGreaterThan, 0)
			So(run.Scored+run.Unscored, ShouldEqual, 200)
		})
	})
}
