package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bytedance/sonic"

	service "github.com/okian/vibe/internal/app"
	"github.com/okian/vibe/internal/adapters/statsfeed"
	"github.com/okian/vibe/internal/domain/types"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/internal/rostergen"
	. "github.com/smartystreets/goconvey/convey"
)

func TestServiceIntegration(t *testing.T) {
	Convey("Given a running service", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(16),
			service.WithDedupeSize(100),
		)
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		roster := rostergen.Generate(120, 11)

		Convey("When a roster is submitted end-to-end", func() {
			sub, err := svc.SubmitRoster(ctx, "2023-24", "", roster)
			So(err, ShouldBeNil)
			So(sub.Duplicate, ShouldBeFalse)
			job := waitJob(svc, sub.JobID)

			Convey("Then the job completes and the board is published", func() {
				So(job.State, ShouldEqual, types.JobDone)
				So(job.Players, ShouldEqual, 120)
				So(job.StartedAt, ShouldNotBeNil)
				So(job.FinishedAt, ShouldNotBeNil)

				top, err := svc.TopN(ctx, "2023-24", 10, "")
				So(err, ShouldBeNil)
				So(top, ShouldHaveLength, 10)
				So(top[0].Rank, ShouldEqual, 1)
				for i := 1; i < len(top); i++ {
					So(top[i].Score, ShouldBeLessThanOrEqualTo, top[i-1].Score)
				}

				entry, err := svc.Rank(ctx, "2023-24", top[3].PlayerID)
				So(err, ShouldBeNil)
				So(entry, ShouldResemble, top[3])

				res, err := svc.Player(ctx, "2023-24", top[0].PlayerID)
				So(err, ShouldBeNil)
				So(res.Final, ShouldEqual, top[0].Score)
				So(res.Tier, ShouldEqual, vibe.TierFor(res.Final))

				seasons := svc.Seasons(ctx)
				So(seasons, ShouldHaveLength, 1)
				So(seasons[0].Scored, ShouldEqual, 120)
			})

			Convey("And the same roster is submitted again", func() {
				again, err := svc.SubmitRoster(ctx, "2023-24", "", roster)

				Convey("Then it is acknowledged as a duplicate of the first job", func() {
					So(err, ShouldBeNil)
					So(again.Duplicate, ShouldBeTrue)
					So(again.JobID, ShouldEqual, sub.JobID)
					So(again.SubmissionID, ShouldEqual, sub.SubmissionID)
				})
			})

			Convey("And a permuted copy is submitted under a new id", func() {
				permuted := append(roster[60:len(roster):len(roster)], roster[:60]...)
				re, err := svc.SubmitRoster(ctx, "2023-24", "permuted", permuted)
				So(err, ShouldBeNil)
				So(waitJob(svc, re.JobID).State, ShouldEqual, types.JobDone)

				Convey("Then every score is unchanged", func() {
					run, err := svc.Run(ctx, "2023-24")
					So(err, ShouldBeNil)
					direct, err := svc.ScoreRoster(ctx, "2023-24", roster)
					So(err, ShouldBeNil)
					for id, r := range direct.Results {
						So(run.Results[id].Final, ShouldEqual, r.Final)
					}
				})
			})
		})

		Convey("When scoring synchronously", func() {
			run, err := svc.ScoreRoster(ctx, "2020-21", roster)

			Convey("Then nothing is published", func() {
				So(err, ShouldBeNil)
				So(run.Scored, ShouldEqual, 120)
				So(svc.Seasons(ctx), ShouldBeEmpty)
			})
		})
	})
}

func TestServiceWithSource(t *testing.T) {
	Convey("Given a stats directory with two seasons", t, func() {
		dir := t.TempDir()
		for i, season := range []string{"2022-23", "2023-24"} {
			body, err := sonic.Marshal(rostergen.Generate(60, int64(100+i)))
			So(err, ShouldBeNil)
			So(os.WriteFile(filepath.Join(dir, season+".json"), body, 0o600), ShouldBeNil)
		}
		ctx := context.Background()

		Convey("When the service preloads them", func() {
			svc := service.New(
				service.WithWorkerCount(2),
				service.WithSource(statsfeed.NewFileSource(dir)),
				service.WithPreloadSeasons("2022-23", "2023-24", "1999-00"),
			)
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then available seasons are published and the missing one is skipped", func() {
				So(err, ShouldBeNil)
				seasons := svc.Seasons(ctx)
				So(seasons, ShouldHaveLength, 2)
				So(svc.GetStats()["sourceEnabled"], ShouldEqual, true)
			})
		})

		Convey("When a season is refreshed", func() {
			svc := service.New(service.WithWorkerCount(1), service.WithSource(statsfeed.NewFileSource(dir)))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()

			sub, err := svc.Refresh(ctx, "2023-24")
			So(err, ShouldBeNil)
			job := waitJob(svc, sub.JobID)

			Convey("Then it is queued and published like a submission", func() {
				So(job.State, ShouldEqual, types.JobDone)
				So(job.Season, ShouldEqual, "2023-24")
				So(svc.Seasons(ctx), ShouldHaveLength, 1)
			})

			Convey("And refreshing unchanged data is a duplicate", func() {
				again, err := svc.Refresh(ctx, "2023-24")
				So(err, ShouldBeNil)
				So(again.Duplicate, ShouldBeTrue)
			})
		})

		Convey("When refreshing an unknown season", func() {
			svc := service.New(service.WithSource(statsfeed.NewFileSource(dir)))
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			_, err := svc.Refresh(ctx, "1999-00")
			So(err, ShouldNotBeNil)
		})
	})
}
