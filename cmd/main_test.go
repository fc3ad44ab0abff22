package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/vibe/internal/adapters/statsfeed"
	app "github.com/okian/vibe/internal/app"
	"github.com/okian/vibe/internal/config"
	"github.com/okian/vibe/pkg/logger"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		log := logger.Discard()

		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("VIBE_ADDR", ":8080")
			_ = os.Setenv("VIBE_QUEUE_SIZE", "1000")
			_ = os.Setenv("VIBE_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("VIBE_ADDR")
				_ = os.Unsetenv("VIBE_QUEUE_SIZE")
				_ = os.Unsetenv("VIBE_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When choosing the stats source", func() {
			cfg := config.New()

			convey.Convey("Then nothing is configured by default", func() {
				convey.So(newSource(cfg, log), convey.ShouldBeNil)
			})

			convey.Convey("Then feed_dir selects the file source", func() {
				cfg.FeedDir = t.TempDir()
				_, ok := newSource(cfg, log).(*statsfeed.FileSource)
				convey.So(ok, convey.ShouldBeTrue)
			})

			convey.Convey("Then feed_url wins over feed_dir", func() {
				cfg.FeedDir = t.TempDir()
				cfg.FeedURL = "https://stats.example.com/leaguedashplayerstats"
				_, ok := newSource(cfg, log).(*statsfeed.HTTPSource)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When wiring the HTTP routes", func() {
			cfg := config.New()
			svc := app.New(serviceOptions(cfg, log)...)
			mux := newMux(context.Background(), cfg, svc)

			convey.Convey("Then every surface is reachable", func() {
				for _, path := range []string{"/healthz", "/metrics", "/stats", "/seasons", "/api-docs", "/openapi.yaml", "/"} {
					rec := httptest.NewRecorder()
					mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
					convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
				}
			})

			convey.Convey("Then an empty service has no default season", func() {
				rec := httptest.NewRecorder()
				mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestPreloadFromFeedDir(t *testing.T) {
	convey.Convey("Given a feed directory with one season", t, func() {
		dir := t.TempDir()
		payload := `{"resultSets":[{"name":"LeagueDashPlayerStats",
			"headers":["PLAYER_ID","GP","MIN","PTS","FGA","FGM","FTA","FTM","OREB","DREB","AST","TOV","STL","BLK","PF","PLUS_MINUS"],
			"rowSet":[
				[1,70,2400,1500,1100,520,300,240,40,300,500,180,90,20,140,250],
				[2,72,2200,1300,1000,470,250,200,150,550,150,120,60,110,190,120],
				[3,65,1900,1000,850,400,200,150,60,280,230,110,70,30,150,-40],
				[4,60,1200,450,420,190,90,60,30,150,80,60,30,15,120,-90]
			]}]}`
		convey.So(os.WriteFile(filepath.Join(dir, "2023-24.json"), []byte(payload), 0o600), convey.ShouldBeNil)

		cfg := config.New()
		cfg.FeedDir = dir
		cfg.PreloadSeasons = []string{"2023-24"}
		cfg.WorkerCount = 1

		convey.Convey("When the service starts", func() {
			svc := app.New(serviceOptions(cfg, logger.Discard())...)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err := svc.Start(ctx)
			defer svc.Stop()

			convey.Convey("Then the season is published before serving", func() {
				convey.So(err, convey.ShouldBeNil)
				seasons := svc.Seasons(ctx)
				convey.So(len(seasons), convey.ShouldEqual, 1)
				convey.So(seasons[0].Scored, convey.ShouldEqual, 4)

				updateServiceMetrics(svc)
				updateSystemMetrics()
			})
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metrics loops", t, func() {
		svc := app.New(app.WithLogger(logger.Discard()))

		convey.Convey("When their context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then both return", func() {
				done := make(chan struct{}, 2)
				go func() { startSystemMetricsUpdater(ctx); done <- struct{}{} }()
				go func() { startServiceMetricsUpdater(ctx, svc); done <- struct{}{} }()
				for i := 0; i < 2; i++ {
					select {
					case <-done:
					case <-time.After(2 * time.Second):
						t.Fatal("metrics updater did not stop")
					}
				}
			})
		})
	})
}
