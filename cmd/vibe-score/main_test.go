package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const feedPayload = `{"resultSets":[{"name":"LeagueDashPlayerStats",
	"headers":["PLAYER_ID","PLAYER_NAME","TEAM_ABBREVIATION","GP","MIN","PTS","FGA","FGM","FTA","FTM","OREB","DREB","AST","TOV","STL","BLK","PF","PLUS_MINUS"],
	"rowSet":[
		[1,"Point Guard","BOS",70,2400,1500,1100,520,300,240,40,300,500,180,90,20,140,250],
		[2,"Center","DEN",72,2200,1300,1000,470,250,200,150,550,150,120,60,110,190,120],
		[3,"Forward","MIA",65,1900,1000,850,400,200,150,60,280,230,110,70,30,150,-40],
		[4,"Bench","NYK",60,1200,450,420,190,90,60,30,150,80,60,30,15,120,-90],
		[5,"Rookie","NYK",3,0,0,0,0,0,0,0,0,0,0,0,0,0,0]
	]}]}`

func writeFeed(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(feedPayload), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	Convey("Given the vibe-score command", t, func() {
		ctx := context.Background()
		var stdout, stderr bytes.Buffer

		Convey("When scoring a roster file", func() {
			path := writeFeed(t, "2023-24.json")
			code := run(ctx, []string{"-top", "3", path}, &stdout, &stderr)

			Convey("Then the board is printed under the file's season", func() {
				So(code, ShouldEqual, exitOK)
				out := stdout.String()
				So(out, ShouldStartWith, "2023-24: 4 scored, 1 unscored, 0 rejected")
				So(out, ShouldContainSubstring, "RANK")
				So(strings.Count(out, "\n"), ShouldEqual, 6)
				So(out, ShouldNotContainSubstring, "Rookie")
			})
		})

		Convey("When filtering by position and naming the season", func() {
			path := writeFeed(t, "feed.json")
			code := run(ctx, []string{"-season", "2024-25", "-position", "big", path}, &stdout, &stderr)

			Convey("Then only bigs are listed", func() {
				So(code, ShouldEqual, exitOK)
				So(stdout.String(), ShouldStartWith, "2024-25:")
				So(stdout.String(), ShouldContainSubstring, "Center")
				So(stdout.String(), ShouldNotContainSubstring, "Point Guard")
			})
		})

		Convey("When asking for JSON", func() {
			path := writeFeed(t, "2023-24.json")
			code := run(ctx, []string{"-json", path}, &stdout, &stderr)

			Convey("Then the full run is emitted", func() {
				So(code, ShouldEqual, exitOK)
				var run map[string]any
				So(json.Unmarshal(stdout.Bytes(), &run), ShouldBeNil)
				So(run["season"], ShouldEqual, "2023-24")
				So(run["scored"], ShouldEqual, 4.0)
			})
		})

		Convey("When scoring a synthetic roster", func() {
			code := run(ctx, []string{"-synthetic", "90", "-seed", "7", "-top", "5"}, &stdout, &stderr)

			Convey("Then it is scored under the synthetic season", func() {
				So(code, ShouldEqual, exitOK)
				So(stdout.String(), ShouldStartWith, syntheticSeason+":")
			})
		})

		Convey("When the input is wrong", func() {
			Convey("Then usage errors exit with 2", func() {
				So(run(ctx, nil, &stdout, &stderr), ShouldEqual, exitUsage)
				So(run(ctx, []string{"-position", "center", "x.json"}, &stdout, &stderr), ShouldEqual, exitUsage)
				So(run(ctx, []string{"-top", "0", "x.json"}, &stdout, &stderr), ShouldEqual, exitUsage)
				So(run(ctx, []string{"-season", "s", "a.json", "b.json"}, &stdout, &stderr), ShouldEqual, exitUsage)
			})

			Convey("Then unreadable files exit with 1", func() {
				So(run(ctx, []string{filepath.Join(t.TempDir(), "missing.json")}, &stdout, &stderr), ShouldEqual, exitFailure)
				So(stderr.String(), ShouldContainSubstring, "vibe-score:")
			})
		})
	})
}
