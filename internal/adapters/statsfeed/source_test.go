package statsfeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFileSource(t *testing.T) {
	Convey("Given a directory of saved seasons", t, func() {
		dir := t.TempDir()
		So(os.WriteFile(filepath.Join(dir, "2023-24.json"), []byte(leaguePayload), 0o600), ShouldBeNil)
		So(os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600), ShouldBeNil)
		src := NewFileSource(dir)

		Convey("When fetching a stored season", func() {
			rows, err := src.Fetch(context.Background(), "2023-24")

			Convey("Then the payload is decoded", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(src.Name(), ShouldEqual, "file")
			})
		})

		Convey("When fetching a missing season", func() {
			_, err := src.Fetch(context.Background(), "1999-00")
			So(errors.Is(err, ErrUnknownSeason), ShouldBeTrue)
		})

		Convey("When the season would escape the directory", func() {
			_, err := src.Fetch(context.Background(), "../etc/passwd")
			So(errors.Is(err, ErrInvalidSeason), ShouldBeTrue)
		})

		Convey("When listing seasons", func() {
			seasons, err := src.Seasons()
			So(err, ShouldBeNil)
			So(seasons, ShouldResemble, []string{"2023-24"})
		})
	})
}

func TestHTTPSource(t *testing.T) {
	Convey("Given a provider endpoint", t, func() {
		var hits atomic.Int32
		var lastQuery atomic.Value
		var status atomic.Int32
		status.Store(http.StatusOK)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := hits.Add(1)
			lastQuery.Store(r.URL.Query())
			switch {
			case status.Load() == http.StatusServiceUnavailable && n == 1:
				w.WriteHeader(http.StatusServiceUnavailable)
			case status.Load() == http.StatusNotFound:
				http.NotFound(w, r)
			default:
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(leaguePayload))
			}
		}))
		defer srv.Close()

		Convey("When the provider answers", func() {
			src, err := NewHTTPSource(srv.URL+"/stats/leaguedashplayerstats", WithRateLimit(0), WithTimeout(time.Second))
			So(err, ShouldBeNil)
			rows, err := src.Fetch(context.Background(), "2023-24")

			Convey("Then the season is requested and decoded", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				q := lastQuery.Load().(url.Values)
				So(q.Get("Season"), ShouldEqual, "2023-24")
				So(q.Get("SeasonType"), ShouldEqual, "Regular Season")
			})
		})

		Convey("When the provider rejects the request", func() {
			status.Store(http.StatusNotFound)
			src, _ := NewHTTPSource(srv.URL, WithRateLimit(0), WithMaxRetries(3))
			_, err := src.Fetch(context.Background(), "2023-24")

			Convey("Then ErrUpstream is returned without retrying", func() {
				So(errors.Is(err, ErrUpstream), ShouldBeTrue)
				So(hits.Load(), ShouldEqual, 1)
			})
		})

		Convey("When the provider fails transiently", func() {
			status.Store(http.StatusServiceUnavailable)
			src, _ := NewHTTPSource(srv.URL, WithRateLimit(0), WithMaxRetries(1), WithSeasonType("Playoffs"))
			rows, err := src.Fetch(context.Background(), "2023-24")

			Convey("Then the request is retried", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(hits.Load(), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			src, _ := NewHTTPSource(srv.URL, WithRateLimit(0))
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := src.Fetch(ctx, "2023-24")
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})
	})

	Convey("Given a bad feed url", t, func() {
		_, err := NewHTTPSource("ftp://example.com")
		So(err, ShouldNotBeNil)
	})
}
