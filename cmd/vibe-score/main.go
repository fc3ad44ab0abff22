// Command vibe-score scores season rosters offline and prints the boards.
//
// Each file argument is one season in the stats supplier's format; the
// season name is the file name without its extension unless -season is
// given for a single file. -synthetic generates a reproducible roster
// instead.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/bytedance/sonic"

	"github.com/okian/vibe/internal/adapters/repository"
	"github.com/okian/vibe/internal/adapters/statsfeed"
	"github.com/okian/vibe/internal/batch"
	"github.com/okian/vibe/internal/domain/scoring"
	"github.com/okian/vibe/internal/domain/types"
	"github.com/okian/vibe/internal/domain/vibe"
	"github.com/okian/vibe/internal/rostergen"
	"github.com/okian/vibe/pkg/logger"
)

const (
	defaultTop      = 25
	syntheticSeason = "synthetic"
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
)

var errNoInput = errors.New("no roster files given")

type options struct {
	season    string
	top       int
	position  string
	workers   int
	asJSON    bool
	synthetic int
	seed      int64
	verbose   bool
	files     []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("vibe-score", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.season, "season", "", "Season name for a single roster file")
	fs.IntVar(&o.top, "top", defaultTop, "Number of players to print per season")
	fs.StringVar(&o.position, "position", "", "Only print guard, wing or big")
	fs.IntVar(&o.workers, "workers", runtime.NumCPU(), "Seasons scored concurrently")
	fs.BoolVar(&o.asJSON, "json", false, "Print full runs as JSON")
	fs.IntVar(&o.synthetic, "synthetic", 0, "Score a generated roster of this many players")
	fs.Int64Var(&o.seed, "seed", 1, "Seed for -synthetic")
	fs.BoolVar(&o.verbose, "verbose", false, "Log scoring diagnostics")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(stderr, "Usage: vibe-score [options] season.json ...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	o.files = fs.Args()
	if len(o.files) == 0 && o.synthetic <= 0 {
		return o, errNoInput
	}
	if o.season != "" && len(o.files) > 1 {
		return o, errors.New("-season needs exactly one file")
	}
	if o.top < 1 {
		return o, fmt.Errorf("-top must be positive, got %d", o.top)
	}
	return o, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		_, _ = fmt.Fprintln(stderr, "vibe-score:", err)
		return exitUsage
	}
	pos, err := parsePosition(o.position)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "vibe-score:", err)
		return exitUsage
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.WithWriter(stderr), logger.WithLevel(level))

	seasons, err := load(o)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "vibe-score:", err)
		return exitFailure
	}

	scorer := scoring.NewPipelineScorer(scoring.WithLogger(log.Named("scoring")))
	results, err := batch.ScoreSeasons(ctx, scorer, seasons, batch.WithWorkers(o.workers), batch.WithLogger(log))
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "vibe-score:", err)
		return exitFailure
	}

	store := repository.NewTreapStore()
	code := exitOK
	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(stderr, "vibe-score: %s: %v\n", r.Season, r.Err)
			code = exitFailure
			continue
		}
		if err := store.Publish(ctx, r.Run); err != nil {
			_, _ = fmt.Fprintf(stderr, "vibe-score: %s: %v\n", r.Season, err)
			code = exitFailure
			continue
		}
		if err := printRun(ctx, stdout, store, r.Run, o, pos); err != nil {
			_, _ = fmt.Fprintf(stderr, "vibe-score: %s: %v\n", r.Season, err)
			code = exitFailure
		}
	}
	return code
}

// load reads every roster named on the command line.
func load(o options) ([]batch.Season, error) {
	var out []batch.Season
	if o.synthetic > 0 {
		out = append(out, batch.Season{Season: syntheticSeason, Roster: rostergen.Generate(o.synthetic, o.seed)})
	}
	for _, path := range o.files {
		roster, err := statsfeed.DecodeFile(path)
		if err != nil {
			return nil, err
		}
		season := o.season
		if season == "" {
			season = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		out = append(out, batch.Season{Season: season, Roster: roster})
	}
	return out, nil
}

func printRun(ctx context.Context, w io.Writer, store *repository.TreapStore, run *vibe.Run, o options, pos vibe.Position) error {
	if o.asJSON {
		enc := sonic.ConfigStd.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}
	if run.Scored == 0 {
		_, err := fmt.Fprintf(w, "%s: no scored players (%d unscored, %d rejected)\n\n", run.Season, run.Unscored, len(run.Rejected))
		return err
	}
	entries, err := store.TopN(ctx, run.Season, o.top, pos)
	if err != nil {
		return err
	}
	return writeTable(w, run, entries)
}

func writeTable(w io.Writer, run *vibe.Run, entries []types.Entry) error {
	_, _ = fmt.Fprintf(w, "%s: %d scored, %d unscored, %d rejected\n", run.Season, run.Scored, run.Unscored, len(run.Rejected))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tPLAYER\tTEAM\tPOS\tVIBE\tTIER")
	for _, e := range entries {
		name := e.PlayerName
		if name == "" {
			name = e.PlayerID
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%s\n", e.Rank, name, e.Team, e.Position, e.Score, e.Tier)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	_, err := fmt.Fprintln(w)
	return err
}

func parsePosition(raw string) (vibe.Position, error) {
	if raw == "" {
		return "", nil
	}
	return vibe.ParsePosition(raw)
}
