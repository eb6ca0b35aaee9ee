// Command hubctl is the operator CLI. It drives the same services as the
// API server from a terminal, which is useful for checking upstreams and
// credentials without starting the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexflint/go-arg"
	"go.uber.org/zap"

	"classichub-service/internal/app/bootstrap"
	"classichub-service/internal/config"
	"classichub-service/internal/logger"
)

// PerformancesCmd lists one page of the performance catalog.
type PerformancesCmd struct {
	Genre    string `arg:"--genre" help:"catalog genre code (CCCA, CCCC, GGGA)"`
	Status   string `arg:"--status" help:"upcoming, running or completed"`
	From     string `arg:"--from" help:"window start, YYYYMMDD"`
	To       string `arg:"--to" help:"window end, YYYYMMDD"`
	Page     int    `arg:"--page" default:"1"`
	PageSize int    `arg:"--page-size" default:"20"`
	Query    string `arg:"-q,--query" help:"filter by title, venue or cast"`
	Region   string `arg:"--region" help:"filter by region"`
	Sort     string `arg:"--sort" help:"start_date, end_date or title"`
	Desc     bool   `arg:"--desc" help:"sort descending"`
	Refresh  bool   `arg:"--refresh" help:"drop the cached page and fetch again"`
}

// ArtistsCmd lists the artists of one category.
type ArtistsCmd struct {
	Category string `arg:"positional,required" help:"conductor, performer or composer"`
}

// WeeklyCmd shows this week's featured artists.
type WeeklyCmd struct{}

// ComposersCmd lists the popular composers.
type ComposersCmd struct{}

// WorksCmd lists the works of one composer.
type WorksCmd struct {
	ComposerID string `arg:"positional,required"`
}

// NewsCmd searches the news sources.
type NewsCmd struct {
	Query  string `arg:"positional"`
	Source string `arg:"--source" help:"limit to one source"`
	Sim    bool   `arg:"--sim" help:"order by similarity instead of date"`
	Limit  int    `arg:"-n,--limit" default:"10"`
}

// VideosCmd searches videos.
type VideosCmd struct {
	Query string `arg:"positional,required"`
	Limit int    `arg:"-n,--limit" default:"10"`
}

// RelayCmd forwards one request through the proxy relay.
type RelayCmd struct {
	Provider string   `arg:"positional,required"`
	Path     string   `arg:"positional"`
	Params   []string `arg:"-p,--param,separate" help:"query parameter as key=value"`
	Body     bool     `arg:"--body" help:"print the response body"`
}

// MigrateCmd applies or reverts schema migrations.
type MigrateCmd struct {
	Direction string `arg:"positional" help:"up (default) or down"`
}

// StatsCmd warms the stores and prints their counters.
type StatsCmd struct {
	Warm bool `arg:"--warm" help:"load the default views first"`
}

// FlushCmd empties the shared snapshot cache.
type FlushCmd struct{}

// Args are the command line arguments.
type Args struct {
	Config  string        `arg:"-c,--config,env:APP_CONFIG" help:"path to config.yaml"`
	JSON    bool          `arg:"--json" help:"print JSON instead of a table"`
	Timeout time.Duration `arg:"--timeout" default:"30s"`
	Verbose bool          `arg:"-v,--verbose" help:"log at debug level to stderr"`

	Performances *PerformancesCmd `arg:"subcommand:performances"`
	Artists      *ArtistsCmd      `arg:"subcommand:artists"`
	Weekly       *WeeklyCmd       `arg:"subcommand:weekly"`
	Composers    *ComposersCmd    `arg:"subcommand:composers"`
	Works        *WorksCmd        `arg:"subcommand:works"`
	News         *NewsCmd         `arg:"subcommand:news"`
	Videos       *VideosCmd       `arg:"subcommand:videos"`
	Relay        *RelayCmd        `arg:"subcommand:relay"`
	Migrate      *MigrateCmd      `arg:"subcommand:migrate"`
	Stats        *StatsCmd        `arg:"subcommand:stats"`
	Flush        *FlushCmd        `arg:"subcommand:flush"`
}

// Description is shown in --help.
func (Args) Description() string {
	return "hubctl queries the classichub providers and stores from the command line\n"
}

func main() {
	var args Args
	p := arg.MustParse(&args)
	if p.Subcommand() == nil {
		p.Fail("missing command")
	}

	if err := run(&args); err != nil {
		fmt.Fprintf(os.Stderr, "hubctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args *Args) error {
	cfg, err := config.Load(args.Config)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr so stdout stays machine readable.
	cfg.Logger.Output = "stderr"
	cfg.Logger.Format = "console"
	cfg.Logger.Level = "warn"
	if args.Verbose {
		cfg.Logger.Level = "debug"
	}
	cfg.Warmer.Enabled = false

	log, err := logger.New("hubctl", cfg.Logger, cfg.Sentry)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, args.Timeout)
	defer cancel()

	app, err := bootstrap.Build(ctx, cfg, log.Logger, bootstrap.Options{SkipMigrations: true})
	if err != nil {
		return err
	}
	defer app.Close()

	c := &cli{app: app, out: newPrinter(os.Stdout, args.JSON), logger: log.Logger}

	switch {
	case args.Performances != nil:
		return c.performances(ctx, args.Performances)
	case args.Artists != nil:
		return c.artists(ctx, args.Artists)
	case args.Weekly != nil:
		return c.weekly(ctx)
	case args.Composers != nil:
		return c.composers(ctx)
	case args.Works != nil:
		return c.works(ctx, args.Works)
	case args.News != nil:
		return c.news(ctx, args.News)
	case args.Videos != nil:
		return c.videos(ctx, args.Videos)
	case args.Relay != nil:
		return c.relay(ctx, args.Relay)
	case args.Migrate != nil:
		return c.migrate(args.Migrate)
	case args.Stats != nil:
		return c.stats(ctx, args.Stats)
	case args.Flush != nil:
		return c.flush(ctx)
	}

	log.Debug("nothing to do", zap.Any("args", args))

	return nil
}
