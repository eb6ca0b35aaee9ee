package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"classichub-service/internal/app/bootstrap"
	"classichub-service/internal/app/service"
	"classichub-service/internal/domain"
	"classichub-service/internal/infra/postgres/migrations"
	"classichub-service/internal/relay"
)

type cli struct {
	app    *bootstrap.App
	out    *printer
	logger *zap.Logger
}

func (c *cli) performances(ctx context.Context, cmd *PerformancesCmd) error {
	b := c.app.Performances.NewBrowser()
	defer b.Close()

	if cmd.Genre != "" {
		b.SetGenre(cmd.Genre)
	}
	if cmd.Status != "" {
		status := domain.PerformanceStatus(cmd.Status)
		if !status.Valid() {
			return fmt.Errorf("unknown status %q", cmd.Status)
		}
		b.SetStatus(status)
	}
	if cmd.From != "" || cmd.To != "" {
		loc := c.app.Config.App.Location()
		from, err := parseDate(cmd.From, loc)
		if err != nil {
			return err
		}
		to, err := parseDate(cmd.To, loc)
		if err != nil {
			return err
		}
		b.SetDateRange(from, to)
	}
	b.SetPageSize(cmd.PageSize)
	b.SetPage(cmd.Page)
	b.SetSearchText(cmd.Query)
	b.SetRegion(cmd.Region)
	if cmd.Sort != "" {
		order := domain.SortOrderAsc
		if cmd.Desc {
			order = domain.SortOrderDesc
		}
		b.SetSort(domain.SortField(cmd.Sort), order)
	}

	current := b.Current
	if cmd.Refresh {
		current = b.Refresh
	}
	result, err := current(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Data))
	for _, p := range result.Data {
		rows = append(rows, []string{p.ID, truncate(p.Title, 40), truncate(p.Venue, 24), p.Period, string(p.Status)})
	}
	if err := c.out.table(envelopeOf(result), []string{"ID", "TITLE", "VENUE", "PERIOD", "STATUS"}, rows); err != nil {
		return err
	}

	q := b.Query()
	c.out.footer(string(result.State), result.FetchedAt,
		joinWarning(result.Warning, fmt.Sprintf("page %d, %d per page", q.Page, q.PageSize)), time.Now())

	return nil
}

func (c *cli) artists(ctx context.Context, cmd *ArtistsCmd) error {
	category := domain.ArtistCategory(cmd.Category)
	if !category.Valid() {
		return fmt.Errorf("%w: %s", service.ErrInvalidCategory, cmd.Category)
	}

	result, err := c.app.Artists.List(ctx, category)
	if err != nil {
		return err
	}

	return c.printArtists(result)
}

func (c *cli) weekly(ctx context.Context) error {
	result, err := c.app.Artists.Weekly(ctx)
	if err != nil {
		return err
	}

	return c.printArtists(result)
}

func (c *cli) printArtists(result service.Result[[]domain.Artist]) error {
	rows := make([][]string, 0, len(result.Data))
	for _, a := range result.Data {
		rows = append(rows, []string{
			a.ID,
			a.Name.Localized,
			a.Name.English,
			a.Role.English,
			humanize.Comma(int64(a.LikeCount)),
			strconv.Itoa(a.PerformanceCount),
		})
	}
	if err := c.out.table(envelopeOf(result), []string{"ID", "NAME", "ENGLISH", "ROLE", "LIKES", "PERFORMANCES"}, rows); err != nil {
		return err
	}
	c.out.footer(string(result.State), result.FetchedAt, result.Warning, time.Now())

	return nil
}

func (c *cli) composers(ctx context.Context) error {
	result, err := c.app.Artists.PopularComposers(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Data))
	for _, comp := range result.Data {
		rows = append(rows, []string{comp.ID, comp.Name, comp.CompleteName, comp.Epoch})
	}
	if err := c.out.table(envelopeOf(result), []string{"ID", "NAME", "COMPLETE NAME", "EPOCH"}, rows); err != nil {
		return err
	}
	c.out.footer(string(result.State), result.FetchedAt, result.Warning, time.Now())

	return nil
}

func (c *cli) works(ctx context.Context, cmd *WorksCmd) error {
	result, err := c.app.Artists.Works(ctx, cmd.ComposerID)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Data))
	for _, w := range result.Data {
		rows = append(rows, []string{w.ID, truncate(w.Title, 50), w.Genre, flag(w.Popular), flag(w.Recommended)})
	}
	if err := c.out.table(envelopeOf(result), []string{"ID", "TITLE", "GENRE", "POPULAR", "RECOMMENDED"}, rows); err != nil {
		return err
	}
	c.out.footer(string(result.State), result.FetchedAt, result.Warning, time.Now())

	return nil
}

func (c *cli) news(ctx context.Context, cmd *NewsCmd) error {
	q := domain.NewsQuery{Query: cmd.Query, PageSize: cmd.Limit}
	if cmd.Sim {
		q.SortBy = "sim"
	}

	result, err := c.app.News.Search(ctx, q, cmd.Source)
	if err != nil {
		return err
	}

	now := time.Now()
	rows := make([][]string, 0, len(result.Data))
	for _, a := range result.Data {
		published := "-"
		if !a.PublishedAt.IsZero() {
			published = humanize.RelTime(a.PublishedAt, now, "ago", "from now")
		}
		rows = append(rows, []string{a.Source, truncate(a.Title, 60), published, a.Link})
	}
	if err := c.out.table(envelopeOf(result), []string{"SOURCE", "TITLE", "PUBLISHED", "LINK"}, rows); err != nil {
		return err
	}
	c.out.footer(string(result.State), result.FetchedAt, result.Warning, now)

	return nil
}

func (c *cli) videos(ctx context.Context, cmd *VideosCmd) error {
	result, err := c.app.Media.Search(ctx, cmd.Query, cmd.Limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(result.Data))
	for _, v := range result.Data {
		rows = append(rows, []string{v.ID, truncate(v.Title, 50), truncate(v.Channel, 24), date(v.PublishedAt)})
	}
	if err := c.out.table(envelopeOf(result), []string{"ID", "TITLE", "CHANNEL", "PUBLISHED"}, rows); err != nil {
		return err
	}
	c.out.footer(string(result.State), result.FetchedAt, result.Warning, time.Now())

	return nil
}

func (c *cli) relay(ctx context.Context, cmd *RelayCmd) error {
	r := c.app.Relay
	if r == nil {
		cfg := c.app.Config
		r = relay.New(relay.Targets(cfg.Provider, cfg.Credentials), relay.Options{
			Timeout:   cfg.Relay.Timeout,
			MaxBytes:  cfg.Relay.MaxBytes,
			SafeURL:   cfg.Relay.SafeURL,
			UserAgent: "hubctl/1.0",
			Logger:    c.logger,
		})
	}

	query, err := parseParams(cmd.Params)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := r.Forward(ctx, cmd.Provider, cmd.Path, query)
	if err != nil {
		return fmt.Errorf("relay answered %d: %w", relay.StatusFor(err), err)
	}
	elapsed := time.Since(start)

	if cmd.Body {
		_, err := os.Stdout.Write(resp.Body)

		return err
	}

	summary := map[string]any{
		"provider":     cmd.Provider,
		"status":       resp.Status,
		"content_type": resp.ContentType,
		"bytes":        len(resp.Body),
		"elapsed_ms":   elapsed.Milliseconds(),
	}

	return c.out.table(summary, []string{"PROVIDER", "STATUS", "CONTENT TYPE", "SIZE", "ELAPSED"}, [][]string{{
		cmd.Provider,
		strconv.Itoa(resp.Status),
		resp.ContentType,
		humanize.Bytes(uint64(len(resp.Body))),
		elapsed.Round(time.Millisecond).String(),
	}})
}

func (c *cli) migrate(cmd *MigrateCmd) error {
	if c.app.DB == nil {
		return errors.New("database is disabled in the configuration")
	}

	switch cmd.Direction {
	case "", "up":
		if err := migrations.Run(c.app.DB); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	case "down":
		if err := migrations.Rollback(c.app.DB); err != nil {
			return fmt.Errorf("rolling back: %w", err)
		}
	default:
		return fmt.Errorf("unknown direction %q, want up or down", cmd.Direction)
	}

	c.logger.Info("migration finished", zap.String("direction", cmd.Direction))
	fmt.Fprintln(c.out.w, "migrate: ok")

	return nil
}

func (c *cli) stats(ctx context.Context, cmd *StatsCmd) error {
	if cmd.Warm {
		for name, warm := range map[string]func(context.Context) error{
			"performances": c.app.Performances.Warm,
			"artists":      c.app.Artists.Warm,
			"news":         c.app.News.Warm,
		} {
			if err := warm(ctx); err != nil {
				c.logger.Warn("warming failed", zap.String("target", name), zap.Error(err))
			}
		}
	}

	stats := c.app.Stores.Stats()
	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []string{
			s.Name,
			humanize.Comma(int64(s.Entries)),
			strconv.Itoa(s.InFlight),
			humanize.Comma(int64(s.Hits)),
			humanize.Comma(int64(s.Misses)),
			humanize.Comma(int64(s.Joins)),
			humanize.Comma(int64(s.Errors)),
		})
	}

	return c.out.table(stats, []string{"STORE", "ENTRIES", "IN FLIGHT", "HITS", "MISSES", "JOINS", "ERRORS"}, rows)
}

func (c *cli) flush(ctx context.Context) error {
	if c.app.Cache == nil {
		return errors.New("snapshot cache is disabled, set redis.enabled and cache.enabled")
	}
	if err := c.app.Cache.Clear(ctx); err != nil {
		return fmt.Errorf("clearing snapshot cache: %w", err)
	}
	fmt.Fprintf(c.out.w, "flushed %s:*\n", c.app.Config.Cache.KeyPrefix)

	return nil
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(domain.QueryDateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be YYYYMMDD", s)
	}

	return t, nil
}

// parseParams turns key=value pairs into a query.
func parseParams(params []string) (url.Values, error) {
	query := url.Values{}
	for _, kv := range params {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("parameter %q must be key=value", kv)
		}
		query.Add(key, value)
	}

	return query, nil
}

func joinWarning(warning, extra string) string {
	if warning == "" {
		return extra
	}

	return warning + "; " + extra
}

func flag(b bool) string {
	if b {
		return "yes"
	}

	return ""
}
