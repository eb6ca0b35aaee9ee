package handler

import (
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"classichub-service/internal/store"
)

// StatsSource exposes the counters of every store.
type StatsSource interface {
	Stats() []store.Stats
}

// LocalState exposes the size of the local follow and cheer state.
type LocalState interface {
	Follows() []string
	CheerTotal() int
}

// DashboardHandler renders the operator dashboard.
type DashboardHandler struct {
	stats     StatsSource
	local     LocalState
	relays    []string
	startedAt time.Time
	logger    *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(stats StatsSource, local LocalState, relays []string, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		stats:     stats,
		local:     local,
		relays:    relays,
		startedAt: time.Now(),
		logger:    logger,
	}
}

type storeRow struct {
	Name      string
	Entries   string
	InFlight  int
	Hits      string
	Misses    string
	Joins     string
	Errors    string
	Cancelled string
	HitRatio  string
}

func rowOf(s store.Stats) storeRow {
	ratio := "-"
	if total := s.Hits + s.Misses; total > 0 {
		ratio = humanize.FtoaWithDigits(float64(s.Hits)*100/float64(total), 1) + "%"
	}

	return storeRow{
		Name:      s.Name,
		Entries:   humanize.Comma(int64(s.Entries)),
		InFlight:  s.InFlight,
		Hits:      humanize.Comma(int64(s.Hits)),
		Misses:    humanize.Comma(int64(s.Misses)),
		Joins:     humanize.Comma(int64(s.Joins)),
		Errors:    humanize.Comma(int64(s.Errors)),
		Cancelled: humanize.Comma(int64(s.Cancelled)),
		HitRatio:  ratio,
	}
}

// Render handles GET /dashboard
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	stats := h.stats.Stats()
	rows := make([]storeRow, len(stats))
	var entries int
	for i, s := range stats {
		rows[i] = rowOf(s)
		entries += s.Entries
	}

	return c.Render("pages/dashboard", fiber.Map{
		"Title":      "ClassicHub Dashboard",
		"Stores":     rows,
		"Entries":    humanize.Comma(int64(entries)),
		"Follows":    humanize.Comma(int64(len(h.local.Follows()))),
		"Cheers":     humanize.Comma(int64(h.local.CheerTotal())),
		"Relays":     h.relays,
		"StartedAgo": humanize.Time(h.startedAt),
		"Generated":  time.Now().UTC().Format(time.RFC3339),
	}, "layouts/base")
}
