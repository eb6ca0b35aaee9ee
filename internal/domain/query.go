package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Genre codes understood by the ticketing catalog.
const (
	GenreClassical = "CCCA"
	GenreKorean    = "CCCC"
	GenreMusical   = "GGGA"
)

// QueryDateLayout is the date format of the catalog's date window parameters.
const QueryDateLayout = "20060102"

// PerformanceQuery holds the upstream parameters of a listing call. Every
// field here changes the cache key; client-side filters live in PerformanceFilter.
type PerformanceQuery struct {
	From     time.Time
	To       time.Time
	Genre    string
	Status   PerformanceStatus // empty means any
	Page     int               // 1-indexed
	PageSize int
}

// Normalize applies bounds and defaults, in the spirit of bound correction
// rather than validation.
func (q *PerformanceQuery) Normalize(now time.Time) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	if q.Genre == "" {
		q.Genre = GenreClassical
	}
	if q.From.IsZero() {
		q.From = now
	}
	if q.To.IsZero() {
		q.To = q.From.AddDate(0, 3, 0)
	}
	if q.To.Before(q.From) {
		q.To = q.From
	}
	if q.Status != "" && !q.Status.Valid() {
		q.Status = ""
	}
}

// Key is the cache key for this query.
func (q PerformanceQuery) Key() string {
	return fmt.Sprintf("%s:%s-%s:%s:p%d:n%d",
		q.Genre,
		q.From.Format(QueryDateLayout),
		q.To.Format(QueryDateLayout),
		string(q.Status),
		q.Page,
		q.PageSize,
	)
}

// SortField selects the client-side ordering of a fetched page.
type SortField string

const (
	SortByStartDate SortField = "start_date"
	SortByTitle     SortField = "title"
	SortByEndDate   SortField = "end_date"
)

// SortOrder represents the sort direction.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// PerformanceFilter is applied on an already fetched page and never triggers a refetch.
type PerformanceFilter struct {
	Text      string // matched against title, venue and cast
	Region    string
	SortBy    SortField
	SortOrder SortOrder
}

// Match reports whether p passes the text and region filters.
func (f PerformanceFilter) Match(p *Performance) bool {
	if f.Region != "" && !strings.Contains(p.Region, f.Region) {
		return false
	}
	if f.Text == "" {
		return true
	}
	needle := strings.ToLower(strings.TrimSpace(f.Text))
	for _, hay := range []string{p.Title, p.Venue, p.Cast} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}

	return false
}

// DefaultNewsQuery is used when the caller gives no search terms.
const DefaultNewsQuery = "클래식 공연"

// Apply returns the matching records of perfs in the requested order. The
// input slice is left untouched.
func (f PerformanceFilter) Apply(perfs []*Performance) []*Performance {
	out := make([]*Performance, 0, len(perfs))
	for _, p := range perfs {
		if p != nil && f.Match(p) {
			out = append(out, p)
		}
	}

	var less func(a, b *Performance) bool
	switch f.SortBy {
	case SortByTitle:
		less = func(a, b *Performance) bool { return a.Title < b.Title }
	case SortByEndDate:
		less = func(a, b *Performance) bool { return a.EndDate.Before(b.EndDate) }
	case SortByStartDate:
		less = func(a, b *Performance) bool { return a.StartDate.Before(b.StartDate) }
	default:
		return out
	}

	desc := f.SortOrder == SortOrderDesc
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return less(out[j], out[i])
		}

		return less(out[i], out[j])
	})

	return out
}

// NewsQuery holds news search parameters.
type NewsQuery struct {
	Query    string
	Page     int
	PageSize int
	SortBy   string // "date" or "sim"
}

// Normalize applies defaults to the news query.
func (q *NewsQuery) Normalize() {
	if strings.TrimSpace(q.Query) == "" {
		q.Query = DefaultNewsQuery
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 100 {
		q.PageSize = 10
	}
	if q.SortBy != "sim" {
		q.SortBy = "date"
	}
}

// Key is the cache key for this query.
func (q NewsQuery) Key() string {
	return fmt.Sprintf("%s:%s:p%d:n%d", q.Query, q.SortBy, q.Page, q.PageSize)
}
