package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"classichub-service/internal/app/service"
)

// printer writes either aligned tables or indented JSON.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	return &printer{w: w, json: asJSON}
}

// table prints rows under header. In JSON mode v is printed instead.
func (p *printer) table(v any, header []string, rows [][]string) error {
	if p.json {
		return p.value(v)
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

func (p *printer) value(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

// footer describes how fresh a result is. Nothing is printed in JSON mode;
// the envelope already carries it.
func (p *printer) footer(state string, fetchedAt time.Time, warning string, now time.Time) {
	if p.json {
		return
	}

	line := "state: " + state
	if !fetchedAt.IsZero() {
		line += ", fetched " + humanize.RelTime(fetchedAt, now, "ago", "from now")
	}
	if warning != "" {
		line += " (" + warning + ")"
	}
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, line)
}

// envelope is the JSON shape of a service result.
type envelope[T any] struct {
	Data      T          `json:"data"`
	State     string     `json:"state"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	Stale     bool       `json:"stale,omitempty"`
	Fallback  bool       `json:"fallback,omitempty"`
	Warning   string     `json:"warning,omitempty"`
}

func envelopeOf[T any](r service.Result[T]) envelope[T] {
	env := envelope[T]{
		Data:     r.Data,
		State:    string(r.State),
		Stale:    r.Stale,
		Fallback: r.Fallback,
		Warning:  r.Warning,
	}
	if !r.FetchedAt.IsZero() {
		t := r.FetchedAt
		env.FetchedAt = &t
	}

	return env
}

// truncate shortens s to n runes for table cells.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}

func date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.Format("2006-01-02")
}
