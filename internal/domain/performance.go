// Package domain contains the core entities and rules of the classical-music hub.
// This package has no external dependencies (only stdlib).
package domain

import (
	"strings"
	"time"
)

// PerformanceStatus is the lifecycle state of a performance run.
type PerformanceStatus string

const (
	StatusUpcoming  PerformanceStatus = "upcoming"
	StatusRunning   PerformanceStatus = "running"
	StatusCompleted PerformanceStatus = "completed"
)

// Valid reports whether s belongs to the closed status set.
func (s PerformanceStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusRunning, StatusCompleted:
		return true
	default:
		return false
	}
}

// PeriodLayout is the display format used for performance date ranges.
const PeriodLayout = "2006.01.02"

// Link is a named related link attached to a performance (ticket vendors, etc).
type Link struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Performance is a ticketing catalog entry.
// Core fields come from the listing call; enrichment fields are filled by
// detail and facility follow-up calls and stay zero until then.
type Performance struct {
	// Core
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Venue     string            `json:"venue"`
	StartDate time.Time         `json:"start_date"`
	EndDate   time.Time         `json:"end_date"`
	Period    string            `json:"period"`
	Region    string            `json:"region,omitempty"`
	Status    PerformanceStatus `json:"status"`
	Genre     string            `json:"genre,omitempty"`

	// Enrichment
	PosterURL  string       `json:"poster_url,omitempty"`
	Price      string       `json:"price,omitempty"`
	BookingURL string       `json:"booking_url,omitempty"`
	Links      []Link       `json:"links,omitempty"`
	Cast       string       `json:"cast,omitempty"`
	Crew       string       `json:"crew,omitempty"`
	AgeRating  string       `json:"age_rating,omitempty"`
	Runtime    string       `json:"runtime,omitempty"`
	Synopsis   string       `json:"synopsis,omitempty"`
	Gallery    []string     `json:"gallery,omitempty"`
	FacilityID string       `json:"facility_id,omitempty"`
	Location   *Coordinates `json:"location,omitempty"`
}

// NewPerformance builds a listing record and enforces the status and date
// range invariants. An unknown status is derived from the dates relative to now.
func NewPerformance(id, title, venue string, start, end time.Time, status PerformanceStatus, now time.Time) *Performance {
	p := &Performance{
		ID:        id,
		Title:     strings.TrimSpace(title),
		Venue:     strings.TrimSpace(venue),
		StartDate: start,
		EndDate:   end,
		Status:    status,
	}
	p.Normalize(now)

	return p
}

// Normalize clamps a reversed date range, fills Period and makes sure Status
// is one of the closed set.
func (p *Performance) Normalize(now time.Time) {
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		p.EndDate = p.StartDate
	}
	if p.Period == "" {
		p.Period = FormatPeriod(p.StartDate, p.EndDate)
	}
	if !p.Status.Valid() {
		p.Status = DeriveStatus(p.StartDate, p.EndDate, now)
	}
}

// HasLocation reports whether coordinates are already known.
func (p *Performance) HasLocation() bool {
	return p.Location != nil
}

// Merge copies enrichment fields from other that are still empty on p.
// Core fields are only taken when p does not have them yet.
func (p *Performance) Merge(other *Performance) {
	if other == nil || other == p {
		return
	}

	fillString(&p.Title, other.Title)
	fillString(&p.Venue, other.Venue)
	fillString(&p.Region, other.Region)
	fillString(&p.Genre, other.Genre)
	if p.StartDate.IsZero() {
		p.StartDate = other.StartDate
	}
	if p.EndDate.IsZero() {
		p.EndDate = other.EndDate
	}
	if !p.StartDate.IsZero() && !p.EndDate.IsZero() && p.EndDate.Before(p.StartDate) {
		p.EndDate = p.StartDate
	}
	if !p.Status.Valid() && other.Status.Valid() {
		p.Status = other.Status
	}

	fillString(&p.PosterURL, other.PosterURL)
	fillString(&p.Price, other.Price)
	fillString(&p.BookingURL, other.BookingURL)
	fillString(&p.Cast, other.Cast)
	fillString(&p.Crew, other.Crew)
	fillString(&p.AgeRating, other.AgeRating)
	fillString(&p.Runtime, other.Runtime)
	fillString(&p.Synopsis, other.Synopsis)
	fillString(&p.FacilityID, other.FacilityID)
	if len(p.Links) == 0 && len(other.Links) > 0 {
		p.Links = append([]Link(nil), other.Links...)
	}
	if len(p.Gallery) == 0 && len(other.Gallery) > 0 {
		p.Gallery = append([]string(nil), other.Gallery...)
	}
	if p.Location == nil && other.Location != nil {
		loc := *other.Location
		p.Location = &loc
	}
}

// Clone returns a deep copy so cached records are never mutated by callers.
func (p *Performance) Clone() *Performance {
	if p == nil {
		return nil
	}
	c := *p
	c.Links = append([]Link(nil), p.Links...)
	c.Gallery = append([]string(nil), p.Gallery...)
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}

	return &c
}

// DeriveStatus computes a status from the run dates. Dates are compared by
// calendar day so a performance ending today is still running.
func DeriveStatus(start, end time.Time, now time.Time) PerformanceStatus {
	today := civilDay(now)
	switch {
	case !start.IsZero() && today.Before(civilDay(start)):
		return StatusUpcoming
	case !end.IsZero() && today.After(civilDay(end)):
		return StatusCompleted
	case start.IsZero() && end.IsZero():
		return StatusUpcoming
	default:
		return StatusRunning
	}
}

// FormatPeriod renders "2024.03.01 ~ 2024.03.05", or a single date when both ends match.
func FormatPeriod(start, end time.Time) string {
	switch {
	case start.IsZero() && end.IsZero():
		return ""
	case end.IsZero() || start.Equal(end):
		return start.Format(PeriodLayout)
	case start.IsZero():
		return end.Format(PeriodLayout)
	default:
		return start.Format(PeriodLayout) + " ~ " + end.Format(PeriodLayout)
	}
}

func fillString(dst *string, src string) {
	if *dst == "" && src != "" {
		*dst = src
	}
}

// civilDay drops the clock part while keeping the calendar date of t's location.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
