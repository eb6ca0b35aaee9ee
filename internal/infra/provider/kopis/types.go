package kopis

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"classichub-service/internal/domain"
)

// listResponse is the <dbs> envelope of the listing endpoint.
type listResponse struct {
	XMLName xml.Name   `xml:"dbs"`
	Items   []listItem `xml:"db"`
}

type listItem struct {
	ID        string `xml:"mt20id"`
	Title     string `xml:"prfnm"`
	From      string `xml:"prfpdfrom"`
	To        string `xml:"prfpdto"`
	Venue     string `xml:"fcltynm"`
	Poster    string `xml:"poster"`
	Area      string `xml:"area"`
	Genre     string `xml:"genrenm"`
	State     string `xml:"prfstate"`
	ErrorCode string `xml:"returncode"`
	ErrorMsg  string `xml:"errmsg"`
}

type detailResponse struct {
	XMLName xml.Name     `xml:"dbs"`
	Items   []detailItem `xml:"db"`
}

type detailItem struct {
	listItem
	Cast       string   `xml:"prfcast"`
	Crew       string   `xml:"prfcrew"`
	Runtime    string   `xml:"prfruntime"`
	Age        string   `xml:"prfage"`
	Price      string   `xml:"pcseguidance"`
	Synopsis   string   `xml:"sty"`
	FacilityID string   `xml:"mt10id"`
	Gallery    []string `xml:"styurls>styurl"`
	Relates    []relate `xml:"relates>relate"`
}

type relate struct {
	Name string `xml:"relatenm"`
	URL  string `xml:"relateurl"`
}

type facilityResponse struct {
	XMLName xml.Name       `xml:"dbs"`
	Items   []facilityItem `xml:"db"`
}

type facilityItem struct {
	ID        string `xml:"mt10id"`
	Name      string `xml:"fcltynm"`
	Lat       string `xml:"la"`
	Lng       string `xml:"lo"`
	Address   string `xml:"adres"`
	ErrorCode string `xml:"returncode"`
}

// stateCodes maps the provider's state labels and codes to the closed set.
var stateCodes = map[string]domain.PerformanceStatus{
	"공연예정": domain.StatusUpcoming,
	"공연중":  domain.StatusRunning,
	"공연완료": domain.StatusCompleted,
	"01":   domain.StatusUpcoming,
	"02":   domain.StatusRunning,
	"03":   domain.StatusCompleted,
}

// queryStateCodes is the reverse mapping used for the prfstate filter.
var queryStateCodes = map[domain.PerformanceStatus]string{
	domain.StatusUpcoming:  "01",
	domain.StatusRunning:   "02",
	domain.StatusCompleted: "03",
}

// ParseStatus maps a provider state string, returning "" when unknown.
func ParseStatus(s string) domain.PerformanceStatus {
	return stateCodes[strings.TrimSpace(s)]
}

func parseDate(s string) time.Time {
	t, err := time.Parse(domain.PeriodLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}

	return t
}

func (i *listItem) toDomain(now time.Time) *domain.Performance {
	p := domain.NewPerformance(
		strings.TrimSpace(i.ID),
		i.Title,
		i.Venue,
		parseDate(i.From),
		parseDate(i.To),
		ParseStatus(i.State),
		now,
	)
	p.Region = strings.TrimSpace(i.Area)
	p.Genre = strings.TrimSpace(i.Genre)
	p.PosterURL = strings.TrimSpace(i.Poster)

	return p
}

func (i *detailItem) toDomain(now time.Time) *domain.Performance {
	p := i.listItem.toDomain(now)
	p.Cast = strings.TrimSpace(i.Cast)
	p.Crew = strings.TrimSpace(i.Crew)
	p.Runtime = strings.TrimSpace(i.Runtime)
	p.AgeRating = strings.TrimSpace(i.Age)
	p.Price = strings.TrimSpace(i.Price)
	p.Synopsis = strings.TrimSpace(i.Synopsis)
	p.FacilityID = strings.TrimSpace(i.FacilityID)

	for _, g := range i.Gallery {
		if g = strings.TrimSpace(g); g != "" {
			p.Gallery = append(p.Gallery, g)
		}
	}
	for _, r := range i.Relates {
		if strings.TrimSpace(r.URL) == "" {
			continue
		}
		p.Links = append(p.Links, domain.Link{Name: strings.TrimSpace(r.Name), URL: strings.TrimSpace(r.URL)})
	}
	if len(p.Links) > 0 {
		p.BookingURL = p.Links[0].URL
	}

	return p
}

// coordinates returns nil unless both values parse and are not the 0,0 placeholder.
func (f *facilityItem) coordinates() *domain.Coordinates {
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(f.Lat), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(f.Lng), 64)
	if errLat != nil || errLng != nil || (lat == 0 && lng == 0) {
		return nil
	}

	return &domain.Coordinates{Lat: lat, Lng: lng}
}
