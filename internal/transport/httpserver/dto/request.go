// Package dto provides Data Transfer Objects for HTTP requests and responses.
package dto

import (
	"time"

	"classichub-service/internal/domain"
)

// PerformanceListRequest holds the query parameters of the performance listing.
// Genre, status, dates and paging select the upstream page; the rest filter it.
type PerformanceListRequest struct {
	Genre    string `query:"genre" validate:"omitempty,oneof=CCCA CCCC GGGA"`
	Status   string `query:"status" validate:"omitempty,perfstatus"`
	From     string `query:"from" validate:"omitempty,yyyymmdd"`
	To       string `query:"to" validate:"omitempty,yyyymmdd"`
	Page     int    `query:"page" validate:"omitempty,min=1"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`

	Query     string `query:"q" validate:"max=100"`
	Region    string `query:"region" validate:"max=50"`
	SortBy    string `query:"sort_by" validate:"omitempty,oneof=start_date end_date title"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`

	WithLocations bool `query:"with_locations"`
}

// ToQuery converts the upstream part of the request. Dates are read in loc;
// defaults are applied later by the service.
func (r *PerformanceListRequest) ToQuery(loc *time.Location) domain.PerformanceQuery {
	q := domain.PerformanceQuery{
		Genre:    r.Genre,
		Status:   domain.PerformanceStatus(r.Status),
		Page:     r.Page,
		PageSize: r.PageSize,
	}
	if t, err := time.ParseInLocation(domain.QueryDateLayout, r.From, loc); err == nil {
		q.From = t
	}
	if t, err := time.ParseInLocation(domain.QueryDateLayout, r.To, loc); err == nil {
		q.To = t
	}

	return q
}

// ToFilter converts the client-side part of the request.
func (r *PerformanceListRequest) ToFilter() domain.PerformanceFilter {
	order := domain.SortOrder(r.SortOrder)
	if order == "" {
		order = domain.SortOrderAsc
	}

	return domain.PerformanceFilter{
		Text:      r.Query,
		Region:    r.Region,
		SortBy:    domain.SortField(r.SortBy),
		SortOrder: order,
	}
}

// ArtistListRequest selects a roster category.
type ArtistListRequest struct {
	Category string `query:"category" validate:"required,category"`
}

// NewsRequest holds news search parameters.
type NewsRequest struct {
	Query    string `query:"q" validate:"max=100"`
	Source   string `query:"source" validate:"omitempty,max=30"`
	Sort     string `query:"sort" validate:"omitempty,oneof=date sim"`
	Page     int    `query:"page" validate:"omitempty,min=1,max=100"`
	PageSize int    `query:"page_size" validate:"omitempty,min=1,max=100"`
}

// ToQuery converts the request to a domain.NewsQuery.
func (r *NewsRequest) ToQuery() domain.NewsQuery {
	return domain.NewsQuery{
		Query:    r.Query,
		Page:     r.Page,
		PageSize: r.PageSize,
		SortBy:   r.Sort,
	}
}

// VideoRequest holds video search parameters.
type VideoRequest struct {
	Query string `query:"q" validate:"required,max=100"`
	Limit int    `query:"limit" validate:"omitempty,min=1,max=50"`
}

// ArtistVideoRequest holds the optional limit of an artist's videos.
type ArtistVideoRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

// CheerRequest is the body of a new cheer message. Message length is
// checked by the cheer board so the limit lives in one place.
type CheerRequest struct {
	Author  string `json:"author" validate:"max=50"`
	Message string `json:"message" validate:"required"`
}
