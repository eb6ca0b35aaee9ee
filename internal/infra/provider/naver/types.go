package naver

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"classichub-service/internal/domain"
)

// pubDateLayout is the RFC 1123 form with numeric zone the news API sends.
const pubDateLayout = time.RFC1123Z

type newsResponse struct {
	LastBuildDate string     `json:"lastBuildDate"`
	Total         int        `json:"total"`
	Start         int        `json:"start"`
	Display       int        `json:"display"`
	Items         []newsItem `json:"items"`
}

type newsItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// stripper removes highlight markup such as <b> around matched terms.
var stripper = bluemonday.StrictPolicy()

// plainText strips every tag and decodes entities.
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripper.Sanitize(s)))
}

func (i *newsItem) toDomain() domain.NewsArticle {
	published, _ := time.Parse(pubDateLayout, i.PubDate)

	return domain.NewsArticle{
		Title:        plainText(i.Title),
		Link:         i.Link,
		OriginalLink: i.OriginalLink,
		Summary:      plainText(i.Description),
		PublishedAt:  published,
		Source:       Name,
	}
}
