package youtube

import (
	"html"
	"strings"
	"time"

	"classichub-service/internal/domain"
)

const watchURL = "https://www.youtube.com/watch?v="

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		Kind    string `json:"kind"`
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet struct {
		PublishedAt  string `json:"publishedAt"`
		Title        string `json:"title"`
		ChannelTitle string `json:"channelTitle"`
		Thumbnails   map[string]struct {
			URL string `json:"url"`
		} `json:"thumbnails"`
	} `json:"snippet"`
}

// thumbnail picks the best available size.
func (i *searchItem) thumbnail() string {
	for _, size := range []string{"high", "medium", "default"} {
		if t, ok := i.Snippet.Thumbnails[size]; ok && t.URL != "" {
			return t.URL
		}
	}

	return ""
}

func (i *searchItem) toDomain() domain.Video {
	published, _ := time.Parse(time.RFC3339, i.Snippet.PublishedAt)

	return domain.Video{
		ID:           i.ID.VideoID,
		Title:        html.UnescapeString(strings.TrimSpace(i.Snippet.Title)),
		Channel:      html.UnescapeString(i.Snippet.ChannelTitle),
		ThumbnailURL: i.thumbnail(),
		PublishedAt:  published,
		URL:          watchURL + i.ID.VideoID,
	}
}
