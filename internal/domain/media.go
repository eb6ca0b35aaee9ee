package domain

import "time"

// NewsArticle is a news search hit or feed item.
type NewsArticle struct {
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	OriginalLink string    `json:"original_link,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	Source       string    `json:"source"`
}

// Video is a video search hit.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Channel      string    `json:"channel"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	PublishedAt  time.Time `json:"published_at"`
	URL          string    `json:"url"`
}

// CheerMessage is a short fan message left on an artist page.
type CheerMessage struct {
	ID        string    `json:"id"`
	ArtistID  string    `json:"artist_id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
