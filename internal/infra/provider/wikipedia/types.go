package wikipedia

import (
	"strings"

	"classichub-service/internal/domain"
)

type image struct {
	Source string `json:"source"`
}

// summaryResponse is the page summary payload.
type summaryResponse struct {
	Type          string `json:"type"`
	Title         string `json:"title"`
	Extract       string `json:"extract"`
	Thumbnail     *image `json:"thumbnail"`
	OriginalImage *image `json:"originalimage"`
}

// disambiguation pages carry no usable extract.
const typeDisambiguation = "disambiguation"

func (s *summaryResponse) toDomain() *domain.EncyclopediaSummary {
	out := &domain.EncyclopediaSummary{
		Title:   s.Title,
		Extract: strings.TrimSpace(s.Extract),
	}
	if s.Thumbnail != nil {
		out.Thumbnail = s.Thumbnail.Source
	}
	if s.OriginalImage != nil {
		out.OriginalImage = s.OriginalImage.Source
	}

	return out
}
