package audiodb

import (
	"strings"

	"classichub-service/internal/domain"
)

// searchResponse is the artist search payload. Artists is null when nothing matched.
type searchResponse struct {
	Artists []artist `json:"artists"`
}

type artist struct {
	ID          string `json:"idArtist"`
	Name        string `json:"strArtist"`
	Thumb       string `json:"strArtistThumb"`
	BiographyKR string `json:"strBiographyKR"`
	BiographyEN string `json:"strBiographyEN"`
	Country     string `json:"strCountry"`
}

func (a *artist) toDomain() *domain.ArtistMetadata {
	return &domain.ArtistMetadata{
		ProviderID:   a.ID,
		Name:         strings.TrimSpace(a.Name),
		Thumbnail:    strings.TrimSpace(a.Thumb),
		BioLocalized: strings.TrimSpace(a.BiographyKR),
		BioEnglish:   strings.TrimSpace(a.BiographyEN),
		Country:      strings.TrimSpace(a.Country),
	}
}
