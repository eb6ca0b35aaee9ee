package domain

import "strings"

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}

// MergeArtist builds an Artist from a roster entry and whatever the providers
// returned. Either source may be nil.
//
// Precedence (first non-empty wins):
//
//	image: metadata thumbnail > encyclopedia thumbnail > encyclopedia original image > roster image
//	bio:   metadata localized bio > metadata English bio > encyclopedia extract > roster bio
//	nationality: metadata country > roster nationality
func MergeArtist(entry RosterEntry, meta *ArtistMetadata, wiki *EncyclopediaSummary) Artist {
	var (
		metaThumb, metaBioLocal, metaBioEN, metaName, metaCountry string
		wikiThumb, wikiOriginal, wikiExtract                      string
	)
	if meta != nil {
		metaThumb = meta.Thumbnail
		metaBioLocal = meta.BioLocalized
		metaBioEN = meta.BioEnglish
		metaName = meta.Name
		metaCountry = meta.Country
	}
	if wiki != nil {
		wikiThumb = wiki.Thumbnail
		wikiOriginal = wiki.OriginalImage
		wikiExtract = wiki.Extract
	}

	bio := FirstNonEmpty(metaBioLocal, metaBioEN, wikiExtract, entry.Bio)

	return Artist{
		ID:       entry.ID,
		Category: entry.Category,
		Name: LocalizedPair{
			Localized: FirstNonEmpty(entry.DisplayName, metaName, entry.EnglishName),
			English:   FirstNonEmpty(metaName, entry.EnglishName, entry.SearchName),
		},
		Role:        entry.Role,
		Nationality: FirstNonEmpty(metaCountry, entry.Nationality),
		Bio: LocalizedPair{
			Localized: bio,
			English:   FirstNonEmpty(metaBioEN, wikiExtract),
		},
		ImageURL:         FirstNonEmpty(metaThumb, wikiThumb, wikiOriginal, entry.ImageURL),
		LikeCount:        entry.LikeCount,
		PerformanceCount: entry.PerformanceCount,
	}
}
