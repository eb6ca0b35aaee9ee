package domain

// ArtistCategory groups roster entries.
type ArtistCategory string

const (
	CategoryConductor ArtistCategory = "conductor"
	CategoryPerformer ArtistCategory = "performer"
	CategoryComposer  ArtistCategory = "composer"
)

// Valid reports whether c is a known category.
func (c ArtistCategory) Valid() bool {
	switch c {
	case CategoryConductor, CategoryPerformer, CategoryComposer:
		return true
	default:
		return false
	}
}

// LocalizedPair holds a localized (Korean) value and its English/romanized counterpart.
type LocalizedPair struct {
	Localized string `json:"localized"`
	English   string `json:"english"`
}

// Artist is the composite artist record assembled from the metadata and
// encyclopedia providers on top of static roster fields.
type Artist struct {
	ID               string         `json:"id"`
	Category         ArtistCategory `json:"category"`
	Name             LocalizedPair  `json:"name"`
	Role             LocalizedPair  `json:"role"`
	Nationality      string         `json:"nationality"`
	Bio              LocalizedPair  `json:"bio"`
	ImageURL         string         `json:"image_url"`
	LikeCount        int            `json:"like_count"`
	PerformanceCount int            `json:"performance_count"`
}

// RosterEntry is the static lookup tuple for one artist: provider lookup keys
// plus fallback fields used when every provider is unavailable.
type RosterEntry struct {
	ID               string
	Category         ArtistCategory
	SearchName       string // free-text metadata provider query
	WikiTitle        string // canonical encyclopedia title
	DisplayName      string // localized display name
	EnglishName      string
	Role             LocalizedPair
	Nationality      string
	ImageURL         string // static image used when no provider has one
	Bio              string // static biography used when no provider has one
	LikeCount        int
	PerformanceCount int
}

// ArtistMetadata is what the metadata provider knows about an artist.
type ArtistMetadata struct {
	ProviderID   string
	Name         string
	Thumbnail    string
	BioLocalized string
	BioEnglish   string
	Country      string
}

// EncyclopediaSummary is a page summary from the encyclopedia provider.
type EncyclopediaSummary struct {
	Title         string
	Extract       string
	Thumbnail     string
	OriginalImage string
}
