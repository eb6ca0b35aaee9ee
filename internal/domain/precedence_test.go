package domain

import "testing"

func TestMergeArtist_ImagePrecedence(t *testing.T) {
	entry := RosterEntry{ID: "conductor-0", ImageURL: "static.jpg"}

	tests := []struct {
		name     string
		meta     *ArtistMetadata
		wiki     *EncyclopediaSummary
		expected string
	}{
		{"metadata wins", &ArtistMetadata{Thumbnail: "m.jpg"}, &EncyclopediaSummary{Thumbnail: "w.jpg", OriginalImage: "o.jpg"}, "m.jpg"},
		{"encyclopedia thumbnail", &ArtistMetadata{}, &EncyclopediaSummary{Thumbnail: "w.jpg", OriginalImage: "o.jpg"}, "w.jpg"},
		{"encyclopedia original", nil, &EncyclopediaSummary{OriginalImage: "o.jpg"}, "o.jpg"},
		{"static fallback", nil, nil, "static.jpg"},
		{"blank metadata ignored", &ArtistMetadata{Thumbnail: "  "}, &EncyclopediaSummary{Thumbnail: "w.jpg"}, "w.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeArtist(entry, tt.meta, tt.wiki)
			if got.ImageURL != tt.expected {
				t.Errorf("expected image %q, got %q", tt.expected, got.ImageURL)
			}
		})
	}
}

func TestMergeArtist_BioPrecedence_AllCombinations(t *testing.T) {
	for _, metaPresent := range []bool{true, false} {
		for _, wikiPresent := range []bool{true, false} {
			for _, staticPresent := range []bool{true, false} {
				entry := RosterEntry{ID: "performer-1"}
				var meta *ArtistMetadata
				var wiki *EncyclopediaSummary
				expected := ""

				if staticPresent {
					entry.Bio = "S"
					expected = "S"
				}
				if wikiPresent {
					wiki = &EncyclopediaSummary{Extract: "E"}
					expected = "E"
				}
				if metaPresent {
					meta = &ArtistMetadata{BioLocalized: "M"}
					expected = "M"
				}

				got := MergeArtist(entry, meta, wiki)
				if got.Bio.Localized != expected {
					t.Errorf("meta=%v wiki=%v static=%v: expected %q, got %q",
						metaPresent, wikiPresent, staticPresent, expected, got.Bio.Localized)
				}
			}
		}
	}
}

func TestMergeArtist_EnglishBioBeforeExtract(t *testing.T) {
	got := MergeArtist(RosterEntry{}, &ArtistMetadata{BioEnglish: "EN"}, &EncyclopediaSummary{Extract: "X"})
	if got.Bio.Localized != "EN" {
		t.Errorf("expected metadata English bio, got %q", got.Bio.Localized)
	}
}

func TestMergeArtist_StaticFieldsOnTotalFailure(t *testing.T) {
	entry := RosterEntry{
		ID:               "conductor-3",
		Category:         CategoryConductor,
		SearchName:       "Myung-whun Chung",
		DisplayName:      "정명훈",
		Role:             LocalizedPair{Localized: "지휘자", English: "Conductor"},
		Nationality:      "대한민국",
		LikeCount:        120,
		PerformanceCount: 8,
	}

	got := MergeArtist(entry, nil, nil)

	if got.ID != "conductor-3" || got.Category != CategoryConductor {
		t.Errorf("unexpected identity: %+v", got)
	}
	if got.Name.Localized != "정명훈" || got.Name.English != "Myung-whun Chung" {
		t.Errorf("unexpected name: %+v", got.Name)
	}
	if got.Nationality != "대한민국" || got.Role.English != "Conductor" {
		t.Errorf("static fallback fields not used: %+v", got)
	}
	if got.ImageURL != "" || got.Bio.Localized != "" {
		t.Errorf("expected empty image and bio, got %q / %q", got.ImageURL, got.Bio.Localized)
	}
	if got.LikeCount != 120 || got.PerformanceCount != 8 {
		t.Errorf("unexpected counters: %+v", got)
	}
}

func TestMergeArtist_NationalityPrecedence(t *testing.T) {
	entry := RosterEntry{ID: "conductor-1", Nationality: "영국"}

	tests := []struct {
		name     string
		meta     *ArtistMetadata
		expected string
	}{
		{"metadata country wins", &ArtistMetadata{Country: "United Kingdom"}, "United Kingdom"},
		{"blank country falls back", &ArtistMetadata{Country: " "}, "영국"},
		{"no metadata", nil, "영국"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeArtist(entry, tt.meta, nil)
			if got.Nationality != tt.expected {
				t.Errorf("expected nationality %q, got %q", tt.expected, got.Nationality)
			}
		})
	}
}
