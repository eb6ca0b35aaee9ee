package roster

import (
	"sort"
	"time"

	"classichub-service/internal/domain"
)

// SampleSize is the number of curated artists shown per category when every
// provider failed for a whole batch.
const SampleSize = 4

const sampleImagePath = "/static/img/artists/"

var sampleBios = map[string]string{
	"conductor-0": "서울시립교향악단과 아시아 필하모닉을 이끈 한국을 대표하는 지휘자.",
	"conductor-4": "오슬로 필하모닉과 파리 오케스트라를 이끄는 젊은 거장.",
	"performer-0": "2015년 쇼팽 국제 피아노 콩쿠르 우승자.",
	"performer-1": "2022년 반 클라이번 국제 피아노 콩쿠르 최연소 우승자.",
	"performer-7": "세계 주요 오페라 극장에서 활약해 온 콜로라투라 소프라노.",
	"145":         "고전주의와 낭만주의를 잇는 교향곡과 소나타의 작곡가.",
	"196":         "오페라, 협주곡, 교향곡 등 전 장르에 걸친 600여 곡을 남긴 작곡가.",
	"87":          "바로크 음악을 집대성한 대위법의 거장.",
	"97":          "피아노의 시인으로 불리는 낭만주의 작곡가.",
}

// SampleArtists returns the curated fallback set for a category: its most
// liked roster entries with static image and biography.
func SampleArtists(c domain.ArtistCategory) []domain.Artist {
	entries := ByCategory(c)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LikeCount > entries[j].LikeCount
	})
	if len(entries) > SampleSize {
		entries = entries[:SampleSize]
	}

	out := make([]domain.Artist, 0, len(entries))
	for _, e := range entries {
		e.ImageURL = sampleImagePath + e.ID + ".jpg"
		e.Bio = sampleBios[e.ID]
		out = append(out, domain.MergeArtist(e, nil, nil))
	}

	return out
}

type samplePerformance struct {
	id, title, venue, region string
	startOffset, days        int
	cast, price              string
}

var samplePerformanceSeeds = []samplePerformance{
	{"sample-1", "서울시립교향악단 정기공연: 말러 교향곡 5번", "롯데콘서트홀", "서울특별시", 7, 0, "서울시립교향악단", "R석 90,000원, S석 70,000원"},
	{"sample-2", "조성진 피아노 리사이틀", "예술의전당 콘서트홀", "서울특별시", 14, 1, "조성진", "R석 150,000원, S석 120,000원"},
	{"sample-3", "통영국제음악제 개막공연", "통영국제음악당", "경상남도", 21, 2, "TIMF 앙상블", "전석 50,000원"},
	{"sample-4", "KBS교향악단 실내악 시리즈", "세종문화회관 체임버홀", "서울특별시", -1, 3, "KBS교향악단 단원", "전석 30,000원"},
}

// SamplePerformances returns the curated fallback listing. Dates are
// relative to now so the set never goes stale.
func SamplePerformances(now time.Time) []*domain.Performance {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]*domain.Performance, 0, len(samplePerformanceSeeds))
	for _, s := range samplePerformanceSeeds {
		start := today.AddDate(0, 0, s.startOffset)
		p := domain.NewPerformance(s.id, s.title, s.venue, start, start.AddDate(0, 0, s.days), "", now)
		p.Region = s.region
		p.Genre = domain.GenreClassical
		p.Cast = s.cast
		p.Price = s.price
		out = append(out, p)
	}

	return out
}
