// Package roster holds the static artist lookup tables and the curated
// datasets served when every provider is down.
package roster

import (
	"fmt"
	"time"

	"classichub-service/internal/domain"
)

// DefaultEpoch is week 0 of the composer rotation.
var DefaultEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

type seed struct {
	search, wiki, display, english string
	roleKR, roleEN                 string
	nationality                    string
	likes, performances            int
}

var conductorSeeds = []seed{
	{"Myung-whun Chung", "정명훈", "정명훈", "Myung-whun Chung", "지휘자", "Conductor", "대한민국", 1820, 14},
	{"Simon Rattle", "사이먼 래틀", "사이먼 래틀", "Simon Rattle", "지휘자", "Conductor", "영국", 1410, 6},
	{"Kirill Petrenko", "키릴 페트렌코", "키릴 페트렌코", "Kirill Petrenko", "지휘자", "Conductor", "오스트리아", 990, 3},
	{"Gustavo Dudamel", "구스타보 두다멜", "구스타보 두다멜", "Gustavo Dudamel", "지휘자", "Conductor", "베네수엘라", 1275, 4},
	{"Klaus Mäkelä", "클라우스 메켈레", "클라우스 메켈레", "Klaus Mäkelä", "지휘자", "Conductor", "핀란드", 1130, 5},
	{"Andris Nelsons", "안드리스 넬손스", "안드리스 넬손스", "Andris Nelsons", "지휘자", "Conductor", "라트비아", 720, 2},
	{"Riccardo Muti", "리카르도 무티", "리카르도 무티", "Riccardo Muti", "지휘자", "Conductor", "이탈리아", 860, 2},
	{"Shiyeon Sung", "성시연", "성시연", "Shiyeon Sung", "지휘자", "Conductor", "대한민국", 640, 9},
}

var performerSeeds = []seed{
	{"Seong-Jin Cho", "조성진", "조성진", "Seong-Jin Cho", "피아니스트", "Pianist", "대한민국", 4210, 21},
	{"Yunchan Lim", "임윤찬", "임윤찬", "Yunchan Lim", "피아니스트", "Pianist", "대한민국", 5120, 18},
	{"Sunwook Kim", "김선욱", "김선욱", "Sunwook Kim", "피아니스트", "Pianist", "대한민국", 1680, 12},
	{"Clara-Jumi Kang", "클라라 주미 강", "클라라 주미 강", "Clara-Jumi Kang", "바이올리니스트", "Violinist", "대한민국", 1390, 10},
	{"Hilary Hahn", "힐러리 한", "힐러리 한", "Hilary Hahn", "바이올리니스트", "Violinist", "미국", 1510, 3},
	{"Han-Na Chang", "장한나", "장한나", "Han-Na Chang", "첼리스트", "Cellist", "대한민국", 1240, 7},
	{"Yo-Yo Ma", "요요 마", "요요 마", "Yo-Yo Ma", "첼리스트", "Cellist", "미국", 2030, 2},
	{"Sumi Jo", "조수미", "조수미", "Sumi Jo", "소프라노", "Soprano", "대한민국", 2880, 8},
}

// composerSeed keys a composer by the works provider's native id.
type composerSeed struct {
	id string
	seed
}

var composerSeeds = []composerSeed{
	{"87", seed{"Johann Sebastian Bach", "요한 제바스티안 바흐", "바흐", "Johann Sebastian Bach", "작곡가", "Composer", "독일", 3100, 0}},
	{"196", seed{"Wolfgang Amadeus Mozart", "볼프강 아마데우스 모차르트", "모차르트", "Wolfgang Amadeus Mozart", "작곡가", "Composer", "오스트리아", 3400, 0}},
	{"145", seed{"Ludwig van Beethoven", "루트비히 판 베토벤", "베토벤", "Ludwig van Beethoven", "작곡가", "Composer", "독일", 3650, 0}},
	{"97", seed{"Frédéric Chopin", "프레데리크 쇼팽", "쇼팽", "Frédéric Chopin", "작곡가", "Composer", "폴란드", 3020, 0}},
	{"79", seed{"Johannes Brahms", "요하네스 브람스", "브람스", "Johannes Brahms", "작곡가", "Composer", "독일", 2210, 0}},
	{"215", seed{"Pyotr Ilyich Tchaikovsky", "표트르 일리치 차이콥스키", "차이콥스키", "Pyotr Ilyich Tchaikovsky", "작곡가", "Composer", "러시아", 2560, 0}},
	{"195", seed{"Gustav Mahler", "구스타프 말러", "말러", "Gustav Mahler", "작곡가", "Composer", "오스트리아", 1870, 0}},
	{"186", seed{"Felix Mendelssohn", "펠릭스 멘델스존", "멘델스존", "Felix Mendelssohn", "작곡가", "Composer", "독일", 1330, 0}},
	{"204", seed{"Sergei Rachmaninoff", "세르게이 라흐마니노프", "라흐마니노프", "Sergei Rachmaninoff", "작곡가", "Composer", "러시아", 2740, 0}},
	{"223", seed{"Franz Schubert", "프란츠 슈베르트", "슈베르트", "Franz Schubert", "작곡가", "Composer", "오스트리아", 1720, 0}},
	{"224", seed{"Robert Schumann", "로베르트 슈만", "슈만", "Robert Schumann", "작곡가", "Composer", "독일", 1290, 0}},
	{"106", seed{"Claude Debussy", "클로드 드뷔시", "드뷔시", "Claude Debussy", "작곡가", "Composer", "프랑스", 1960, 0}},
	{"208", seed{"Maurice Ravel", "모리스 라벨", "라벨", "Maurice Ravel", "작곡가", "Composer", "프랑스", 1540, 0}},
	{"176", seed{"Franz Liszt", "프란츠 리스트", "리스트", "Franz Liszt", "작곡가", "Composer", "헝가리", 1460, 0}},
	{"133", seed{"Antonín Dvořák", "안토닌 드보르자크", "드보르자크", "Antonín Dvořák", "작곡가", "Composer", "체코", 1380, 0}},
	{"152", seed{"George Frideric Handel", "게오르크 프리드리히 헨델", "헨델", "George Frideric Handel", "작곡가", "Composer", "영국", 1150, 0}},
	{"245", seed{"Antonio Vivaldi", "안토니오 비발디", "비발디", "Antonio Vivaldi", "작곡가", "Composer", "이탈리아", 1810, 0}},
	{"230", seed{"Dmitri Shostakovich", "드미트리 쇼스타코비치", "쇼스타코비치", "Dmitri Shostakovich", "작곡가", "Composer", "러시아", 1220, 0}},
	{"227", seed{"Jean Sibelius", "장 시벨리우스", "시벨리우스", "Jean Sibelius", "작곡가", "Composer", "핀란드", 870, 0}},
	{"233", seed{"Isang Yun", "윤이상", "윤이상", "Isang Yun", "작곡가", "Composer", "대한민국", 940, 0}},
}

// Conductors returns the conductor roster in display order.
func Conductors() []domain.RosterEntry {
	return fromSeeds(domain.CategoryConductor, conductorSeeds)
}

// Performers returns the performer roster in display order.
func Performers() []domain.RosterEntry {
	return fromSeeds(domain.CategoryPerformer, performerSeeds)
}

// Composers returns the composer pool in rotation order. Ids are the works
// provider's native composer ids.
func Composers() []domain.RosterEntry {
	out := make([]domain.RosterEntry, len(composerSeeds))
	for i, c := range composerSeeds {
		out[i] = entry(c.id, domain.CategoryComposer, c.seed)
	}

	return out
}

// ByCategory returns the roster for a category, or nil for an unknown one.
func ByCategory(c domain.ArtistCategory) []domain.RosterEntry {
	switch c {
	case domain.CategoryConductor:
		return Conductors()
	case domain.CategoryPerformer:
		return Performers()
	case domain.CategoryComposer:
		return Composers()
	default:
		return nil
	}
}

// Find looks an entry up by id across every category.
func Find(id string) (domain.RosterEntry, bool) {
	for _, c := range []domain.ArtistCategory{domain.CategoryConductor, domain.CategoryPerformer, domain.CategoryComposer} {
		for _, e := range ByCategory(c) {
			if e.ID == id {
				return e, true
			}
		}
	}

	return domain.RosterEntry{}, false
}

// WeeklyComposers returns the composers featured in the week containing date.
func WeeklyComposers(epoch, date time.Time, size int) []domain.RosterEntry {
	return domain.SelectWeekly(Composers(), epoch, date, size)
}

func fromSeeds(c domain.ArtistCategory, seeds []seed) []domain.RosterEntry {
	out := make([]domain.RosterEntry, len(seeds))
	for i, s := range seeds {
		out[i] = entry(fmt.Sprintf("%s-%d", c, i), c, s)
	}

	return out
}

func entry(id string, c domain.ArtistCategory, s seed) domain.RosterEntry {
	return domain.RosterEntry{
		ID:               id,
		Category:         c,
		SearchName:       s.search,
		WikiTitle:        s.wiki,
		DisplayName:      s.display,
		EnglishName:      s.english,
		Role:             domain.LocalizedPair{Localized: s.roleKR, English: s.roleEN},
		Nationality:      s.nationality,
		LikeCount:        s.likes,
		PerformanceCount: s.performances,
	}
}
