package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"classichub-service/internal/app/assembly"
	"classichub-service/internal/domain"
	"classichub-service/internal/roster"
	"classichub-service/internal/store"
)

// ErrInvalidCategory is returned for an unknown artist category.
var ErrInvalidCategory = errors.New("invalid artist category")

// errNoContribution marks a batch where no provider returned anything, so the
// store serves its curated fallback instead.
var errNoContribution = errors.New("no provider contributed to the batch")

// ArtistSettings configures the weekly rotation.
type ArtistSettings struct {
	Epoch      time.Time
	WeeklySize int
}

// ArtistService serves roster artists, composers and the local follow and
// cheer state.
type ArtistService struct {
	assembler *assembly.Assembler
	composers domain.ComposerProvider
	lists     *store.Store[[]domain.Artist]
	artists   *store.Store[domain.Artist]
	popular   *store.Store[[]domain.Composer]
	works     *store.Store[[]domain.ComposerWork]
	follows   *store.FollowSet
	cheers    *store.CheerBoard
	settings  ArtistSettings
	now       func() time.Time
	logger    *zap.Logger
}

// NewArtistService creates a new ArtistService.
func NewArtistService(
	assembler *assembly.Assembler,
	composers domain.ComposerProvider,
	stores *Stores,
	follows *store.FollowSet,
	cheers *store.CheerBoard,
	settings ArtistSettings,
	now func() time.Time,
	logger *zap.Logger,
) *ArtistService {
	if settings.Epoch.IsZero() {
		settings.Epoch = roster.DefaultEpoch
	}
	if settings.WeeklySize <= 0 {
		settings.WeeklySize = domain.WeeklySliceSize
	}
	if now == nil {
		now = time.Now
	}

	return &ArtistService{
		assembler: assembler,
		composers: composers,
		lists:     stores.ArtistLists,
		artists:   stores.Artists,
		popular:   stores.Composers,
		works:     stores.Works,
		follows:   follows,
		cheers:    cheers,
		settings:  settings,
		now:       now,
		logger:    logger,
	}
}

// List returns the assembled roster of a category.
func (s *ArtistService) List(ctx context.Context, category domain.ArtistCategory) (Result[[]domain.Artist], error) {
	if !category.Valid() {
		return Result[[]domain.Artist]{}, fmt.Errorf("%w: %q", ErrInvalidCategory, category)
	}

	return s.assembleList(ctx, string(category), roster.ByCategory(category))
}

// Weekly returns the composers featured this week. Weeks turn over at Monday
// midnight in the epoch's time zone, whatever the host zone is.
func (s *ArtistService) Weekly(ctx context.Context) (Result[[]domain.Artist], error) {
	now := s.now().In(s.settings.Epoch.Location())
	week := domain.WeekIndex(s.settings.Epoch, now)
	entries := roster.WeeklyComposers(s.settings.Epoch, now, s.settings.WeeklySize)

	return s.assembleList(ctx, weeklyKeyPrefix+strconv.Itoa(week), entries)
}

func (s *ArtistService) assembleList(ctx context.Context, key string, entries []domain.RosterEntry) (Result[[]domain.Artist], error) {
	snap, err := s.lists.FetchIfNeeded(ctx, key, func(ctx context.Context) ([]domain.Artist, error) {
		batch := s.assembler.AssembleArtistBatch(ctx, entries)
		if batch.Contributed == 0 && len(entries) > 0 {
			return nil, errNoContribution
		}

		return batch.Artists, nil
	})
	if err != nil {
		return Result[[]domain.Artist]{}, err
	}

	return resultOf(snap, false), nil
}

// Get assembles a single roster artist by id.
func (s *ArtistService) Get(ctx context.Context, id string) (Result[domain.Artist], error) {
	entry, ok := roster.Find(id)
	if !ok {
		return Result[domain.Artist]{}, fmt.Errorf("artist %s: %w", id, domain.ErrNotFound)
	}

	snap, err := s.artists.FetchIfNeeded(ctx, id, func(ctx context.Context) (domain.Artist, error) {
		artist, _ := s.assembler.AssembleArtist(ctx, entry)

		return artist, nil
	})
	if err != nil {
		return Result[domain.Artist]{}, err
	}

	return resultOf(snap, false), nil
}

// PopularComposers lists the works provider's popular composers.
func (s *ArtistService) PopularComposers(ctx context.Context) (Result[[]domain.Composer], error) {
	snap, err := s.popular.FetchIfNeeded(ctx, "popular", func(ctx context.Context) ([]domain.Composer, error) {
		return s.composers.PopularComposers(ctx)
	})
	if err != nil {
		return Result[[]domain.Composer]{}, err
	}

	return resultOf(snap, true), nil
}

// Works lists the works of a composer, popular ones first.
func (s *ArtistService) Works(ctx context.Context, composerID string) (Result[[]domain.ComposerWork], error) {
	composerID = strings.TrimSpace(composerID)
	if composerID == "" {
		return Result[[]domain.ComposerWork]{}, fmt.Errorf("composer works: %w", domain.ErrNotFound)
	}

	snap, err := s.works.FetchIfNeeded(ctx, composerID, func(ctx context.Context) ([]domain.ComposerWork, error) {
		works, err := s.composers.Works(ctx, composerID)
		if err != nil {
			return nil, err
		}

		return sortWorks(works), nil
	})
	if err != nil {
		return Result[[]domain.ComposerWork]{}, err
	}

	return resultOf(snap, true), nil
}

// sortWorks moves popular and recommended works to the front, keeping the
// provider order otherwise.
func sortWorks(works []domain.ComposerWork) []domain.ComposerWork {
	out := make([]domain.ComposerWork, 0, len(works))
	for _, pass := range []func(w domain.ComposerWork) bool{
		func(w domain.ComposerWork) bool { return w.Popular },
		func(w domain.ComposerWork) bool { return !w.Popular && w.Recommended },
		func(w domain.ComposerWork) bool { return !w.Popular && !w.Recommended },
	} {
		for _, w := range works {
			if pass(w) {
				out = append(out, w)
			}
		}
	}

	return out
}

// ToggleFollow flips the follow flag of an artist and returns the new value.
func (s *ArtistService) ToggleFollow(ctx context.Context, artistID string) (bool, error) {
	return s.follows.Toggle(ctx, artistID)
}

// IsFollowed reports the local follow flag.
func (s *ArtistService) IsFollowed(artistID string) bool {
	return s.follows.IsFollowed(artistID)
}

// Follows lists followed artist ids.
func (s *ArtistService) Follows() []string {
	return s.follows.List()
}

// AddCheer leaves a message on an artist page.
func (s *ArtistService) AddCheer(ctx context.Context, artistID, author, message string) (domain.CheerMessage, error) {
	return s.cheers.Add(ctx, artistID, author, message)
}

// DeleteCheer removes a message.
func (s *ArtistService) DeleteCheer(ctx context.Context, id string) error {
	return s.cheers.Delete(ctx, id)
}

// Cheers lists the messages of an artist, newest first.
func (s *ArtistService) Cheers(artistID string) []domain.CheerMessage {
	return s.cheers.ForArtist(artistID)
}

// CheerCount returns the number of messages of an artist.
func (s *ArtistService) CheerCount(artistID string) int {
	return len(s.cheers.ForArtist(artistID))
}

// CheerTotal returns the number of messages on every artist.
func (s *ArtistService) CheerTotal() int {
	return s.cheers.Count()
}

// Warm loads every category and the weekly composers.
func (s *ArtistService) Warm(ctx context.Context) error {
	var errs []error
	for _, c := range []domain.ArtistCategory{domain.CategoryConductor, domain.CategoryPerformer, domain.CategoryComposer} {
		if _, err := s.List(ctx, c); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := s.Weekly(ctx); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
