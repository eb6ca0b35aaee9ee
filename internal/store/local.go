package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classichub-service/internal/domain"
)

// MaxCheerLength is the longest cheer message accepted, in runes.
const MaxCheerLength = 200

var (
	// ErrEmptyCheer is returned for a blank cheer message.
	ErrEmptyCheer = errors.New("cheer message is empty")

	// ErrCheerTooLong is returned when a cheer message exceeds MaxCheerLength.
	ErrCheerTooLong = fmt.Errorf("cheer message exceeds %d characters", MaxCheerLength)
)

// FollowSet is the local set of followed artist ids. The in-memory set is the
// source for reads; every change is persisted before it becomes visible.
type FollowSet struct {
	repo   domain.PreferenceRepository
	logger *zap.Logger

	mu       sync.Mutex
	followed map[string]struct{}
}

// NewFollowSet creates an empty FollowSet. repo may be nil for a purely
// in-memory set.
func NewFollowSet(repo domain.PreferenceRepository, logger *zap.Logger) *FollowSet {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FollowSet{
		repo:     repo,
		logger:   logger,
		followed: make(map[string]struct{}),
	}
}

// Load replaces the in-memory set with the persisted one.
func (f *FollowSet) Load(ctx context.Context) error {
	if f.repo == nil {
		return nil
	}

	ids, err := f.repo.ListFollows(ctx)
	if err != nil {
		return fmt.Errorf("loading follows: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.followed = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		f.followed[id] = struct{}{}
	}

	return nil
}

// Toggle flips the follow flag for artistID and returns the new value.
// When persisting fails the flag is left unchanged.
func (f *FollowSet) Toggle(ctx context.Context, artistID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, was := f.followed[artistID]
	now := !was
	f.set(artistID, now)

	if f.repo != nil {
		if err := f.repo.SetFollow(ctx, artistID, now); err != nil {
			f.set(artistID, was)
			f.logger.Warn("persisting follow failed",
				zap.String("artist_id", artistID),
				zap.Error(err),
			)

			return was, fmt.Errorf("persisting follow %s: %w", artistID, err)
		}
	}

	return now, nil
}

// IsFollowed reports whether artistID is followed.
func (f *FollowSet) IsFollowed(artistID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.followed[artistID]

	return ok
}

// List returns the followed ids in sorted order.
func (f *FollowSet) List() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]string, 0, len(f.followed))
	for id := range f.followed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return ids
}

func (f *FollowSet) set(artistID string, followed bool) {
	if followed {
		f.followed[artistID] = struct{}{}
	} else {
		delete(f.followed, artistID)
	}
}

// CheerBoard holds cheer messages left on artist pages.
type CheerBoard struct {
	repo   domain.PreferenceRepository
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	messages []domain.CheerMessage
}

// NewCheerBoard creates an empty CheerBoard. repo may be nil.
func NewCheerBoard(repo domain.PreferenceRepository, logger *zap.Logger, now func() time.Time) *CheerBoard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}

	return &CheerBoard{
		repo:   repo,
		logger: logger,
		now:    now,
	}
}

// Load replaces the in-memory messages with the persisted ones.
func (b *CheerBoard) Load(ctx context.Context) error {
	if b.repo == nil {
		return nil
	}

	msgs, err := b.repo.ListCheers(ctx)
	if err != nil {
		return fmt.Errorf("loading cheers: %w", err)
	}

	b.mu.Lock()
	b.messages = msgs
	b.mu.Unlock()

	return nil
}

// Add validates and stores a new message for artistID.
func (b *CheerBoard) Add(ctx context.Context, artistID, author, message string) (domain.CheerMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.CheerMessage{}, ErrEmptyCheer
	}
	if utf8.RuneCountInString(message) > MaxCheerLength {
		return domain.CheerMessage{}, ErrCheerTooLong
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = "anonymous"
	}

	msg := domain.CheerMessage{
		ID:        uuid.NewString(),
		ArtistID:  artistID,
		Author:    author,
		Message:   message,
		CreatedAt: b.now().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.messages = append(b.messages, msg)
	if b.repo != nil {
		if err := b.repo.AddCheer(ctx, msg); err != nil {
			b.messages = b.messages[:len(b.messages)-1]
			b.logger.Warn("persisting cheer failed",
				zap.String("artist_id", artistID),
				zap.Error(err),
			)

			return domain.CheerMessage{}, fmt.Errorf("persisting cheer: %w", err)
		}
	}

	return msg, nil
}

// Delete removes a message by id. Unknown ids are a no-op.
func (b *CheerBoard) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := -1
	for i, m := range b.messages {
		if m.ID == id {
			idx = i

			break
		}
	}
	if idx < 0 {
		return nil
	}

	if b.repo != nil {
		if err := b.repo.DeleteCheer(ctx, id); err != nil {
			return fmt.Errorf("deleting cheer %s: %w", id, err)
		}
	}
	b.messages = append(b.messages[:idx], b.messages[idx+1:]...)

	return nil
}

// ForArtist returns the messages for artistID, newest first.
func (b *CheerBoard) ForArtist(artistID string) []domain.CheerMessage {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.CheerMessage, 0)
	for i := len(b.messages) - 1; i >= 0; i-- {
		if b.messages[i].ArtistID == artistID {
			out = append(out, b.messages[i])
		}
	}

	return out
}

// Count returns the total number of messages.
func (b *CheerBoard) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.messages)
}
