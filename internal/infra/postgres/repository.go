package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"classichub-service/internal/domain"
)

// Repository implements domain.PreferenceRepository using PostgreSQL.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository creates a new PostgreSQL repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// ListFollows returns the ids of every followed artist.
func (r *Repository) ListFollows(ctx context.Context) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&FollowModel{}).
		Order("artist_id").
		Pluck("artist_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("listing follows: %w", err)
	}

	return ids, nil
}

// SetFollow records or clears the follow flag for an artist. Both directions
// are idempotent.
func (r *Repository) SetFollow(ctx context.Context, artistID string, followed bool) error {
	db := r.db.WithContext(ctx)

	if !followed {
		if err := db.Where("artist_id = ?", artistID).Delete(&FollowModel{}).Error; err != nil {
			return fmt.Errorf("deleting follow %s: %w", artistID, err)
		}

		return nil
	}

	model := &FollowModel{ArtistID: artistID, CreatedAt: r.now()}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artist_id"}},
		DoNothing: true,
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("saving follow %s: %w", artistID, err)
	}

	return nil
}

// ListCheers returns all cheer messages, oldest first.
func (r *Repository) ListCheers(ctx context.Context) ([]domain.CheerMessage, error) {
	var models []CheerModel
	if err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing cheers: %w", err)
	}

	msgs := make([]domain.CheerMessage, len(models))
	for i := range models {
		msgs[i] = models[i].ToDomain()
	}

	return msgs, nil
}

// AddCheer stores a new cheer message.
func (r *Repository) AddCheer(ctx context.Context, msg domain.CheerMessage) error {
	if err := r.db.WithContext(ctx).Create(CheerFromDomain(msg)).Error; err != nil {
		return fmt.Errorf("saving cheer: %w", err)
	}

	return nil
}

// DeleteCheer removes a cheer message by id. Unknown ids are a no-op.
func (r *Repository) DeleteCheer(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CheerModel{}).Error; err != nil {
		return fmt.Errorf("deleting cheer %s: %w", id, err)
	}

	return nil
}
