package postgres

import (
	"time"

	"classichub-service/internal/domain"
)

// FollowModel is the GORM model for the follows table.
type FollowModel struct {
	ArtistID  string    `gorm:"type:varchar(64);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for FollowModel.
func (FollowModel) TableName() string {
	return "follows"
}

// CheerModel is the GORM model for the cheers table.
type CheerModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	ArtistID  string    `gorm:"type:varchar(64);not null;index"`
	Author    string    `gorm:"type:varchar(50);not null"`
	Message   string    `gorm:"type:varchar(800);not null"`
	CreatedAt time.Time `gorm:"not null;index"`
}

// TableName returns the table name for CheerModel.
func (CheerModel) TableName() string {
	return "cheers"
}

// ToDomain converts CheerModel to domain.CheerMessage.
func (m *CheerModel) ToDomain() domain.CheerMessage {
	return domain.CheerMessage{
		ID:        m.ID,
		ArtistID:  m.ArtistID,
		Author:    m.Author,
		Message:   m.Message,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// CheerFromDomain creates a CheerModel from domain.CheerMessage.
func CheerFromDomain(c domain.CheerMessage) *CheerModel {
	return &CheerModel{
		ID:        c.ID,
		ArtistID:  c.ArtistID,
		Author:    c.Author,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}
