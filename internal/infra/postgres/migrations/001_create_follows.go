package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createFollowsTable creates the table of followed artists.
func createFollowsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_follows",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS follows (
					artist_id VARCHAR(64) PRIMARY KEY,
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS follows;").Error
		},
	}
}
